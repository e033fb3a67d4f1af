package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is the time source used by every time-sensitive component (cache
// expiry, rate windows, backoff). Injecting it lets tests advance time
// without sleeping.
type Timer interface {
	Now() time.Time
	Stop()
}

// StdTimer reads the wall clock directly.
type StdTimer struct{}

func (StdTimer) Now() time.Time { return time.Now() }
func (StdTimer) Stop()          {}

// CachedTimer trades precision for speed: it stores the current time and
// advances it on a ticker, so hot paths read an atomic instead of calling
// time.Now. Precision is bounded by the step.
type CachedTimer struct {
	now    atomic.Value
	step   time.Duration
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewCachedTimer(step time.Duration) *CachedTimer {
	t := &CachedTimer{
		step:   step,
		ticker: time.NewTicker(step),
		done:   make(chan struct{}),
	}
	t.now.Store(time.Now())

	t.wg.Add(1)
	go t.run()

	return t
}

func (t *CachedTimer) run() {
	defer t.wg.Done()

	for {
		select {
		case <-t.ticker.C:
			t.now.Store(time.Now())
		case <-t.done:
			t.ticker.Stop()
			return
		}
	}
}

func (t *CachedTimer) Now() time.Time {
	return t.now.Load().(time.Time)
}

func (t *CachedTimer) Stop() {
	close(t.done)
	t.wg.Wait()
}
