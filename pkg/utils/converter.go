package utils

import (
	"math"
	"strconv"
	"time"
)

// ToDuration converts a number of seconds into a time.Duration.
func ToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// ToDurationMs converts a number of milliseconds into a time.Duration.
func ToDurationMs(millis int) time.Duration {
	return time.Duration(millis) * time.Millisecond
}

// CeilSeconds returns d rounded up to whole seconds, clamped to at least min.
// Used for Retry-After style hints where a zero would tell clients to hammer.
func CeilSeconds(d time.Duration, min int) int {
	s := int(math.Ceil(d.Seconds()))
	if s < min {
		return min
	}
	return s
}

// FormatInt renders an int for headers without pulling fmt into hot paths.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// FormatCoord renders a coordinate rounded to the given number of decimals.
// Equivalent coordinates must produce byte-identical strings so that cache
// keys built from them collapse.
func FormatCoord(v float64, decimals int) string {
	pow := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(math.Round(v*pow)/pow, 'f', decimals, 64)
}
