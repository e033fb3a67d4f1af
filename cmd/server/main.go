package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/huynhanx03/tripwise-api/pkg/api"
	"github.com/huynhanx03/tripwise-api/pkg/common/cache/ttl"
	"github.com/huynhanx03/tripwise-api/pkg/common/http/middleware"
	"github.com/huynhanx03/tripwise-api/pkg/fetcher"
	"github.com/huynhanx03/tripwise-api/pkg/geo"
	"github.com/huynhanx03/tripwise-api/pkg/logger"
	"github.com/huynhanx03/tripwise-api/pkg/ratelimit"
	"github.com/huynhanx03/tripwise-api/pkg/settings"
	"github.com/huynhanx03/tripwise-api/pkg/store"
	"github.com/huynhanx03/tripwise-api/pkg/timer"
	"github.com/huynhanx03/tripwise-api/pkg/utils"
	"github.com/huynhanx03/tripwise-api/pkg/verify"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := settings.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logger)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *settings.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := store.Connect(ctx, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	st := store.NewMongoStore(client, cfg.MongoDB.Database)
	if err := st.EnsureIndexes(ctx); err != nil {
		return err
	}

	// One coarse shared clock for the hot paths: every admission check and
	// cache read would otherwise call time.Now.
	clock := timer.NewCachedTimer(100 * time.Millisecond)
	defer clock.Stop()

	limiter := ratelimit.New(ratelimit.Config{Shards: cfg.RateLimit.Shards, Timer: clock})

	upstreamFetcher := fetcher.New(fetcher.Config{
		Timeout:     utils.ToDurationMs(cfg.Upstream.Timeout),
		MaxRetries:  cfg.Upstream.MaxRetries,
		BackoffBase: utils.ToDurationMs(cfg.Upstream.BackoffBase),
		Logger:      log.Named("fetcher"),
	})

	geoClient := geo.New(geo.Config{
		BaseURL:      cfg.Upstream.BaseURL,
		APIKey:       cfg.Upstream.APIKey,
		Fetcher:      upstreamFetcher,
		GeocodeCache: ttl.New[geo.Coordinate](ttl.Config{Timer: clock}),
		PlacesCache:  ttl.New[[]geo.Place](ttl.Config{Timer: clock}),
		GeocodeTTL:   utils.ToDuration(cfg.Upstream.GeocodeTTL),
		PlacesTTL:    utils.ToDuration(cfg.Upstream.PlacesTTL),
		PlacesLimit:  cfg.Upstream.PlacesLimit,
		Logger:       log.Named("geo"),
	})

	// Verification tokens are single-use, so this fetcher must not retry.
	verifier := verify.New(verify.Config{
		Secret:    cfg.Turnstile.Secret,
		VerifyURL: cfg.Turnstile.VerifyURL,
		Fetcher: fetcher.New(fetcher.Config{
			Timeout:    utils.ToDurationMs(cfg.Turnstile.Timeout),
			MaxRetries: 0,
			Logger:     log.Named("verify"),
		}),
		Logger: log.Named("verify"),
	})

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(
		middleware.AccessLog(log.Named("http")),
		middleware.Recovery(log),
	)

	api.RegisterRoutes(engine, api.Config{
		Store:    st,
		Geo:      geoClient,
		Verifier: verifier,
		Limiter:  limiter,
		Budgets:  cfg.RateLimit,
		Logger:   log.Named("api"),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		utils.ToDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
