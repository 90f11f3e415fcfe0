// main.go
//
// Entry point for the Kelime game server.
// Responsibilities:
//   - Load .env and the typed configuration.
//   - Configure zerolog (level, json or console output).
//   - Open the database and apply migrations.
//   - Use redis for sessions and the score feed when REDIS_ADDR is set; memory otherwise.
//   - Serve HTTP until SIGINT/SIGTERM, then shut down gracefully.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/addkelime/kelime-server/internal/auth"
	"github.com/addkelime/kelime-server/internal/config"
	"github.com/addkelime/kelime-server/internal/daily"
	"github.com/addkelime/kelime-server/internal/db"
	"github.com/addkelime/kelime-server/internal/httpserver"
	"github.com/addkelime/kelime-server/internal/metrics"
	"github.com/addkelime/kelime-server/internal/realtime"
	"github.com/addkelime/kelime-server/internal/scoring"
	"github.com/addkelime/kelime-server/internal/store"
	"github.com/addkelime/kelime-server/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("bye")
}

func setupLogging(c config.LogConfig) {
	if lvl, err := zerolog.ParseLevel(c.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if c.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	clock, err := daily.NewClock(cfg.Daily.Timezone, cfg.Daily.ResetHour)
	if err != nil {
		return fmt.Errorf("daily clock: %w", err)
	}

	dict, err := words.Load(words.WithToday(clock.Today))
	if err != nil {
		return err
	}
	log.Info().
		Interface("words", dict.Stats()).
		Str("today", clock.Today()).
		Str("tz", cfg.Daily.Timezone).
		Int("resetHour", cfg.Daily.ResetHour).
		Msg("word lists loaded")

	conn, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.URL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn, cfg.DB.Driver); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	m := metrics.New()
	hub := realtime.NewHub(cfg.Origins(), m.WSClients)
	defer hub.Close()

	g, gctx := errgroup.WithContext(ctx)

	var (
		sessions  store.Store        = store.NewMemoryStore(cfg.Redis.SessionTTL)
		publisher realtime.Publisher = hub
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}

		sessions = store.NewRedisStore(rdb, cfg.Redis.SessionTTL)
		bridge := realtime.NewRedisBridge(rdb, hub)
		publisher = bridge
		g.Go(func() error {
			if err := bridge.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("score feed: %w", err)
			}
			return nil
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis enabled")
	}

	driver := cfg.DB.Driver
	results := daily.NewStore(conn, driver)
	authSvc := auth.NewService(auth.NewUserStore(conn, driver), auth.Config{
		Secret:       []byte(cfg.Auth.JWTSecret),
		TTL:          cfg.Auth.JWTTTL,
		CookieName:   cfg.Auth.CookieName,
		SecureCookie: !cfg.IsDev(),
	})

	srv := httpserver.New(httpserver.Deps{
		Dict:      dict,
		Clock:     clock,
		Sessions:  sessions,
		Results:   results,
		Scores:    scoring.NewService(results),
		Auth:      authSvc,
		Hub:       hub,
		Publisher: publisher,
		Metrics:   m,
		Origins:   cfg.Origins(),
		Timeout:   cfg.Server.Timeout,
		Logger:    log.Logger,
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Str("env", cfg.Env).Str("db", driver).Msg("starting kelime-server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
