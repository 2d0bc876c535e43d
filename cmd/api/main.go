package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tvcatalog/internal/config"
	"tvcatalog/internal/core/paging"
	httpx "tvcatalog/internal/http"
	"tvcatalog/internal/imagehost"
	"tvcatalog/internal/ratelimit"
	"tvcatalog/internal/services/account"
	catalogsvc "tvcatalog/internal/services/catalog"
	"tvcatalog/internal/store/postgres"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init DB
	pool := postgres.MustOpen(ctx, cfg.DB)
	defer pool.Close()
	if err := postgres.Migrate(pool); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	repo := postgres.NewRepo(pool)

	// Services
	accounts := account.NewService(repo.Users, cfg.Sec)
	catalog := catalogsvc.NewService(catalogsvc.Repositories{
		Series:   repo.Series,
		Seasons:  repo.Seasons,
		Episodes: repo.Episodes,
		Genres:   repo.Genres,
		Ratings:  repo.Ratings,
		States:   repo.States,
	}, imagehost.New(cfg.Images))

	// Login limiter: shared through redis when configured, per process otherwise
	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, login limiter fails open until it is back")
		}
		limiter = ratelimit.NewRedis(rdb, cfg.Sec.LoginAttemptsPerMin, time.Minute)
	} else {
		limiter = ratelimit.NewMemory(cfg.Sec.LoginAttemptsPerMin, time.Minute)
	}

	if cfg.IsProduction() && cfg.App.BaseURL == "" {
		log.Warn().Msg("BASE_URL not set, page links point at host and port")
	}
	links, err := paging.NewBuilder(cfg.Paging())
	if err != nil {
		log.Fatal().Err(err).Msg("page links")
	}

	// Router
	r := httpx.NewRouter(httpx.RouterDependencies{
		Accounts:     accounts,
		Catalog:      catalog,
		Links:        links,
		LoginLimiter: limiter,
	})

	addr := net.JoinHostPort(cfg.App.Host, cfg.App.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("env", cfg.App.Env).Msgf("tvcatalog API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	log.Info().Msg("server stopped")
}
