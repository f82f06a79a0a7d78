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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialfeed/internal/cache"
	"socialfeed/internal/config"
	"socialfeed/internal/logger"
	"socialfeed/internal/router"
	"socialfeed/internal/services"
	"socialfeed/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	log, err := logger.New(cfg.LogLevel, cfg.GinMode != gin.ReleaseMode)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	if cfg.SessionSecret == config.DefaultSessionSecret {
		log.Warn("SESSION_SECRET is not set, using the development default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(store.Options{
		Backend: cfg.StoreBackend,
		DataDir: cfg.DataDir,
		DSN:     cfg.DatabaseURL,
	}, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	counts, err := st.Check(ctx)
	if err != nil {
		return fmt.Errorf("check store: %w", err)
	}
	log.Info("Store ready",
		zap.String("backend", cfg.StoreBackend),
		zap.Int("users", counts[store.KindUsers]),
		zap.Int("posts", counts[store.KindPosts]))

	newsCache, closeCache, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	r := router.New(router.Options{
		SessionSecret:  cfg.SessionSecret,
		SiteURL:        cfg.SiteURL,
		TemplatesDir:   cfg.TemplatesDir,
		StaticDir:      cfg.StaticDir,
		AuthRateLimit:  cfg.AuthRateLimit,
		TrustedProxies: cfg.TrustedProxies,
		Store:          st,
		Auth:           services.NewAuthService(st.Users, log),
		Posts:          services.NewPostService(st.Posts, log),
		News: services.NewNewsService(services.NewsOptions{
			BaseURL:  cfg.NewsBaseURL,
			Timeout:  cfg.NewsTimeout,
			Cache:    newsCache,
			CacheTTL: cfg.NewsCacheTTL,
		}, log),
		Logger: log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("SocialFeed server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openCache picks Redis when REDIS_URL is set and an in-process LRU otherwise.
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Cache, func(), error) {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("News cache: redis")
		return rc, func() { _ = rc.Close() }, nil
	}

	lc, err := cache.NewLRU(64)
	if err != nil {
		return nil, nil, err
	}
	log.Info("News cache: in process")
	return lc, func() {}, nil
}
