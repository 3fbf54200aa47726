package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hostelportal/internal/apiclient"
	"hostelportal/internal/cache"
	"hostelportal/internal/config"
	"hostelportal/internal/credstore"
	"hostelportal/internal/dashboard"
	"hostelportal/internal/logging"
	"hostelportal/internal/session"
	"hostelportal/internal/web"
)

func main() {
	cfg := config.LoadPortal()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("portal stopped", zap.Error(err))
	}
}

func run(cfg *config.PortalConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.CredentialStore == "redis" || cfg.DashboardTTL > 0 {
		redisClient = cache.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer redisClient.Close()
	}

	store, err := newCredentialStore(cfg, redisClient)
	if err != nil {
		return err
	}

	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	sessions := session.NewManager(store, client, logger.Named("session"))

	// Until hydration finishes every gated page shows the waiting view.
	go func() {
		sessions.Hydrate(ctx)
		if cfg.VerifySession {
			sessions.Verify(ctx)
		}
	}()

	var dashCache *cache.Client
	if redisClient != nil && cfg.DashboardTTL > 0 {
		dashCache = cache.New(redisClient, logger.Named("cache"))
	}
	dashboards := dashboard.NewService(client, dashCache, cfg.DashboardTTL, logger.Named("dashboard"))

	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	handler := web.NewHandler(sessions, client, dashboards, cfg.DashboardRefresh, logger.Named("web"))
	web.Register(e, handler, renderer, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("portal listening",
			zap.String("addr", cfg.Addr),
			zap.String("api", cfg.APIBaseURL),
			zap.String("credentials", cfg.CredentialStore))
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newCredentialStore(cfg *config.PortalConfig, client *redis.Client) (credstore.Store, error) {
	switch cfg.CredentialStore {
	case "file":
		store, err := credstore.NewFileStore(cfg.CredentialPath)
		if err != nil {
			return nil, fmt.Errorf("credential store: %w", err)
		}
		return store, nil
	case "redis":
		return credstore.NewRedisStore(client, cfg.RedisKeyPrefix), nil
	case "memory":
		return credstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.CredentialStore)
	}
}
