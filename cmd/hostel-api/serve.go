package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hostelportal/docs"
	"hostelportal/internal/auth"
	"hostelportal/internal/cache"
	"hostelportal/internal/config"
	"hostelportal/internal/db"
	"hostelportal/internal/handler"
	"hostelportal/internal/logging"
	"hostelportal/internal/model"
	"hostelportal/internal/repository"
	"hostelportal/internal/router"
	"hostelportal/internal/service"
)

func newServeCmd() *cobra.Command {
	var resetDB bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), config.Load(), resetDB)
		},
	}
	cmd.Flags().BoolVar(&resetDB, "reset-db", false, "drop all tables before migrating")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, resetDB bool) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := openDB(cfg, logger, resetDB)
	if err != nil {
		return err
	}

	redisClient := cache.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer redisClient.Close()
	cacheClient := cache.New(redisClient, logger.Named("cache"))

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	roomRepo := repository.NewRoomRepository(gormDB)
	feedbackRepo := repository.NewFeedbackRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(redisClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, logger.Named("auth"))
	userService := service.NewUserService(userRepo, cacheClient)
	roomService := service.NewRoomService(roomRepo, userRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, jwtService, tokenStore, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		User:   handler.NewUserHandler(userService),
		Hostel: handler.NewHostelHandler(roomService, feedbackService),
	}, logger.Named("http"))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("hostel api listening",
			zap.String("addr", addr),
			zap.String("swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// openDB connects to MySQL and migrates the schema.
func openDB(cfg *config.Config, logger *zap.Logger, reset bool) (*gorm.DB, error) {
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}

	tables := []interface{}{&model.Feedback{}, &model.User{}, &model.Room{}}
	if reset {
		logger.Warn("dropping all tables")
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				logger.Warn("drop table", zap.Error(err))
			}
		}
	}

	if err := gormDB.AutoMigrate(&model.Room{}, &model.User{}, &model.Feedback{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return gormDB, nil
}
