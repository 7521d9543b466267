package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/buran83/makechat/internal/app"
	"github.com/buran83/makechat/internal/config"
	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/http/handler"
	"github.com/buran83/makechat/internal/http/router"
	"github.com/buran83/makechat/internal/observability"
	"github.com/buran83/makechat/internal/repository"
	"github.com/buran83/makechat/internal/service"
)

func main() {
	root := &cobra.Command{
		Use:           "makechat",
		Short:         "Multi-tenant chat backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Room{}, &domain.Member{}, &domain.Token{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	runtime, err := observability.InitRuntime(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	users := repository.NewUserRepository(db)
	rooms := repository.NewRoomRepository(db)
	tokens := repository.NewTokenRepository(db)
	sessions := repository.NewSessionStore(redisClient, cfg.SessionTTL)

	auth := service.NewAuthService(users, sessions, tokens, cfg.SecretKey)
	roomSvc := service.NewRoomService(rooms)
	tokenSvc := service.NewTokenService(tokens)

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(auth, cfg.SessionTTL),
		RoomHandler:      handler.NewRoomHandler(roomSvc, cfg.RoomsPerPage),
		TokenHandler:     handler.NewTokenHandler(tokenSvc, cfg.TokensPerPage),
		UserHandler:      handler.NewUserHandler(users, cfg.UsersPerPage),
		DashboardHandler: handler.NewDashboardHandler(),
		Resolver:         auth,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		EnableOTelHTTP:   cfg.OTELTracesEnabled || cfg.OTELMetricsEnabled,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return app.New(cfg, logger, server, runtime).Run(ctx)
}
