package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/JCHEPO/kiu/config"
	_ "github.com/JCHEPO/kiu/docs"
	"github.com/JCHEPO/kiu/internal/adapters/auth"
	"github.com/JCHEPO/kiu/internal/adapters/email"
	"github.com/JCHEPO/kiu/internal/adapters/realtime"
	delivery "github.com/JCHEPO/kiu/internal/delivery/http"
	"github.com/JCHEPO/kiu/internal/delivery/http/controllers"
	"github.com/JCHEPO/kiu/internal/delivery/http/middleware"
	"github.com/JCHEPO/kiu/internal/repository/postgres"
	"github.com/JCHEPO/kiu/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Kiu API
// @version 1.0
// @description Event participation API: gatherings with rosters, supply lists, walls and realtime notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting disabled", "error", err)
			redisClient = nil
		}
	}

	broadcaster := realtime.NewBroadcaster(realtime.Config{
		PublishKey:   cfg.PubNubPublishKey,
		SubscribeKey: cfg.PubNubSubscribeKey,
		UUID:         cfg.PubNubUUID,
	}, logger)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokenIssuer, tokenVerifier := auth.NewJWTCodec(cfg.JWTSecret)

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	authService := services.NewAuthService(userRepo, hasher, tokenIssuer, emailService, cfg.JWTExpiry, logger)
	eventService := services.NewEventService(eventRepo, participantRepo, notificationRepo, broadcaster, serviceTimeout)
	participationService := services.NewParticipationService(eventRepo, participantRepo, userRepo, broadcaster)
	itemService := services.NewItemService(eventRepo, participantRepo, itemRepo, broadcaster)
	wallService := services.NewWallService(eventRepo, messageRepo, broadcaster)
	notificationService := services.NewNotificationService(notificationRepo)

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:          controllers.NewAuthController(logger, authService),
		Event:         controllers.NewEventController(logger, eventService),
		Participation: controllers.NewParticipationController(logger, participationService),
		Item:          controllers.NewItemController(logger, itemService),
		Wall:          controllers.NewWallController(logger, wallService),
		Notification:  controllers.NewNotificationController(logger, notificationService),
	}, tokenVerifier)

	var handler http.Handler = mux
	handler = middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow, logger, handler)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
