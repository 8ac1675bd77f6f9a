package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/merelformation/reservation-system/docs"
	"github.com/merelformation/reservation-system/internal/api"
	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/service"
	mongodb "github.com/merelformation/reservation-system/internal/infrastructure/db/mongo"
	redisdb "github.com/merelformation/reservation-system/internal/infrastructure/db/redis"
	"github.com/merelformation/reservation-system/internal/infrastructure/mail"
	"github.com/merelformation/reservation-system/internal/infrastructure/queue"
	"github.com/merelformation/reservation-system/internal/pkg/config"
	"github.com/merelformation/reservation-system/pkg/logger"
)

// @title        MerelFormation Reservation API
// @version      1.0
// @description  Reservation status workflow for training sessions and exam vehicle rentals.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "reservation-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	reservationRepo := mongodb.NewReservationRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	templateRepo := mongodb.NewTemplateRepository(db)
	notificationLogRepo := mongodb.NewNotificationLogRepository(db)
	sessionRepo := mongodb.NewSessionRepository(db)

	if err := reservationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("reservation indexes failed")
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}

	// --- Notification pipeline ---
	if err := service.SeedSystemTemplates(ctx, templateRepo, log); err != nil {
		log.Fatal().Err(err).Msg("template seed failed")
	}
	catalog, err := service.LoadTemplateCatalog(ctx, templateRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("template catalog failed")
	}

	sender := mail.NewWebhookSender(cfg.Notify.MailerURL, log)
	dedup := redisdb.NewDedupChecker(rdb)
	deliveries := queue.NewDispatcher(cfg.Notify.Workers, sender, dedup, notificationLogRepo, log)
	deliveries.Start(ctx)

	notifier := service.NewNotificationDispatcher(catalog, deliveries, cfg.Notify.AdminEmail, cfg.Notify.AppURL, log)

	// --- Services ---
	policy := domain.PolicyPermissive
	if cfg.Workflow.Strict {
		policy = domain.PolicyStrict
	}

	reservationService := service.NewReservationService(reservationRepo, userRepo, notifier, sessionRepo, policy, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	retentionService := service.NewRetentionService(userRepo, log)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		Reservations:     reservationService,
		Auth:             authService,
		Retention:        retentionService,
		Templates:        templateRepo,
		NotificationLogs: notificationLogRepo,
		Mongo:            db,
		Redis:            rdb,
		JWTSecret:        cfg.JWTSecret,
		Logger:           log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("reservation api started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("reservation api stopped")
}
