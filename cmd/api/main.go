package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voltedge/renewals-backend/api/controllers"
	"github.com/voltedge/renewals-backend/api/routes"
	"github.com/voltedge/renewals-backend/internal/attachments"
	"github.com/voltedge/renewals-backend/internal/auth"
	"github.com/voltedge/renewals-backend/internal/customers"
	"github.com/voltedge/renewals-backend/internal/importer"
	"github.com/voltedge/renewals-backend/internal/notifications"
	"github.com/voltedge/renewals-backend/internal/renewals"
	"github.com/voltedge/renewals-backend/internal/scheduler"
	"github.com/voltedge/renewals-backend/internal/users"
	"github.com/voltedge/renewals-backend/pkg/auth/session"
	"github.com/voltedge/renewals-backend/pkg/config"
	"github.com/voltedge/renewals-backend/pkg/db"
	"github.com/voltedge/renewals-backend/pkg/logger"
	"github.com/voltedge/renewals-backend/pkg/metrics"
	"github.com/voltedge/renewals-backend/pkg/migrate"
	"github.com/voltedge/renewals-backend/pkg/redis"
	"github.com/voltedge/renewals-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	customersRepo := customers.NewRepository(dbClient.DB())
	renewalsRepo := renewals.NewRepository(dbClient.DB())
	attachmentsRepo := attachments.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	preferencesRepo := notifications.NewPreferencesRepository(dbClient.DB())

	renewalScheduler, err := scheduler.New(notificationsRepo, preferencesRepo, time.Now)
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	customersService, err := customers.NewService(customersRepo, usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
		os.Exit(1)
	}

	renewalsService, err := renewals.NewService(renewalsRepo, customersRepo, usersRepo, renewalScheduler)
	if err != nil {
		logg.Error(context.Background(), "failed to create renewals service", err)
		os.Exit(1)
	}

	attachmentsService, err := attachments.NewService(attachmentsRepo, renewalsRepo, gcsClient, cfg.GCS)
	if err != nil {
		logg.Error(context.Background(), "failed to create attachments service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo, preferencesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	importMetrics := metrics.NewImportBatchMetrics(prometheus.DefaultRegisterer)
	batchImporter, err := importer.New(importer.Params{
		Customers: customersRepo,
		Users:     usersRepo,
		Renewals:  renewalsRepo,
		Scheduler: renewalScheduler,
		Metrics:   importMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create importer", err)
		os.Exit(1)
	}

	handler := routes.New(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		Sessions:       sessionManager,
		RateLimitStore: redisClient,
		Health: controllers.NewHealthController(logg, map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
			"gcs":      gcsClient,
		}),
		Auth:          controllers.NewAuthController(authService, logg),
		Users:         controllers.NewUsersController(usersService, logg),
		Customers:     controllers.NewCustomersController(customersService, renewalsService, logg),
		Renewals:      controllers.NewRenewalsController(renewalsService, batchImporter, cfg.Import, logg),
		Attachments:   controllers.NewAttachmentsController(attachmentsService, logg),
		Notifications: controllers.NewNotificationsController(notificationsService, logg),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
