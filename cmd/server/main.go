package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/thorzos/handyhub-backend/internal/config"
	"github.com/thorzos/handyhub-backend/internal/db"
	"github.com/thorzos/handyhub-backend/internal/geo"
	"github.com/thorzos/handyhub-backend/internal/goroutine"
	httpHandlers "github.com/thorzos/handyhub-backend/internal/http/handlers"
	httpRouter "github.com/thorzos/handyhub-backend/internal/http/router"
	"github.com/thorzos/handyhub-backend/internal/logger"
	"github.com/thorzos/handyhub-backend/internal/push"
	"github.com/thorzos/handyhub-backend/internal/repository"
	"github.com/thorzos/handyhub-backend/internal/service"
	"github.com/thorzos/handyhub-backend/internal/storage"
	"github.com/thorzos/handyhub-backend/internal/ws"
)

func main() {
	// Context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: failed to load configuration: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}
	goroutine.SetLogger(logger.Log)

	// Database and migrations.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: failed to connect to the database: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: migrations failed: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: failed to prepare media storage: %v", err)
	}

	areaClient := geo.NewClient(cfg.AreaAPIBaseURL, cfg.AreaAPITimeout)

	// Repositories.
	userRepo := repository.NewUserRepository(dbConn)
	propertyRepo := repository.NewPropertyRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	jobImageRepo := repository.NewJobImageRepository(dbConn)
	offerRepo := repository.NewOfferRepository(dbConn)
	alertRepo := repository.NewSearchAlertRepository(dbConn)
	ratingRepo := repository.NewRatingRepository(dbConn)
	licenseRepo := repository.NewLicenseRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	chatRepo := repository.NewChatRepository(dbConn)
	outboxRepo := repository.NewOutboxRepository(dbConn)
	pushSubRepo := repository.NewPushSubscriptionRepository(dbConn)

	// Services.
	authService := service.NewAuthService(userRepo, areaClient, tokenManager, logger.Log)
	userService := service.NewUserService(userRepo, areaClient, logger.Log)
	propertyService := service.NewPropertyService(propertyRepo, areaClient, logger.Log)
	alertService := service.NewSearchAlertService(alertRepo, jobRepo, outboxRepo, logger.Log)
	jobService := service.NewJobService(jobRepo, offerRepo, propertyRepo, licenseRepo, reportRepo, userRepo, alertService)
	jobImageService := service.NewJobImageService(jobImageRepo, jobRepo, photoStorage)
	offerService := service.NewOfferService(offerRepo, jobRepo)
	ratingService := service.NewRatingService(ratingRepo, jobRepo, offerRepo)
	licenseService := service.NewLicenseService(licenseRepo, outboxRepo)
	reportService := service.NewReportService(reportRepo, jobRepo, userRepo)
	chatService := service.NewChatService(chatRepo)
	pushService := service.NewPushService(pushSubRepo)

	// Websocket hub for live notifications and chat.
	hub := ws.NewHub()
	goroutine.SafeGo(hub.Run)

	// Outbox sweeper delivering queued notifications.
	sender := push.NewEndpointSender(cfg.PushEndpointTimeout)
	dispatcher := push.NewDispatcher(outboxRepo, pushSubRepo, sender, hub, logger.Log, cfg.PushMaxAttempts)
	if err := dispatcher.Start(cfg.PushSweepSchedule); err != nil {
		log.Fatalf("main: failed to start the notification dispatcher: %v", err)
	}
	defer dispatcher.Stop()

	// HTTP handlers.
	h := httpRouter.Handlers{
		Auth:       httpHandlers.NewAuthHandler(authService),
		Users:      httpHandlers.NewUserHandler(userService),
		Jobs:       httpHandlers.NewJobHandler(jobService, offerService),
		JobImages:  httpHandlers.NewJobImageHandler(jobImageService),
		Offers:     httpHandlers.NewOfferHandler(offerService),
		Alerts:     httpHandlers.NewSearchAlertHandler(alertService),
		Ratings:    httpHandlers.NewRatingHandler(ratingService),
		Properties: httpHandlers.NewPropertyHandler(propertyService),
		Licenses:   httpHandlers.NewLicenseHandler(licenseService),
		Reports:    httpHandlers.NewReportHandler(reportService),
		Push:       httpHandlers.NewPushHandler(pushService),
		Chats:      httpHandlers.NewChatHandler(chatService),
		WS:         httpHandlers.NewWSHandler(hub, chatRepo, tokenManager, logger.Log),
		Health:     httpHandlers.NewHealthHandler(dbConn),
	}

	engine := httpRouter.SetupRouter(cfg, h, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Shut the server down when a signal arrives.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	log.Printf("main: HTTP server listening on port %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server exited with error: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: failed to close the database: %v", err)
	}
}
