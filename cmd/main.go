package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/mobaarena/esports-platform/config"
	"github.com/mobaarena/esports-platform/db"
	"github.com/mobaarena/esports-platform/handlers"
	"github.com/mobaarena/esports-platform/middleware"
	"github.com/mobaarena/esports-platform/realtime"
	"github.com/mobaarena/esports-platform/repositories"
	api "github.com/mobaarena/esports-platform/routes"
	"github.com/mobaarena/esports-platform/services"
	"github.com/mobaarena/esports-platform/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	hub := realtime.NewHub(logger)
	go hub.Run()
	logger.Info("realtime hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	memberRepo := repositories.NewPostgresMemberRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo)
	eventService := services.NewEventService(dbConn, eventRepo, uploader)
	teamService := services.NewTeamService(dbConn, teamRepo, eventRepo, uploader)
	memberService := services.NewMemberService(memberRepo, teamRepo)
	groupService := services.NewGroupService(groupRepo, teamRepo)
	bracketService := services.NewBracketService(eventRepo, stageRepo, matchRepo, roundRepo)
	stageService := services.NewStageService(stageRepo, bracketService, hub, logger)
	matchService := services.NewMatchService(matchRepo, stageRepo, roundRepo, bracketService, hub, logger)
	roundService := services.NewRoundService(roundRepo, matchRepo, hub)
	dashboardService := services.NewDashboardService(statsRepo)
	logger.Info("services initialized")

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey, teamRepo, memberRepo)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	adminHandler := handlers.NewAdminHandler(authService, dashboardService)
	eventHandler := handlers.NewEventHandler(eventService, bracketService)
	teamHandler := handlers.NewTeamHandler(teamService)
	memberHandler := handlers.NewMemberHandler(memberService)
	groupHandler := handlers.NewGroupHandler(groupService)
	stageHandler := handlers.NewStageHandler(stageService)
	matchHandler := handlers.NewMatchHandler(matchService, roundService)
	wsHandler := handlers.NewWebSocketHandler(hub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		adminHandler,
		eventHandler,
		teamHandler,
		memberHandler,
		groupHandler,
		stageHandler,
		matchHandler,
		wsHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}

		// Close websocket clients after the HTTP listener has drained.
		hub.Shutdown()
	}
	logger.Info("application exited")
}
