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

	"github.com/faceoff-gg/progression/config"
	"github.com/faceoff-gg/progression/db"
	"github.com/faceoff-gg/progression/handlers"
	"github.com/faceoff-gg/progression/middleware"
	"github.com/faceoff-gg/progression/repositories"
	api "github.com/faceoff-gg/progression/routes"
	"github.com/faceoff-gg/progression/services"
	"github.com/faceoff-gg/progression/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
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

	// Хранилище логотипов (Cloudflare R2), опционально
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
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
	} else {
		logger.Warn("R2 storage is not configured, logo upload disabled")
	}

	// Инициализация репозиториев
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	seriaRepo := repositories.NewPostgresSeriaRepository(dbConn)
	playoffRepo := repositories.NewPostgresPlayoffRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	txManager := db.NewTxManager(dbConn)
	teamService := services.NewTeamService(teamRepo, uploader)
	matchService := services.NewMatchService(matchRepo, teamRepo)
	seriaService := services.NewSeriaService(txManager, seriaRepo, matchRepo, matchService)
	playoffService := services.NewPlayoffService(txManager, playoffRepo, seriaRepo, matchRepo, seriaService)
	groupService := services.NewGroupService(txManager, groupRepo, teamRepo, matchRepo, seriaRepo, matchService, seriaService)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	teamHandler := handlers.NewTeamHandler(teamService)
	matchHandler := handlers.NewMatchHandler(matchService)
	seriaHandler := handlers.NewSeriaHandler(seriaService)
	playoffHandler := handlers.NewPlayoffHandler(playoffService)
	groupHandler := handlers.NewGroupHandler(groupService)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		rateLimiter,
		teamHandler,
		matchHandler,
		seriaHandler,
		playoffHandler,
		groupHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
