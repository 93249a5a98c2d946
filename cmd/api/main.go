package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/wordrecall/backend/internal/auth"
	"github.com/wordrecall/backend/internal/background"
	"github.com/wordrecall/backend/internal/config"
	"github.com/wordrecall/backend/internal/handlers"
	"github.com/wordrecall/backend/internal/logger"
	"github.com/wordrecall/backend/internal/middleware"
	"github.com/wordrecall/backend/internal/predictor"
	"github.com/wordrecall/backend/internal/repositories"
	"github.com/wordrecall/backend/internal/scheduler"
	"github.com/wordrecall/backend/internal/services"
	"go.uber.org/zap"
)

// @title WordRecall API
// @version 1.0
// @description API for adaptive vocabulary quizzes and recall tracking

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting WordRecall API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token validator
	tokenValidator := auth.NewTokenValidator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize repositories
	wordsRepo := repositories.NewWordsRepository(db, logger.Logger)
	logsRepo := repositories.NewInteractionLogRepository(db, logger.Logger)
	progressRepo := repositories.NewUserProgressRepository(db, logger.Logger)
	statsRepo := repositories.NewUserStatsRepository(db, logger.Logger)

	// Background task spawner shared by the quiz pipeline and recall cache
	spawner := background.NewSpawner(logger.Logger, 30*time.Second)

	// Initialize services
	predictorClient := predictor.NewClient(cfg.Predictor.BaseURL, cfg.Predictor.Timeout)
	recallService := services.NewRecallService(wordsRepo, predictorClient, spawner, logger.Logger, cfg.Quiz.PredictBatchLimit)
	progressService := services.NewProgressService(progressRepo, logger.Logger)
	leaderboardService := services.NewLeaderboardService(statsRepo, logger.Logger)
	quizService := services.NewQuizService(wordsRepo, logsRepo, recallService, progressService, leaderboardService, spawner, logger.Logger, cfg.Quiz.SessionSize, cfg.Quiz.SamplingBeta)
	wordService := services.NewWordService(wordsRepo, logsRepo, progressRepo, statsRepo, logger.Logger)
	analyticsService := services.NewAnalyticsService(logsRepo, logger.Logger)
	interactionService := services.NewInteractionService(logsRepo, logger.Logger)

	// Initialize handlers
	quizHandler := handlers.NewQuizHandler(quizService, logger.Logger)
	wordsHandler := handlers.NewWordsHandler(wordService, logger.Logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger.Logger)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, logger.Logger)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, logger.Logger)
	interactionsHandler := handlers.NewInteractionsHandler(interactionService, logger.Logger)

	// Start the recall cache scheduler
	recallScheduler := scheduler.New(wordsRepo, recallService, logger.Logger)
	recallScheduler.Start()
	defer recallScheduler.Stop()

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(1 * 1024 * 1024)) // 1MB
	r.Use(middleware.MetricsMiddleware)

	// Health check and metrics
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope authenticated routes to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(tokenValidator))

		quizHandler.RegisterRoutes(r)
		wordsHandler.RegisterRoutes(r)
		progressHandler.RegisterRoutes(r)
		analyticsHandler.RegisterRoutes(r)
		leaderboardHandler.RegisterRoutes(r)
		interactionsHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight background tasks drain before exit
	spawner.Wait()

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
