package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpptutor/cpptutor-backend/internal/config"
	"github.com/cpptutor/cpptutor-backend/internal/database"
	"github.com/cpptutor/cpptutor-backend/internal/handler"
	"github.com/cpptutor/cpptutor-backend/internal/llm"
	"github.com/cpptutor/cpptutor-backend/internal/logger"
	"github.com/cpptutor/cpptutor-backend/internal/repository"
	"github.com/cpptutor/cpptutor-backend/internal/router"
	"github.com/cpptutor/cpptutor-backend/internal/service"
	"github.com/cpptutor/cpptutor-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	// Refuses to start without SESSION_SECRET and OPENAI_API_KEY; there
	// is no insecure fallback secret.
	cfg, err := config.Load()
	if err != nil {
		log := logger.Setup("info", "pretty")
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("chat_model", cfg.ChatModel).
		Msg("Starting C++ Tutor Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	llmClient := llm.NewClient(cfg, log)

	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService)
	tutorService := service.NewTutorService(llmClient, log)
	quizService := service.NewQuizService(llmClient, attemptRepo, rdb, cfg, log)
	attemptService := service.NewAttemptService(attemptRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth: handler.NewAuthHandler(authService, userService),
		Chat: handler.NewChatHandler(tutorService),
		Quiz: handler.NewQuizHandler(quizService, attemptService),
		Page: handler.NewPageHandler(),
		WS:   handler.NewWSHandler(tutorService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
