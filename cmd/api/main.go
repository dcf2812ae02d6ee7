package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codecoach/codecoach-api/internal/config"
	"github.com/codecoach/codecoach-api/internal/database"
	"github.com/codecoach/codecoach-api/internal/handler"
	"github.com/codecoach/codecoach-api/internal/jobs"
	"github.com/codecoach/codecoach-api/internal/middleware"
	"github.com/codecoach/codecoach-api/internal/models"
	"github.com/codecoach/codecoach-api/internal/repository"
	"github.com/codecoach/codecoach-api/internal/router"
	"github.com/codecoach/codecoach-api/internal/service"
	"github.com/codecoach/codecoach-api/pkg/judge0"
	"github.com/codecoach/codecoach-api/pkg/tutor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.ProblemLanguage{},
		&models.Submission{},
		&models.AIConversation{},
		&models.AIMessage{},
		&models.APIKey{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	judgeClient, err := judge0.New(judge0.Config{
		BaseURL: cfg.JudgeBaseURL,
		APIKey:  cfg.JudgeAPIKey,
		APIHost: cfg.JudgeAPIHost,
		Timeout: cfg.JudgeTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create judge client: %v", err)
	}

	tutorClient := tutor.NewOpenAIClient(tutor.OpenAIConfig{
		Model:     cfg.TutorModel,
		MaxTokens: cfg.TutorMaxTokens,
		Timeout:   cfg.TutorTimeout,
		Logger:    logger,
	})

	authenticator, err := service.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTTokenTTL)
	if err != nil {
		log.Fatalf("failed to create authenticator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)

	authService := service.NewAuthService(userRepo, redisClient, authenticator, cfg.ConfirmationCodeTTL, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, judgeClient, validate, logger)
	tutorService := service.NewTutorService(conversationRepo, apiKeyRepo, problemRepo, tutorClient, validate, logger)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, validate, logger)
	problemService := service.NewProblemService(problemRepo, judgeClient, redisClient, cfg.ProblemCacheTTL, logger)

	sweeper := jobs.NewRegistrationSweeper(userRepo, cfg.SweepSchedule, cfg.RegistrationMaxAge, logger)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("failed to start registration sweeper: %v", err)
	}
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		TutorHandler:      handler.NewTutorHandler(tutorService, logger),
		APIKeyHandler:     handler.NewAPIKeyHandler(apiKeyService, logger),
		ProblemHandler:    handler.NewProblemHandler(problemService, validate, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
