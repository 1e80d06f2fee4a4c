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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Prajjwal888/Smart-Check-AI/internal/config"
	"github.com/Prajjwal888/Smart-Check-AI/internal/database"
	"github.com/Prajjwal888/Smart-Check-AI/internal/handler"
	"github.com/Prajjwal888/Smart-Check-AI/internal/middleware"
	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/internal/repository"
	"github.com/Prajjwal888/Smart-Check-AI/internal/router"
	"github.com/Prajjwal888/Smart-Check-AI/internal/service"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/ai"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"
	cloud "github.com/Prajjwal888/Smart-Check-AI/pkg/cloudinary"
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
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionMatch{},
		&models.SubmissionResult{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	similarityClient, err := analysis.NewSimilarityClient(analysis.Config{
		BaseURL: cfg.SimilarityServiceURL,
		Timeout: cfg.AnalysisTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create similarity client: %v", err)
	}

	gradingClient, err := analysis.NewGradingClient(analysis.Config{
		BaseURL: cfg.GradingServiceURL,
		Timeout: cfg.AnalysisTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create grading client: %v", err)
	}

	reportClient, err := analysis.NewReportClient(analysis.Config{
		BaseURL: cfg.ReportServiceURL,
		Timeout: cfg.AnalysisTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create report client: %v", err)
	}

	var generator ai.QuestionGenerator
	if cfg.OpenAIAPIKey != "" {
		openAIGenerator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.QuestionModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create question generator: %v", err)
		}
		generator = openAIGenerator
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	events := service.NewNATSPublisher(natsConn, "smartcheck", logger)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, uploader, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploader, redisClient, cfg.FeedCacheTTL, logger)
	plagiarismService := service.NewPlagiarismService(submissionRepo, assignmentRepo, similarityClient, events, cfg.PlagiarismThreshold, logger)
	evaluationService := service.NewEvaluationService(submissionRepo, assignmentRepo, gradingClient, events, cfg.EvaluationResultStrategy, logger)
	reportService := service.NewReportService(submissionRepo, assignmentRepo, reportClient, logger)
	questionService := service.NewQuestionService(generator, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		PlagiarismHandler: handler.NewPlagiarismHandler(plagiarismService, logger),
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
		QuestionHandler:   handler.NewQuestionHandler(questionService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret, userRepo),
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
