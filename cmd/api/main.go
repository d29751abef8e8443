package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizcraft/internal/adapter/extractor"
	"quizcraft/internal/adapter/notifier"
	"quizcraft/internal/adapter/queue"
	"quizcraft/internal/adapter/quizgen"
	"quizcraft/internal/cache"
	"quizcraft/internal/config"
	"quizcraft/internal/database"
	"quizcraft/internal/handler"
	"quizcraft/internal/logger"
	"quizcraft/internal/middleware"
	"quizcraft/internal/repository"
	"quizcraft/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXPostgresDB(cfg.DB.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis client
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")

	// Initialize repositories
	topicRepository := repository.NewSQLXTopicRepository(db)
	quizRepository := repository.NewSQLXQuizRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	documentStorage := repository.NewSQLXDocumentStorage(db)

	// Initialize adapters
	generationQueue, err := queue.NewRedisStreamQueue(redisClient, cfg.Queue, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize generation queue", zap.Error(err))
	}
	quizNotifier := notifier.NewRedisNotifier(redisClient, cfg.Notifications, appLogger)
	pdfExtractor := extractor.NewPDFExtractor()
	generator, err := quizgen.NewOpenAIGenerator(cfg.OpenAI, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize quiz generator", zap.Error(err))
	}

	// Initialize services
	topicRegistry := service.NewTopicRegistry(topicRepository, documentStorage, pdfExtractor, generator)
	generationService := service.NewGenerationService(topicRegistry, topicRepository, quizRepository, generationQueue)
	quizService := service.NewQuizService(quizRepository, attemptRepository)
	notificationService := service.NewNotificationService(quizNotifier)
	appLogger.Info("Services initialized")

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(generationService, quizService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	vm := middleware.NewValidationMiddleware()

	// API group, all routes require an authenticated user
	apiGroup := app.Group("/api", middleware.Protected(cfg.Auth.JWTSecret))

	quizGroup := apiGroup.Group("/quizzes")
	quizGroup.Post("/", quizHandler.Generate)
	quizGroup.Get("/", quizHandler.ListQuizzes)
	quizGroup.Get("/:quizId", vm.ValidateIDParam("quizId", "quiz_id"), quizHandler.GetQuiz)
	quizGroup.Delete("/:quizId", vm.ValidateIDParam("quizId", "quiz_id"), quizHandler.DeleteQuiz)
	quizGroup.Post("/:quizId/attempts", vm.ValidateIDParam("quizId", "quiz_id"), quizHandler.SubmitAttempt)

	apiGroup.Get("/attempts/:attemptId", vm.ValidateIDParam("attemptId", "attempt_id"), quizHandler.GetAttempt)
	apiGroup.Get("/profile", quizHandler.GetProfile)
	apiGroup.Post("/notifications/subscribe", notificationHandler.Subscribe)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
