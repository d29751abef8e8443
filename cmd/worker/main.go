package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"quizcraft/internal/adapter/extractor"
	"quizcraft/internal/adapter/notifier"
	"quizcraft/internal/adapter/queue"
	"quizcraft/internal/adapter/quizgen"
	"quizcraft/internal/cache"
	"quizcraft/internal/config"
	"quizcraft/internal/database"
	"quizcraft/internal/logger"
	"quizcraft/internal/repository"
	"quizcraft/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

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

	db, err := database.NewSQLXPostgresDB(cfg.DB.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	quizRepository := repository.NewSQLXQuizRepository(db)
	documentStorage := repository.NewSQLXDocumentStorage(db)
	pdfExtractor := extractor.NewPDFExtractor()
	quizNotifier := notifier.NewRedisNotifier(redisClient, cfg.Notifications, appLogger)

	generator, err := quizgen.NewOpenAIGenerator(cfg.OpenAI, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize quiz generator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Each worker gets its own consumer name so the stream's pending entries
	// are tracked per worker.
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Queue.Workers; i++ {
		workerCfg := cfg.Queue
		workerCfg.Consumer = fmt.Sprintf("%s-%d", cfg.Queue.Consumer, i)

		consumerQueue, err := queue.NewRedisStreamQueue(redisClient, workerCfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize consumer queue", zap.Error(err))
		}
		consumer := service.NewConsumerService(
			quizRepository,
			documentStorage,
			pdfExtractor,
			generator,
			quizNotifier,
			consumerQueue,
		)

		workerName := workerCfg.Consumer
		group.Go(func() error {
			appLogger.Info("Worker started", zap.String("consumer", workerName))
			return consumer.Run(ctx)
		})
	}

	appLogger.Info("Quiz generation workers running",
		zap.Int("workers", cfg.Queue.Workers),
		zap.String("stream", cfg.Queue.Stream),
		zap.String("group", cfg.Queue.Group))

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Fatal("Worker pool exited with error", zap.Error(err))
	}
	appLogger.Info("Workers exited gracefully")
}
