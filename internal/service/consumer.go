package service

import (
	"context"
	"time"

	"quizcraft/internal/domain"
	"quizcraft/internal/logger"

	"go.uber.org/zap"
)

// ConsumerService drives one queue consumer: it receives generation
// messages, runs extraction and generation, persists the terminal job state,
// notifies, and acknowledges the message only after the job is durable.
type ConsumerService interface {
	Run(ctx context.Context) error
	ProcessMessage(ctx context.Context, msg domain.GenerationMessage) error
}

type consumerService struct {
	quizzes   domain.QuizRepository
	storage   domain.ObjectStorage
	extractor domain.TextExtractor
	generator domain.ContentGenerator
	notifier  domain.Notifier
	queue     domain.QueueConsumer
}

// NewConsumerService creates a new instance of ConsumerService.
func NewConsumerService(
	quizzes domain.QuizRepository,
	storage domain.ObjectStorage,
	extractor domain.TextExtractor,
	generator domain.ContentGenerator,
	notifier domain.Notifier,
	queue domain.QueueConsumer,
) ConsumerService {
	return &consumerService{
		quizzes:   quizzes,
		storage:   storage,
		extractor: extractor,
		generator: generator,
		notifier:  notifier,
		queue:     queue,
	}
}

// Run receives and processes messages until the context is canceled. A
// failed message is left un-acked so the queue redelivers it.
func (s *consumerService) Run(ctx context.Context) error {
	l := logger.Get()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		deliveries, err := s.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.Error("Failed to receive from generation queue", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, delivery := range deliveries {
			if err := s.ProcessMessage(ctx, delivery.Message); err != nil {
				l.Error("Generation failed, leaving message for redelivery",
					zap.String("quiz_id", delivery.Message.QuizID),
					zap.Error(err))
				continue
			}
			if err := s.queue.Ack(ctx, delivery.ID); err != nil {
				// The job is already terminal; redelivery will short-circuit.
				l.Error("Failed to ack processed message",
					zap.String("quiz_id", delivery.Message.QuizID),
					zap.Error(err))
			}
		}
	}
}

// ProcessMessage runs the generation state machine for one message:
// received -> extracting (pdf only) -> generating -> persisting -> notifying.
// A nil return means the caller may acknowledge the message.
func (s *consumerService) ProcessMessage(ctx context.Context, msg domain.GenerationMessage) error {
	l := logger.Get().With(zap.String("quiz_id", msg.QuizID), zap.String("user_id", msg.UserID))

	quiz, err := s.quizzes.GetByID(ctx, msg.QuizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		// The job row was deleted after enqueue; nothing to process.
		l.Warn("Quiz job not found for queued message, discarding")
		return nil
	}
	if quiz.IsTerminal() {
		// Redelivered message for an already-processed job.
		l.Info("Quiz job already terminal, skipping reprocessing",
			zap.String("status", string(quiz.Status)))
		return nil
	}

	content, err := s.generate(ctx, msg)
	if err != nil {
		s.markFailed(ctx, msg, err)
		return err
	}

	if err := s.quizzes.Complete(ctx, msg.QuizID, content); err != nil {
		s.markFailed(ctx, msg, err)
		return err
	}
	l.Info("Quiz job completed", zap.Int("questions", len(content)))

	// Notification is best-effort: a publish failure must not fail the job.
	if err := s.notifier.NotifyCompleted(ctx, msg.UserID, msg.QuizID, msg.TopicName); err != nil {
		l.Warn("Failed to publish completion notification", zap.Error(err))
	}
	return nil
}

func (s *consumerService) generate(ctx context.Context, msg domain.GenerationMessage) ([]domain.Question, error) {
	if msg.Source == domain.SourcePDF {
		data, err := s.storage.Get(ctx, msg.ObjectKey)
		if err != nil {
			return nil, err
		}
		text, err := s.extractor.ExtractText(data, domain.MaxContentChars)
		if err != nil {
			return nil, err
		}
		return s.generator.GenerateFromDocument(ctx, text)
	}
	return s.generator.GenerateFromTopic(ctx, msg.TopicName)
}

// markFailed records the failure and notifies, both best-effort: a
// record-keeping failure is logged rather than compounded.
func (s *consumerService) markFailed(ctx context.Context, msg domain.GenerationMessage, cause error) {
	l := logger.Get().With(zap.String("quiz_id", msg.QuizID))
	if err := s.quizzes.Fail(ctx, msg.QuizID, cause.Error()); err != nil {
		l.Error("Failed to record failed job status", zap.Error(err))
	}
	if err := s.notifier.NotifyFailed(ctx, msg.UserID, msg.QuizID, msg.TopicName, cause.Error()); err != nil {
		l.Warn("Failed to publish failure notification", zap.Error(err))
	}
}
