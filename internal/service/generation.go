package service

import (
	"context"
	"fmt"

	"quizcraft/internal/domain"
	"quizcraft/internal/logger"
	"quizcraft/internal/util"

	"go.uber.org/zap"
)

// GenerationService is the job producer: it resolves or creates a topic,
// records a pending quiz job, and enqueues a generation message.
type GenerationService interface {
	CreateFromDocument(ctx context.Context, userID string, pdfBytes []byte) (*domain.Quiz, error)
	CreateFromTopic(ctx context.Context, userID string, topic string) (*domain.Quiz, error)
	// Regenerate queues a fresh job for an existing topic, reusing its stored
	// source metadata. The previous job and its attempts stay queryable.
	Regenerate(ctx context.Context, userID string, topicID string) (*domain.Quiz, error)
}

type generationService struct {
	registry TopicRegistry
	topics   domain.TopicRepository
	quizzes  domain.QuizRepository
	queue    domain.GenerationQueue
}

// NewGenerationService creates a new instance of GenerationService.
func NewGenerationService(
	registry TopicRegistry,
	topics domain.TopicRepository,
	quizzes domain.QuizRepository,
	queue domain.GenerationQueue,
) GenerationService {
	return &generationService{
		registry: registry,
		topics:   topics,
		quizzes:  quizzes,
		queue:    queue,
	}
}

func (s *generationService) CreateFromDocument(ctx context.Context, userID string, pdfBytes []byte) (*domain.Quiz, error) {
	if len(pdfBytes) == 0 {
		return nil, domain.NewValidationError("Request body is empty")
	}

	quizID := util.NewULID()
	objectKey := fmt.Sprintf("quizzes/%s.pdf", quizID)

	topic, err := s.registry.RegisterDocument(ctx, userID, pdfBytes, objectKey)
	if err != nil {
		return nil, err
	}
	return s.queueJob(ctx, quizID, userID, topic)
}

func (s *generationService) CreateFromTopic(ctx context.Context, userID string, topicText string) (*domain.Quiz, error) {
	topic, err := s.registry.RegisterTopic(ctx, userID, topicText)
	if err != nil {
		return nil, err
	}
	return s.queueJob(ctx, util.NewULID(), userID, topic)
}

func (s *generationService) Regenerate(ctx context.Context, userID string, topicID string) (*domain.Quiz, error) {
	topic, err := s.topics.GetByID(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, domain.NewNotFoundError("Topic not found")
	}
	return s.queueJob(ctx, util.NewULID(), userID, topic)
}

// queueJob writes the pending job row, then enqueues the generation message.
// An enqueue failure leaves the row permanently pending with no message;
// there is no automatic recovery for that orphan.
func (s *generationService) queueJob(ctx context.Context, quizID, userID string, topic *domain.Topic) (*domain.Quiz, error) {
	quiz := &domain.Quiz{
		QuizID:    quizID,
		UserID:    userID,
		TopicID:   topic.TopicID,
		TopicName: topic.Name,
		Status:    domain.QuizStatusPending,
		ObjectKey: topic.ObjectKey,
	}
	if err := s.quizzes.Save(ctx, quiz); err != nil {
		return nil, err
	}

	msg := domain.GenerationMessage{
		QuizID:    quizID,
		UserID:    userID,
		TopicID:   topic.TopicID,
		Source:    topic.Source,
		TopicName: topic.Name,
		ObjectKey: topic.ObjectKey,
	}
	if err := s.queue.Enqueue(ctx, msg); err != nil {
		logger.Get().Error("Failed to enqueue generation message; quiz job is orphaned",
			zap.String("quiz_id", quizID),
			zap.Error(err))
		return nil, err
	}

	logger.Get().Info("Generation job queued",
		zap.String("quiz_id", quizID),
		zap.String("topic_id", topic.TopicID),
		zap.String("source", string(topic.Source)))
	return quiz, nil
}
