package service

import (
	"context"
	"fmt"
	"strings"

	"quizcraft/internal/domain"
	"quizcraft/internal/logger"
	"quizcraft/internal/util"

	"go.uber.org/zap"
)

// fallbackTopicName is used when topic-name inference fails. Name inference
// is best-effort and never aborts registration.
const fallbackTopicName = "Untitled Topic"

// TopicRegistry deduplicates and names quiz sources per user.
type TopicRegistry interface {
	// RegisterDocument registers an uploaded PDF under objectKey. Returns a
	// DUPLICATE_SOURCE error carrying the existing topic id when the same
	// document was already registered for this user.
	RegisterDocument(ctx context.Context, userID string, pdfBytes []byte, objectKey string) (*domain.Topic, error)
	// RegisterTopic registers a free-text topic, used verbatim as both name
	// and identity.
	RegisterTopic(ctx context.Context, userID string, topic string) (*domain.Topic, error)
}

type topicRegistry struct {
	topics    domain.TopicRepository
	storage   domain.ObjectStorage
	extractor domain.TextExtractor
	generator domain.ContentGenerator
}

// NewTopicRegistry creates a new instance of TopicRegistry.
func NewTopicRegistry(
	topics domain.TopicRepository,
	storage domain.ObjectStorage,
	extractor domain.TextExtractor,
	generator domain.ContentGenerator,
) TopicRegistry {
	return &topicRegistry{
		topics:    topics,
		storage:   storage,
		extractor: extractor,
		generator: generator,
	}
}

func (r *topicRegistry) RegisterDocument(ctx context.Context, userID string, pdfBytes []byte, objectKey string) (*domain.Topic, error) {
	sourceID := domain.PDFSourceIdentifier(pdfBytes)

	existing, err := r.topics.FindBySourceIdentifier(ctx, userID, sourceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewDuplicateSourceError("This PDF has already been used", existing.TopicID)
	}

	if err := r.storage.Put(ctx, objectKey, pdfBytes); err != nil {
		return nil, err
	}

	name := r.inferName(ctx, pdfBytes)
	name, err = r.ensureUniqueName(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	topic := &domain.Topic{
		UserID:           userID,
		TopicID:          util.NewULID(),
		Name:             name,
		Source:           domain.SourcePDF,
		SourceIdentifier: sourceID,
		ObjectKey:        objectKey,
	}
	if err := r.save(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (r *topicRegistry) RegisterTopic(ctx context.Context, userID string, topicText string) (*domain.Topic, error) {
	topicText = strings.TrimSpace(topicText)
	if topicText == "" {
		return nil, domain.NewValidationError("Topic cannot be empty")
	}
	sourceID := domain.TopicSourceIdentifier(topicText)

	existing, err := r.topics.FindBySourceIdentifier(ctx, userID, sourceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewDuplicateSourceError("Topic already exists", existing.TopicID)
	}

	topic := &domain.Topic{
		UserID:           userID,
		TopicID:          util.NewULID(),
		Name:             topicText,
		Source:           domain.SourceTopic,
		SourceIdentifier: sourceID,
	}
	if err := r.save(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// save inserts the topic. The unique index may still reject the insert when
// a concurrent request registered the same source between our lookup and
// now; re-resolve the winner so the error carries its topic id.
func (r *topicRegistry) save(ctx context.Context, topic *domain.Topic) error {
	err := r.topics.Save(ctx, topic)
	if err == nil {
		return nil
	}
	if domain.IsCode(err, domain.ErrDuplicateSource) {
		winner, lookupErr := r.topics.FindBySourceIdentifier(ctx, topic.UserID, topic.SourceIdentifier)
		if lookupErr == nil && winner != nil {
			return domain.NewDuplicateSourceError("This source has already been used", winner.TopicID)
		}
	}
	return err
}

// inferName extracts the first page and asks the generator for a concise
// name. Any failure falls back to a placeholder.
func (r *topicRegistry) inferName(ctx context.Context, pdfBytes []byte) string {
	text, err := r.extractor.ExtractFirstPage(pdfBytes, domain.MaxNamingChars)
	if err != nil {
		logger.Get().Warn("Failed to extract text for topic naming", zap.Error(err))
		return fallbackTopicName
	}
	name, err := r.generator.GenerateTopicName(ctx, text)
	if err != nil {
		logger.Get().Warn("Topic name inference failed, using placeholder", zap.Error(err))
		return fallbackTopicName
	}
	return name
}

// ensureUniqueName appends a running counter when other topics for this user
// already share the candidate name prefix: "Algebra" -> "Algebra (2)".
func (r *topicRegistry) ensureUniqueName(ctx context.Context, userID, name string) (string, error) {
	count, err := r.topics.CountByNamePrefix(ctx, userID, name)
	if err != nil {
		logger.Get().Warn("Failed to check name uniqueness", zap.Error(err))
		return name, nil
	}
	if count > 0 {
		return fmt.Sprintf("%s (%d)", name, count+1), nil
	}
	return name, nil
}
