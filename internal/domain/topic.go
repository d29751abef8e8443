package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SourceType identifies where a topic's content came from.
type SourceType string

const (
	SourcePDF   SourceType = "pdf"
	SourceTopic SourceType = "topic"
)

// Topic is a deduplicated, named source from which quizzes are generated,
// scoped to one user. Topics are never mutated after creation.
type Topic struct {
	UserID           string
	TopicID          string
	Name             string
	Source           SourceType
	SourceIdentifier string
	ObjectKey        string // set iff Source == SourcePDF
	CreatedAt        time.Time
}

// PDFSourceIdentifier derives the dedup key for an uploaded document.
func PDFSourceIdentifier(pdfBytes []byte) string {
	sum := sha256.Sum256(pdfBytes)
	return fmt.Sprintf("pdf_%s", hex.EncodeToString(sum[:]))
}

// TopicSourceIdentifier derives the dedup key for a free-text topic.
func TopicSourceIdentifier(topic string) string {
	return fmt.Sprintf("topic_%s", topic)
}

// TopicRepository persists topics. The (user_id, source_identifier) pair is
// unique per user; implementations must report a DUPLICATE_SOURCE error when
// an insert would violate that.
type TopicRepository interface {
	Save(ctx context.Context, topic *Topic) error
	GetByID(ctx context.Context, userID, topicID string) (*Topic, error)
	FindBySourceIdentifier(ctx context.Context, userID, sourceIdentifier string) (*Topic, error)
	CountByNamePrefix(ctx context.Context, userID, namePrefix string) (int, error)
}
