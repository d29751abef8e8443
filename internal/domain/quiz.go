package domain

import (
	"context"
	"time"
)

// QuizStatus tracks a generation job through its lifecycle. Transitions are
// one-directional: pending -> completed or pending -> failed.
type QuizStatus string

const (
	QuizStatusPending   QuizStatus = "pending"
	QuizStatusCompleted QuizStatus = "completed"
	QuizStatusFailed    QuizStatus = "failed"
)

// Generation constants shared by the producer and consumer.
const (
	QuestionCount = 5
	OptionCount   = 4

	// MaxContentChars caps the extracted document text fed to the generator.
	MaxContentChars = 40000
	// MaxNamingChars caps the text used for topic-name inference.
	MaxNamingChars = 1000
)

// Question is a single multiple-choice question. In the well-formed case
// Options has exactly four entries and CorrectAnswer equals one of them.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// FallbackQuestions is the degraded result returned when the generative
// service's output cannot be parsed. It keeps the job in a terminal
// completed state instead of failing the pipeline.
func FallbackQuestions() []Question {
	return []Question{
		{
			Question:      "Error: Unable to generate quiz content",
			Options:       []string{"N/A"},
			CorrectAnswer: "N/A",
		},
	}
}

// IsFallback reports whether content is the degraded fallback result.
func IsFallback(content []Question) bool {
	return len(content) == 1 && content[0].Question == "Error: Unable to generate quiz content"
}

// Quiz is one generation job, created pending by the producer and moved to a
// terminal state exactly once by the consumer.
type Quiz struct {
	QuizID       string
	UserID       string
	TopicID      string
	TopicName    string
	Status       QuizStatus
	ObjectKey    string // set iff the source is an uploaded document
	Content      []Question
	ErrorMessage string
	AttemptCount int
	CreatedAt    time.Time
}

// IsTerminal reports whether the job has already reached a final state.
func (q *Quiz) IsTerminal() bool {
	return q.Status == QuizStatusCompleted || q.Status == QuizStatusFailed
}

// QuizRepository persists generation jobs.
type QuizRepository interface {
	Save(ctx context.Context, quiz *Quiz) error
	GetByID(ctx context.Context, quizID string) (*Quiz, error)
	ListByUser(ctx context.Context, userID string) ([]*Quiz, error)
	Delete(ctx context.Context, quizID string) error
	// Complete moves the job to completed and attaches the generated content.
	Complete(ctx context.Context, quizID string, content []Question) error
	// Fail moves the job to failed and records the cause.
	Fail(ctx context.Context, quizID string, errorMessage string) error
	IncrementAttemptCount(ctx context.Context, quizID string) error
}

// GenerationMessage is the queue payload linking a pending job to its source.
type GenerationMessage struct {
	QuizID    string     `json:"quiz_id"`
	UserID    string     `json:"user_id"`
	TopicID   string     `json:"topic_id"`
	Source    SourceType `json:"source"`
	TopicName string     `json:"topic_name"`
	ObjectKey string     `json:"s3_key,omitempty"`
}
