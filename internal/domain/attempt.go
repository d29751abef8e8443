package domain

import (
	"context"
	"time"
)

// Attempt is one user's scored submission against a quiz. CorrectAnswers is
// snapshotted from the quiz at submission time so the attempt stays
// self-contained even if the quiz is later deleted.
type Attempt struct {
	AttemptID      string
	QuizID         string
	UserID         string
	Score          int
	TotalQuestions int
	Answers        map[string]string
	CorrectAnswers map[string]string
	CreatedAt      time.Time
}

// AttemptRepository persists attempts. Attempts are never mutated or deleted.
type AttemptRepository interface {
	Save(ctx context.Context, attempt *Attempt) error
	GetByID(ctx context.Context, attemptID string) (*Attempt, error)
	ListByUser(ctx context.Context, userID string) ([]*Attempt, error)
}
