package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizcraft/internal/domain"
	"quizcraft/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new instance of sqlxAttemptRepository.
func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

func toDomainAttempt(m *models.Attempt) *domain.Attempt {
	if m == nil {
		return nil
	}
	return &domain.Attempt{
		AttemptID:      m.AttemptID,
		QuizID:         m.QuizID,
		UserID:         m.UserID,
		Score:          m.Score,
		TotalQuestions: m.TotalQuestions,
		Answers:        m.Answers,
		CorrectAnswers: m.CorrectAnswers,
		CreatedAt:      m.CreatedAt,
	}
}

func (r *sqlxAttemptRepository) Save(ctx context.Context, attempt *domain.Attempt) error {
	createdAt := attempt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO attempts (attempt_id, quiz_id, user_id, score, total_questions, answers, correct_answers, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		attempt.AttemptID,
		attempt.QuizID,
		attempt.UserID,
		attempt.Score,
		attempt.TotalQuestions,
		models.StringMap(attempt.Answers),
		models.StringMap(attempt.CorrectAnswers),
		createdAt,
	)
	if err != nil {
		return domain.NewTransportError(fmt.Sprintf("failed to save attempt %s", attempt.AttemptID), err)
	}
	return nil
}

func (r *sqlxAttemptRepository) GetByID(ctx context.Context, attemptID string) (*domain.Attempt, error) {
	var m models.Attempt
	query := `SELECT attempt_id, quiz_id, user_id, score, total_questions, answers, correct_answers, created_at
	          FROM attempts WHERE attempt_id = $1`
	if err := r.db.GetContext(ctx, &m, query, attemptID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewTransportError(fmt.Sprintf("failed to get attempt %s", attemptID), err)
	}
	return toDomainAttempt(&m), nil
}

func (r *sqlxAttemptRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Attempt, error) {
	var rows []models.Attempt
	query := `SELECT attempt_id, quiz_id, user_id, score, total_questions, answers, correct_answers, created_at
	          FROM attempts WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, domain.NewTransportError("failed to list attempts", err)
	}
	attempts := make([]*domain.Attempt, 0, len(rows))
	for i := range rows {
		attempts = append(attempts, toDomainAttempt(&rows[i]))
	}
	return attempts, nil
}

var _ domain.AttemptRepository = (*sqlxAttemptRepository)(nil)
