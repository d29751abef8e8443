package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizcraft/internal/domain"
	"quizcraft/internal/repository/models"
	"quizcraft/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	var content []domain.Question
	if m.Content != nil {
		content = make([]domain.Question, 0, len(m.Content))
		for _, q := range m.Content {
			content = append(content, domain.Question{
				Question:      q.Question,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
			})
		}
	}
	return &domain.Quiz{
		QuizID:       m.QuizID,
		UserID:       m.UserID,
		TopicID:      m.TopicID,
		TopicName:    m.TopicName,
		Status:       domain.QuizStatus(m.Status),
		ObjectKey:    m.ObjectKey.String,
		Content:      content,
		ErrorMessage: m.ErrorMessage.String,
		AttemptCount: m.AttemptCount,
		CreatedAt:    m.CreatedAt,
	}
}

func toModelQuestions(content []domain.Question) models.QuestionList {
	if content == nil {
		return nil
	}
	list := make(models.QuestionList, 0, len(content))
	for _, q := range content {
		list = append(list, models.Question{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return list
}

func (r *sqlxQuizRepository) Save(ctx context.Context, quiz *domain.Quiz) error {
	createdAt := quiz.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO quizzes (quiz_id, user_id, topic_id, topic_name, status, object_key, quiz_content, error_message, attempt_count, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		quiz.QuizID,
		quiz.UserID,
		quiz.TopicID,
		quiz.TopicName,
		string(quiz.Status),
		util.StringToNullString(quiz.ObjectKey),
		toModelQuestions(quiz.Content),
		util.StringToNullString(quiz.ErrorMessage),
		quiz.AttemptCount,
		createdAt,
	)
	if err != nil {
		return domain.NewTransportError(fmt.Sprintf("failed to save quiz %s", quiz.QuizID), err)
	}
	return nil
}

func (r *sqlxQuizRepository) GetByID(ctx context.Context, quizID string) (*domain.Quiz, error) {
	var m models.Quiz
	query := `SELECT quiz_id, user_id, topic_id, topic_name, status, object_key, quiz_content, error_message, attempt_count, created_at
	          FROM quizzes WHERE quiz_id = $1`
	if err := r.db.GetContext(ctx, &m, query, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewTransportError(fmt.Sprintf("failed to get quiz %s", quizID), err)
	}
	return toDomainQuiz(&m), nil
}

func (r *sqlxQuizRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Quiz, error) {
	var rows []models.Quiz
	query := `SELECT quiz_id, user_id, topic_id, topic_name, status, object_key, quiz_content, error_message, attempt_count, created_at
	          FROM quizzes WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, domain.NewTransportError("failed to list quizzes", err)
	}
	quizzes := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, toDomainQuiz(&rows[i]))
	}
	return quizzes, nil
}

func (r *sqlxQuizRepository) Delete(ctx context.Context, quizID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE quiz_id = $1`, quizID); err != nil {
		return domain.NewTransportError(fmt.Sprintf("failed to delete quiz %s", quizID), err)
	}
	return nil
}

// Complete marks the job completed and attaches the generated content.
// Status transitions are one-directional; callers check for a terminal state
// before reprocessing a redelivered message.
func (r *sqlxQuizRepository) Complete(ctx context.Context, quizID string, content []domain.Question) error {
	query := `UPDATE quizzes SET status = $1, quiz_content = $2, error_message = NULL WHERE quiz_id = $3`
	_, err := r.db.ExecContext(ctx, query, string(domain.QuizStatusCompleted), toModelQuestions(content), quizID)
	if err != nil {
		return domain.NewTransportError(fmt.Sprintf("failed to complete quiz %s", quizID), err)
	}
	return nil
}

// Fail marks the job failed and records the cause.
func (r *sqlxQuizRepository) Fail(ctx context.Context, quizID string, errorMessage string) error {
	query := `UPDATE quizzes SET status = $1, error_message = $2 WHERE quiz_id = $3`
	_, err := r.db.ExecContext(ctx, query, string(domain.QuizStatusFailed), errorMessage, quizID)
	if err != nil {
		return domain.NewTransportError(fmt.Sprintf("failed to mark quiz %s as failed", quizID), err)
	}
	return nil
}

func (r *sqlxQuizRepository) IncrementAttemptCount(ctx context.Context, quizID string) error {
	query := `UPDATE quizzes SET attempt_count = attempt_count + 1 WHERE quiz_id = $1`
	if _, err := r.db.ExecContext(ctx, query, quizID); err != nil {
		return domain.NewTransportError(fmt.Sprintf("failed to increment attempt count for quiz %s", quizID), err)
	}
	return nil
}

var _ domain.QuizRepository = (*sqlxQuizRepository)(nil)
