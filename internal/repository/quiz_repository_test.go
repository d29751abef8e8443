package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"quizcraft/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quizColumns = []string{"quiz_id", "user_id", "topic_id", "topic_name", "status", "object_key", "quiz_content", "error_message", "attempt_count", "created_at"}

func TestQuizSave_InsertsPendingJob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quizzes`)).
		WithArgs("quiz-1", "user-1", "topic-1", "Algebra", "pending",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &domain.Quiz{
		QuizID:    "quiz-1",
		UserID:    "user-1",
		TopicID:   "topic-1",
		TopicName: "Algebra",
		Status:    domain.QuizStatusPending,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizGetByID_DecodesContent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	content, err := json.Marshal([]domain.Question{
		{Question: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
	})
	require.NoError(t, err)

	rows := sqlmock.NewRows(quizColumns).
		AddRow("quiz-1", "user-1", "topic-1", "Algebra", "completed", nil, content, nil, 3, time.Now().UTC())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM quizzes WHERE quiz_id = $1`)).
		WithArgs("quiz-1").
		WillReturnRows(rows)

	quiz, err := repo.GetByID(context.Background(), "quiz-1")
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.Equal(t, domain.QuizStatusCompleted, quiz.Status)
	require.Len(t, quiz.Content, 1)
	assert.Equal(t, "Q1", quiz.Content[0].Question)
	assert.Equal(t, 3, quiz.AttemptCount)
}

func TestQuizGetByID_NoRowsIsNilNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM quizzes WHERE quiz_id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	quiz, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, quiz)
}

func TestQuizComplete_ClearsErrorMessage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE quizzes SET status = $1, quiz_content = $2, error_message = NULL WHERE quiz_id = $3`)).
		WithArgs("completed", sqlmock.AnyArg(), "quiz-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Complete(context.Background(), "quiz-1", []domain.Question{
		{Question: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizFail_RecordsCause(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE quizzes SET status = $1, error_message = $2 WHERE quiz_id = $3`)).
		WithArgs("failed", "extraction failed", "quiz-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Fail(context.Background(), "quiz-1", "extraction failed")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizIncrementAttemptCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXQuizRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE quizzes SET attempt_count = attempt_count + 1 WHERE quiz_id = $1`)).
		WithArgs("quiz-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementAttemptCount(context.Background(), "quiz-1"))
}
