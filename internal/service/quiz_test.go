package service

import (
	"context"
	"testing"

	"quizcraft/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func completedQuiz(quizID, userID string) *domain.Quiz {
	return &domain.Quiz{
		QuizID:    quizID,
		UserID:    userID,
		TopicID:   "topic-1",
		TopicName: "Algebra",
		Status:    domain.QuizStatusCompleted,
		Content: []domain.Question{
			{Question: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
			{Question: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "b"},
			{Question: "Q3", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "c"},
			{Question: "Q4", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "d"},
			{Question: "Q5", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
		},
	}
}

func TestSubmitAttempt_ScoresExactMatches(t *testing.T) {
	quizzes := new(MockQuizRepository)
	attempts := new(MockAttemptRepository)
	svc := NewQuizService(quizzes, attempts)

	quizzes.On("GetByID", mock.Anything, "quiz-1").Return(completedQuiz("quiz-1", "user-1"), nil)

	var saved *domain.Attempt
	attempts.On("Save", mock.Anything, mock.AnythingOfType("*domain.Attempt")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Attempt) }).
		Return(nil)
	quizzes.On("IncrementAttemptCount", mock.Anything, "quiz-1").Return(nil)

	answers := map[string]string{
		"0": "a", // correct
		"1": "b", // correct
		"2": "a", // wrong
		"3": "d", // correct
		"4": "b", // wrong
	}
	resp, err := svc.SubmitAttempt(context.Background(), "user-1", "quiz-1", answers)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Score)
	assert.Equal(t, 5, resp.Total)
	assert.NotEmpty(t, resp.AttemptID)

	require.NotNil(t, saved)
	assert.Equal(t, 3, saved.Score)
	// Correct answers are snapshotted so the attempt survives quiz deletion.
	assert.Equal(t, map[string]string{"0": "a", "1": "b", "2": "c", "3": "d", "4": "a"}, saved.CorrectAnswers)
}

func TestSubmitAttempt_PendingQuizRejected(t *testing.T) {
	quizzes := new(MockQuizRepository)
	attempts := new(MockAttemptRepository)
	svc := NewQuizService(quizzes, attempts)

	quizzes.On("GetByID", mock.Anything, "quiz-1").
		Return(&domain.Quiz{QuizID: "quiz-1", UserID: "user-1", Status: domain.QuizStatusPending}, nil)

	_, err := svc.SubmitAttempt(context.Background(), "user-1", "quiz-1", map[string]string{"0": "a"})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrValidation))
	attempts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGetQuiz_OtherUsersQuizReadsAsNotFound(t *testing.T) {
	quizzes := new(MockQuizRepository)
	attempts := new(MockAttemptRepository)
	svc := NewQuizService(quizzes, attempts)

	quizzes.On("GetByID", mock.Anything, "quiz-1").Return(completedQuiz("quiz-1", "someone-else"), nil)

	_, err := svc.GetQuiz(context.Background(), "user-1", "quiz-1")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrNotFound))
}

func TestDeleteQuiz_NotOwnedDoesNotMutate(t *testing.T) {
	quizzes := new(MockQuizRepository)
	attempts := new(MockAttemptRepository)
	svc := NewQuizService(quizzes, attempts)

	quizzes.On("GetByID", mock.Anything, "quiz-1").Return(completedQuiz("quiz-1", "someone-else"), nil)

	err := svc.DeleteQuiz(context.Background(), "user-1", "quiz-1")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrNotFound))
	quizzes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestGetAttempt_JoinsQuizQuestions(t *testing.T) {
	quizzes := new(MockQuizRepository)
	attempts := new(MockAttemptRepository)
	svc := NewQuizService(quizzes, attempts)

	attempts.On("GetByID", mock.Anything, "attempt-1").Return(&domain.Attempt{
		AttemptID:      "attempt-1",
		QuizID:         "quiz-1",
		UserID:         "user-1",
		Score:          3,
		TotalQuestions: 5,
		Answers:        map[string]string{"0": "a"},
		CorrectAnswers: map[string]string{"0": "a"},
	}, nil)
	quizzes.On("GetByID", mock.Anything, "quiz-1").Return(completedQuiz("quiz-1", "user-1"), nil)

	resp, err := svc.GetAttempt(context.Background(), "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Score)
	assert.Len(t, resp.Questions, 5)
	assert.Equal(t, "Q1", resp.Questions[0].Question)
}

func TestGetProfile_AggregatesQuizzesAndAttempts(t *testing.T) {
	quizzes := new(MockQuizRepository)
	attempts := new(MockAttemptRepository)
	svc := NewQuizService(quizzes, attempts)

	quizzes.On("ListByUser", mock.Anything, "user-1").
		Return([]*domain.Quiz{completedQuiz("quiz-1", "user-1")}, nil)
	attempts.On("ListByUser", mock.Anything, "user-1").
		Return([]*domain.Attempt{{AttemptID: "attempt-1", QuizID: "quiz-1", Score: 4, TotalQuestions: 5}}, nil)

	resp, err := svc.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, resp.Quizzes, 1)
	assert.Len(t, resp.Attempts, 1)
	assert.Equal(t, 4, resp.Attempts[0].Score)
}
