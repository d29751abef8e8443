package service

import (
	"context"
	"strconv"

	"quizcraft/internal/domain"
	"quizcraft/internal/dto"
	"quizcraft/internal/logger"
	"quizcraft/internal/util"

	"go.uber.org/zap"
)

// QuizService covers the read, attempt, and delete operations around
// generated quizzes.
type QuizService interface {
	ListQuizzes(ctx context.Context, userID string) (*dto.QuizListResponse, error)
	GetQuiz(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, userID, quizID string) error
	SubmitAttempt(ctx context.Context, userID, quizID string, answers map[string]string) (*dto.SubmitAttemptResponse, error)
	GetAttempt(ctx context.Context, attemptID string) (*dto.AttemptResponse, error)
	GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error)
}

type quizService struct {
	quizzes  domain.QuizRepository
	attempts domain.AttemptRepository
}

// NewQuizService creates a new instance of quizService.
func NewQuizService(quizzes domain.QuizRepository, attempts domain.AttemptRepository) QuizService {
	return &quizService{quizzes: quizzes, attempts: attempts}
}

func (s *quizService) ListQuizzes(ctx context.Context, userID string) (*dto.QuizListResponse, error) {
	quizzes, err := s.quizzes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &dto.QuizListResponse{Quizzes: make([]dto.QuizResponse, 0, len(quizzes))}
	for _, q := range quizzes {
		resp.Quizzes = append(resp.Quizzes, dto.NewQuizResponse(q))
	}
	return resp, nil
}

// GetQuiz returns the quiz if it exists and belongs to userID. A quiz owned
// by someone else reads as not-found, never as forbidden.
func (s *quizService) GetQuiz(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error) {
	quiz, err := s.ownedQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewQuizResponse(quiz)
	return &resp, nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, userID, quizID string) error {
	if _, err := s.ownedQuiz(ctx, userID, quizID); err != nil {
		return err
	}
	if err := s.quizzes.Delete(ctx, quizID); err != nil {
		return err
	}
	logger.Get().Info("Quiz deleted", zap.String("quiz_id", quizID), zap.String("user_id", userID))
	return nil
}

func (s *quizService) ownedQuiz(ctx context.Context, userID, quizID string) (*domain.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil || quiz.UserID != userID {
		return nil, domain.NewNotFoundError("Quiz not found")
	}
	return quiz, nil
}

// SubmitAttempt scores the answers against the quiz content and persists an
// attempt with a snapshot of the correct answers, so the attempt stays
// readable after the quiz is deleted or regenerated.
func (s *quizService) SubmitAttempt(ctx context.Context, userID, quizID string, answers map[string]string) (*dto.SubmitAttemptResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("Quiz not found")
	}
	if quiz.Status != domain.QuizStatusCompleted || len(quiz.Content) == 0 {
		return nil, domain.NewValidationError("Quiz has no content to attempt yet")
	}

	correctAnswers := make(map[string]string, len(quiz.Content))
	for i, question := range quiz.Content {
		correctAnswers[strconv.Itoa(i)] = question.CorrectAnswer
	}

	score := 0
	for idx, answer := range answers {
		if correct, ok := correctAnswers[idx]; ok && answer == correct {
			score++
		}
	}

	attempt := &domain.Attempt{
		AttemptID:      util.NewULID(),
		QuizID:         quizID,
		UserID:         userID,
		Score:          score,
		TotalQuestions: len(quiz.Content),
		Answers:        answers,
		CorrectAnswers: correctAnswers,
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, err
	}
	if err := s.quizzes.IncrementAttemptCount(ctx, quizID); err != nil {
		return nil, err
	}

	return &dto.SubmitAttemptResponse{
		Score:     score,
		Total:     len(quiz.Content),
		AttemptID: attempt.AttemptID,
	}, nil
}

// GetAttempt returns the stored attempt joined with the parent quiz's
// questions for result display.
func (s *quizService) GetAttempt(ctx context.Context, attemptID string) (*dto.AttemptResponse, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, domain.NewNotFoundError("Attempt not found")
	}

	quiz, err := s.quizzes.GetByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("Quiz not found")
	}

	return &dto.AttemptResponse{
		AttemptID:      attempt.AttemptID,
		QuizID:         attempt.QuizID,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		UserAnswers:    attempt.Answers,
		CorrectAnswers: attempt.CorrectAnswers,
		Questions:      dto.NewQuestionResponses(quiz.Content),
	}, nil
}

func (s *quizService) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	quizzes, err := s.ListQuizzes(ctx, userID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfileResponse{
		Quizzes:  quizzes.Quizzes,
		Attempts: make([]dto.AttemptSummary, 0, len(attempts)),
	}
	for _, a := range attempts {
		resp.Attempts = append(resp.Attempts, dto.AttemptSummary{
			AttemptID:      a.AttemptID,
			QuizID:         a.QuizID,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			CreatedAt:      a.CreatedAt,
		})
	}
	return resp, nil
}
