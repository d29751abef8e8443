package dto

import (
	"time"

	"quizcraft/internal/domain"
)

// GenerateQuizRequest is the JSON body for topic and regeneration requests.
// Document uploads arrive as multipart or raw PDF bytes instead and bypass
// this shape.
type GenerateQuizRequest struct {
	Topic      string `json:"topic,omitempty"`
	Regenerate bool   `json:"regenerate,omitempty"`
	TopicID    string `json:"topic_id,omitempty"`
}

// GenerateQuizResponse acknowledges that a generation job was queued.
type GenerateQuizResponse struct {
	Message string `json:"message"`
	QuizID  string `json:"quiz_id"`
	TopicID string `json:"topic_id"`
}

// QuestionResponse mirrors the stored question shape on the wire.
type QuestionResponse struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuizResponse is a generation job in API responses. Field names follow the
// original wire contract the frontend expects.
type QuizResponse struct {
	QuizID       string             `json:"quiz_id"`
	TopicID      string             `json:"topic_id"`
	TopicName    string             `json:"topic_name"`
	Status       string             `json:"status"`
	ObjectKey    string             `json:"s3_key,omitempty"`
	Content      []QuestionResponse `json:"quiz_content,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
	AttemptCount int                `json:"attempt_count"`
	CreatedAt    time.Time          `json:"created_at"`
}

// NewQuizResponse converts a domain quiz to its wire shape.
func NewQuizResponse(q *domain.Quiz) QuizResponse {
	return QuizResponse{
		QuizID:       q.QuizID,
		TopicID:      q.TopicID,
		TopicName:    q.TopicName,
		Status:       string(q.Status),
		ObjectKey:    q.ObjectKey,
		Content:      NewQuestionResponses(q.Content),
		ErrorMessage: q.ErrorMessage,
		AttemptCount: q.AttemptCount,
		CreatedAt:    q.CreatedAt,
	}
}

// NewQuestionResponses converts domain questions to their wire shape.
func NewQuestionResponses(questions []domain.Question) []QuestionResponse {
	if questions == nil {
		return nil
	}
	out := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, QuestionResponse{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return out
}

// QuizListResponse wraps the user's quizzes.
type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
}

// SubmitAttemptRequest carries the user's answers keyed by question index.
type SubmitAttemptRequest struct {
	Answers map[string]string `json:"answers"`
}

// SubmitAttemptResponse reports the score of a submitted attempt.
type SubmitAttemptResponse struct {
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	AttemptID string `json:"attempt_id"`
}

// AttemptResponse is a stored attempt joined with the parent quiz's questions.
type AttemptResponse struct {
	AttemptID      string             `json:"attempt_id"`
	QuizID         string             `json:"quiz_id"`
	Score          int                `json:"score"`
	TotalQuestions int                `json:"total_questions"`
	UserAnswers    map[string]string  `json:"user_answers"`
	CorrectAnswers map[string]string  `json:"correct_answers"`
	Questions      []QuestionResponse `json:"questions"`
}

// AttemptSummary is an attempt row in profile listings.
type AttemptSummary struct {
	AttemptID      string    `json:"attempt_id"`
	QuizID         string    `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileResponse aggregates a user's quizzes and attempts.
type ProfileResponse struct {
	Quizzes  []QuizResponse   `json:"quizzes"`
	Attempts []AttemptSummary `json:"attempts"`
}

// SubscribeRequest binds a contact address to the notification topic.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// SubscribeResponse reports the outcome of a subscription request.
type SubscribeResponse struct {
	Message    string `json:"message"`
	Subscribed bool   `json:"subscribed"`
}

// MessageResponse is a plain acknowledgment.
type MessageResponse struct {
	Message string `json:"message"`
}
