package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Question mirrors the stored JSON shape of a single quiz question.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuestionList stores a question array as a JSON column. A nil list is
// stored as NULL: quiz_content stays NULL until the job completes.
type QuestionList []Question

// Value implements the driver.Valuer interface
func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (q *QuestionList) Scan(value interface{}) error {
	if value == nil {
		*q = nil
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("QuestionList Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*q = nil
		return nil
	}
	return json.Unmarshal(bytesToParse, q)
}

// StringMap stores a string-to-string mapping as a JSON column.
type StringMap map[string]string

// Value implements the driver.Valuer interface
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		*m = StringMap{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringMap Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*m = StringMap{}
		return nil
	}
	return json.Unmarshal(bytesToParse, m)
}

// Topic represents a deduplicated quiz source row.
type Topic struct {
	UserID           string         `db:"user_id"`
	TopicID          string         `db:"topic_id"` // ULID
	Name             string         `db:"name"`
	Source           string         `db:"source"`
	SourceIdentifier string         `db:"source_identifier"`
	ObjectKey        sql.NullString `db:"object_key"` // set for pdf sources
	CreatedAt        time.Time      `db:"created_at"`
}

// Quiz represents a generation job row.
type Quiz struct {
	QuizID       string         `db:"quiz_id"` // ULID
	UserID       string         `db:"user_id"`
	TopicID      string         `db:"topic_id"`
	TopicName    string         `db:"topic_name"`
	Status       string         `db:"status"`
	ObjectKey    sql.NullString `db:"object_key"`
	Content      QuestionList   `db:"quiz_content"` // NULL until completed
	ErrorMessage sql.NullString `db:"error_message"`
	AttemptCount int            `db:"attempt_count"`
	CreatedAt    time.Time      `db:"created_at"`
}

// Attempt represents a scored submission row.
type Attempt struct {
	AttemptID      string    `db:"attempt_id"` // ULID
	QuizID         string    `db:"quiz_id"`
	UserID         string    `db:"user_id"`
	Score          int       `db:"score"`
	TotalQuestions int       `db:"total_questions"`
	Answers        StringMap `db:"answers"`
	CorrectAnswers StringMap `db:"correct_answers"`
	CreatedAt      time.Time `db:"created_at"`
}

// Document represents an uploaded blob row.
type Document struct {
	ObjectKey string    `db:"object_key"`
	Content   []byte    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
