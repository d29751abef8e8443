package validation

import (
	"regexp"
	"strconv"
	"strings"

	"quizcraft/internal/domain"
)

const (
	maxTopicLength = 500
	maxEmailLength = 254
	maxAnswers     = 100
)

var (
	// ULID: 26 characters, Crockford's Base32.
	validULID  = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	validEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerateRequest validates a JSON quiz generation request. Exactly
// one of topic and topic_id must be provided.
func (v *Validator) ValidateGenerateRequest(topic, topicID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	topic = strings.TrimSpace(topic)
	topicID = strings.TrimSpace(topicID)

	if topic == "" && topicID == "" {
		errors = append(errors, domain.NewMissingFieldError("topic"))
		return errors
	}
	if topic != "" && topicID != "" {
		errors = append(errors, domain.ValidationError{
			Field:   "topic",
			Message: "cannot be combined with topic_id",
		})
		return errors
	}

	if topic != "" && len(topic) > maxTopicLength {
		errors = append(errors, domain.NewOutOfRangeError("topic", len(topic), 1, maxTopicLength))
	}
	if topicID != "" && !IsValidULID(topicID) {
		errors = append(errors, domain.NewInvalidFormatError("topic_id", topicID))
	}

	return errors
}

// ValidateIDParam validates a ULID path parameter such as quiz_id.
func (v *Validator) ValidateIDParam(field, value string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(value) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !IsValidULID(value) {
		errors = append(errors, domain.NewInvalidFormatError(field, value))
	}

	return errors
}

// ValidateAttemptRequest validates a submitted answer map. Keys are question
// indices ("0".."n"), values the chosen option text.
func (v *Validator) ValidateAttemptRequest(answers map[string]string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(answers) == 0 {
		errors = append(errors, domain.NewMissingFieldError("answers"))
		return errors
	}
	if len(answers) > maxAnswers {
		errors = append(errors, domain.NewOutOfRangeError("answers", len(answers), 1, maxAnswers))
		return errors
	}

	for key := range answers {
		if idx, err := strconv.Atoi(key); err != nil || idx < 0 {
			errors = append(errors, domain.NewInvalidFormatError("answers", key))
			return errors
		}
	}

	return errors
}

// ValidateSubscribeRequest validates a notification subscription request.
func (v *Validator) ValidateSubscribeRequest(email string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	email = strings.TrimSpace(email)
	if email == "" {
		errors = append(errors, domain.NewMissingFieldError("email"))
	} else if len(email) > maxEmailLength || !validEmail.MatchString(email) {
		errors = append(errors, domain.NewInvalidFormatError("email", email))
	}

	return errors
}

// IsValidULID checks if the string is a valid ULID format
func IsValidULID(s string) bool {
	return validULID.MatchString(s)
}
