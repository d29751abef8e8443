package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"quizcraft/internal/config"
	"quizcraft/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const (
	quizTemperature = 0.7
	quizMaxTokens   = 500

	nameTemperature = 0.5
	nameMaxTokens   = 10
)

const quizPromptFormat = `Generate a quiz with %d multiple-choice questions %s
Each question should have %d options and indicate the correct answer.
Return the quiz as a JSON array with the following structure:
[
    {
        "question": "Question text",
        "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
        "correct_answer": "Correct option"
    },
    ...
]
%s`

// OpenAIGenerator implements domain.ContentGenerator against the OpenAI chat
// API via langchaingo.
type OpenAIGenerator struct {
	llm    llms.Model
	cfg    config.OpenAIConfig
	logger *zap.Logger
}

// NewOpenAIGenerator creates a new instance of OpenAIGenerator.
func NewOpenAIGenerator(cfg config.OpenAIConfig, logger *zap.Logger) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key cannot be empty")
	}
	llm, err := openai.New(openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return &OpenAIGenerator{llm: llm, cfg: cfg, logger: logger}, nil
}

// GenerateFromDocument generates quiz content from extracted document text.
func (g *OpenAIGenerator) GenerateFromDocument(ctx context.Context, text string) ([]domain.Question, error) {
	if len(text) > domain.MaxContentChars {
		text = text[:domain.MaxContentChars]
	}
	prompt := fmt.Sprintf(quizPromptFormat,
		domain.QuestionCount,
		"based on the following PDF content.",
		domain.OptionCount,
		"\nPDF content:\n"+text)
	return g.generateQuiz(ctx, prompt)
}

// GenerateFromTopic generates quiz content about a free-text topic.
func (g *OpenAIGenerator) GenerateFromTopic(ctx context.Context, topic string) ([]domain.Question, error) {
	prompt := fmt.Sprintf(quizPromptFormat,
		domain.QuestionCount,
		fmt.Sprintf("about %s.", topic),
		domain.OptionCount,
		"")
	return g.generateQuiz(ctx, prompt)
}

func (g *OpenAIGenerator) generateQuiz(ctx context.Context, prompt string) ([]domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.RequestTimeout)
	defer cancel()

	response, err := g.llm.Call(ctx, prompt,
		llms.WithTemperature(quizTemperature),
		llms.WithMaxTokens(quizMaxTokens),
	)
	if err != nil {
		// Service and transport failures are fatal; only malformed output is
		// downgraded to the fallback below.
		return nil, domain.NewGenerationError("generative service call failed", err)
	}

	questions, ok := parseQuestions(response)
	if !ok {
		g.logger.Error("Unparseable generation output, returning fallback",
			zap.String("raw_response", response))
		return domain.FallbackQuestions(), nil
	}
	return questions, nil
}

// GenerateTopicName asks the model for a concise topic name. Callers treat a
// failure here as non-fatal.
func (g *OpenAIGenerator) GenerateTopicName(ctx context.Context, text string) (string, error) {
	if len(text) > domain.MaxNamingChars {
		text = text[:domain.MaxNamingChars]
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.RequestTimeout)
	defer cancel()

	prompt := fmt.Sprintf("Generate a concise topic name based on the following text:\n\n%s", text)
	response, err := g.llm.Call(ctx, prompt,
		llms.WithTemperature(nameTemperature),
		llms.WithMaxTokens(nameMaxTokens),
	)
	if err != nil {
		return "", domain.NewGenerationError("topic name generation failed", err)
	}

	name := strings.TrimSpace(strings.Trim(strings.TrimSpace(response), `"`))
	if name == "" {
		return "", domain.NewGenerationError("generative service returned an empty topic name", nil)
	}
	return name, nil
}

// parseQuestions extracts the first JSON-array-shaped substring from the raw
// model output and validates its schema. Returns ok=false when no valid quiz
// can be recovered.
func parseQuestions(raw string) ([]domain.Question, bool) {
	jsonStr, ok := extractJSONArray(raw)
	if !ok {
		return nil, false
	}

	// Validate key presence first: the model must emit objects with exactly
	// the expected fields, not merely something that unmarshals cleanly.
	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		return nil, false
	}
	if len(items) == 0 {
		return nil, false
	}
	for _, item := range items {
		for _, key := range []string{"question", "options", "correct_answer"} {
			if _, present := item[key]; !present {
				return nil, false
			}
		}
	}

	var questions []domain.Question
	if err := json.Unmarshal([]byte(jsonStr), &questions); err != nil {
		return nil, false
	}
	return questions, true
}

// extractJSONArray returns the first balanced JSON array in s, honoring
// string literals and escape sequences.
func extractJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

var _ domain.ContentGenerator = (*OpenAIGenerator)(nil)
