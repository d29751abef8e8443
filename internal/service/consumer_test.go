package service

import (
	"context"
	"errors"
	"testing"

	"quizcraft/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestConsumer() (*MockQuizRepository, *MockObjectStorage, *MockTextExtractor, *MockContentGenerator, *MockNotifier, *MockQueueConsumer, ConsumerService) {
	quizzes := new(MockQuizRepository)
	storage := new(MockObjectStorage)
	extractor := new(MockTextExtractor)
	generator := new(MockContentGenerator)
	notifier := new(MockNotifier)
	queue := new(MockQueueConsumer)
	consumer := NewConsumerService(quizzes, storage, extractor, generator, notifier, queue)
	return quizzes, storage, extractor, generator, notifier, queue, consumer
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Question: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
	}
}

func TestProcessMessage_TopicSourceCompletes(t *testing.T) {
	quizzes, _, _, generator, notifier, _, consumer := newTestConsumer()

	msg := domain.GenerationMessage{
		QuizID:    "quiz-1",
		UserID:    "user-1",
		TopicID:   "topic-1",
		Source:    domain.SourceTopic,
		TopicName: "Roman History",
	}

	quizzes.On("GetByID", mock.Anything, "quiz-1").
		Return(&domain.Quiz{QuizID: "quiz-1", Status: domain.QuizStatusPending}, nil)
	generator.On("GenerateFromTopic", mock.Anything, "Roman History").Return(sampleQuestions(), nil)
	quizzes.On("Complete", mock.Anything, "quiz-1", sampleQuestions()).Return(nil)
	notifier.On("NotifyCompleted", mock.Anything, "user-1", "quiz-1", "Roman History").Return(nil)

	err := consumer.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)

	quizzes.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestProcessMessage_PDFSourceExtractsBeforeGenerating(t *testing.T) {
	quizzes, storage, extractor, generator, notifier, _, consumer := newTestConsumer()

	msg := domain.GenerationMessage{
		QuizID:    "quiz-2",
		UserID:    "user-1",
		Source:    domain.SourcePDF,
		TopicName: "Linear Algebra",
		ObjectKey: "quizzes/quiz-2.pdf",
	}
	pdfBytes := []byte("%PDF-1.4 content")

	quizzes.On("GetByID", mock.Anything, "quiz-2").
		Return(&domain.Quiz{QuizID: "quiz-2", Status: domain.QuizStatusPending}, nil)
	storage.On("Get", mock.Anything, "quizzes/quiz-2.pdf").Return(pdfBytes, nil)
	extractor.On("ExtractText", pdfBytes, domain.MaxContentChars).Return("extracted text", nil)
	generator.On("GenerateFromDocument", mock.Anything, "extracted text").Return(sampleQuestions(), nil)
	quizzes.On("Complete", mock.Anything, "quiz-2", sampleQuestions()).Return(nil)
	notifier.On("NotifyCompleted", mock.Anything, "user-1", "quiz-2", "Linear Algebra").Return(nil)

	err := consumer.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	storage.AssertExpectations(t)
	extractor.AssertExpectations(t)
}

func TestProcessMessage_GenerationFailureMarksFailedAndReturnsError(t *testing.T) {
	quizzes, _, _, generator, notifier, _, consumer := newTestConsumer()

	msg := domain.GenerationMessage{
		QuizID:    "quiz-3",
		UserID:    "user-1",
		Source:    domain.SourceTopic,
		TopicName: "Chemistry",
	}
	genErr := domain.NewGenerationError("service unavailable", errors.New("429"))

	quizzes.On("GetByID", mock.Anything, "quiz-3").
		Return(&domain.Quiz{QuizID: "quiz-3", Status: domain.QuizStatusPending}, nil)
	generator.On("GenerateFromTopic", mock.Anything, "Chemistry").Return(nil, genErr)
	quizzes.On("Fail", mock.Anything, "quiz-3", mock.AnythingOfType("string")).Return(nil)
	notifier.On("NotifyFailed", mock.Anything, "user-1", "quiz-3", "Chemistry", mock.AnythingOfType("string")).Return(nil)

	err := consumer.ProcessMessage(context.Background(), msg)
	require.Error(t, err)
	quizzes.AssertCalled(t, "Fail", mock.Anything, "quiz-3", mock.AnythingOfType("string"))
	quizzes.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessMessage_TerminalJobSkipsReprocessing(t *testing.T) {
	quizzes, _, _, generator, _, _, consumer := newTestConsumer()

	msg := domain.GenerationMessage{QuizID: "quiz-4", Source: domain.SourceTopic}

	quizzes.On("GetByID", mock.Anything, "quiz-4").
		Return(&domain.Quiz{QuizID: "quiz-4", Status: domain.QuizStatusCompleted}, nil)

	err := consumer.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	generator.AssertNotCalled(t, "GenerateFromTopic", mock.Anything, mock.Anything)
}

func TestProcessMessage_MissingJobIsDiscarded(t *testing.T) {
	quizzes, _, _, generator, _, _, consumer := newTestConsumer()

	quizzes.On("GetByID", mock.Anything, "quiz-5").Return(nil, nil)

	err := consumer.ProcessMessage(context.Background(), domain.GenerationMessage{QuizID: "quiz-5"})
	require.NoError(t, err)
	generator.AssertNotCalled(t, "GenerateFromTopic", mock.Anything, mock.Anything)
}

func TestProcessMessage_NotificationFailureDoesNotFailJob(t *testing.T) {
	quizzes, _, _, generator, notifier, _, consumer := newTestConsumer()

	msg := domain.GenerationMessage{
		QuizID:    "quiz-6",
		UserID:    "user-1",
		Source:    domain.SourceTopic,
		TopicName: "Biology",
	}

	quizzes.On("GetByID", mock.Anything, "quiz-6").
		Return(&domain.Quiz{QuizID: "quiz-6", Status: domain.QuizStatusPending}, nil)
	generator.On("GenerateFromTopic", mock.Anything, "Biology").Return(sampleQuestions(), nil)
	quizzes.On("Complete", mock.Anything, "quiz-6", sampleQuestions()).Return(nil)
	notifier.On("NotifyCompleted", mock.Anything, "user-1", "quiz-6", "Biology").
		Return(errors.New("pubsub down"))

	err := consumer.ProcessMessage(context.Background(), msg)
	assert.NoError(t, err)
}

func TestRun_AcksOnlyAfterSuccess(t *testing.T) {
	quizzes, _, _, generator, notifier, queue, consumer := newTestConsumer()

	okMsg := domain.GenerationMessage{QuizID: "quiz-ok", UserID: "user-1", Source: domain.SourceTopic, TopicName: "Math"}
	badMsg := domain.GenerationMessage{QuizID: "quiz-bad", UserID: "user-1", Source: domain.SourceTopic, TopicName: "Physics"}

	ctx, cancel := context.WithCancel(context.Background())

	queue.On("Receive", mock.Anything).Return([]domain.QueueDelivery{
		{ID: "1-0", Message: okMsg},
		{ID: "1-1", Message: badMsg},
	}, nil).Once()
	// Stop the loop after the first batch.
	queue.On("Receive", mock.Anything).Return(nil, context.Canceled).Run(func(args mock.Arguments) {
		cancel()
	})

	quizzes.On("GetByID", mock.Anything, "quiz-ok").
		Return(&domain.Quiz{QuizID: "quiz-ok", Status: domain.QuizStatusPending}, nil)
	generator.On("GenerateFromTopic", mock.Anything, "Math").Return(sampleQuestions(), nil)
	quizzes.On("Complete", mock.Anything, "quiz-ok", sampleQuestions()).Return(nil)
	notifier.On("NotifyCompleted", mock.Anything, "user-1", "quiz-ok", "Math").Return(nil)
	queue.On("Ack", mock.Anything, "1-0").Return(nil)

	quizzes.On("GetByID", mock.Anything, "quiz-bad").
		Return(&domain.Quiz{QuizID: "quiz-bad", Status: domain.QuizStatusPending}, nil)
	generator.On("GenerateFromTopic", mock.Anything, "Physics").
		Return(nil, domain.NewGenerationError("boom", nil))
	quizzes.On("Fail", mock.Anything, "quiz-bad", mock.AnythingOfType("string")).Return(nil)
	notifier.On("NotifyFailed", mock.Anything, "user-1", "quiz-bad", "Physics", mock.AnythingOfType("string")).Return(nil)

	err := consumer.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	queue.AssertCalled(t, "Ack", mock.Anything, "1-0")
	queue.AssertNotCalled(t, "Ack", mock.Anything, "1-1")
}
