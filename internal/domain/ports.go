package domain

import "context"

// ObjectStorage is a keyed blob store for uploaded documents.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// GenerationQueue enqueues generation jobs for asynchronous processing.
type GenerationQueue interface {
	Enqueue(ctx context.Context, msg GenerationMessage) error
}

// QueueDelivery is one received queue entry. ID is the transport-level
// delivery id used to acknowledge the message.
type QueueDelivery struct {
	ID      string
	Message GenerationMessage
}

// QueueConsumer receives deliveries from the generation queue. The transport
// is at-least-once: an un-acked delivery becomes eligible for redelivery.
type QueueConsumer interface {
	// Receive blocks up to the configured timeout and returns zero or more
	// deliveries. Redelivered messages are returned before new ones.
	Receive(ctx context.Context) ([]QueueDelivery, error)
	// Ack removes the delivery from the queue. Call only after the job has
	// durably reached a terminal state.
	Ack(ctx context.Context, deliveryID string) error
}

// ContentGenerator produces quiz content and topic names via the generative
// text service. GenerateFromDocument and GenerateFromTopic return the
// degraded fallback, not an error, when the service's output cannot be
// parsed; they return an error only for service or transport failures.
type ContentGenerator interface {
	GenerateFromDocument(ctx context.Context, text string) ([]Question, error)
	GenerateFromTopic(ctx context.Context, topic string) ([]Question, error)
	GenerateTopicName(ctx context.Context, text string) (string, error)
}

// TextExtractor extracts plain text from an uploaded document.
type TextExtractor interface {
	// ExtractText returns the text of all pages, truncated to maxChars.
	ExtractText(data []byte, maxChars int) (string, error)
	// ExtractFirstPage returns the text of the first page only, truncated to
	// maxChars. Used for topic-name inference.
	ExtractFirstPage(data []byte, maxChars int) (string, error)
}

// Notifier publishes per-user notifications for terminal job states and
// manages subscription bindings.
type Notifier interface {
	NotifyCompleted(ctx context.Context, userID, quizID, topicName string) error
	NotifyFailed(ctx context.Context, userID, quizID, topicName, reason string) error
	// Subscribe idempotently binds the user's contact address to the
	// notification topic. Returns false if an equivalent binding existed.
	Subscribe(ctx context.Context, userID, email string) (bool, error)
}
