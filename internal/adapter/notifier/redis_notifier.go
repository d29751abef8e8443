package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"quizcraft/internal/config"
	"quizcraft/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// notification is the published payload. Every message carries the user_id
// so a downstream subscriber can filter per user.
type notification struct {
	UserID  string `json:"user_id"`
	QuizID  string `json:"quiz_id"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// RedisNotifier publishes terminal job notifications to a Redis channel and
// keeps subscription bindings in a hash keyed by user id.
type RedisNotifier struct {
	client *redis.Client
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewRedisNotifier creates a new instance of RedisNotifier.
func NewRedisNotifier(client *redis.Client, cfg config.NotificationConfig, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, cfg: cfg, logger: logger}
}

func (n *RedisNotifier) publish(ctx context.Context, msg notification) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return domain.NewInternalError("failed to encode notification", err)
	}
	if err := n.client.Publish(ctx, n.cfg.Channel, payload).Err(); err != nil {
		return domain.NewTransportError("failed to publish notification", err)
	}
	return nil
}

// NotifyCompleted publishes a success notification for a generated quiz.
func (n *RedisNotifier) NotifyCompleted(ctx context.Context, userID, quizID, topicName string) error {
	return n.publish(ctx, notification{
		UserID:  userID,
		QuizID:  quizID,
		Subject: "QuizCraft: Quiz Generation Completed",
		Message: fmt.Sprintf("Quiz '%s' (ID: %s) has been generated successfully.", topicName, quizID),
	})
}

// NotifyFailed publishes a failure notification with the cause.
func (n *RedisNotifier) NotifyFailed(ctx context.Context, userID, quizID, topicName, reason string) error {
	return n.publish(ctx, notification{
		UserID:  userID,
		QuizID:  quizID,
		Subject: "QuizCraft: Quiz Generation Failed",
		Message: fmt.Sprintf("Quiz generation failed for '%s' (ID: %s): %s", topicName, quizID, reason),
	})
}

// Subscribe idempotently binds the user's contact address to the topic.
// Returns false when an equivalent binding already exists.
func (n *RedisNotifier) Subscribe(ctx context.Context, userID, email string) (bool, error) {
	created, err := n.client.HSetNX(ctx, n.cfg.SubscriptionsKey, userID, email).Result()
	if err != nil {
		return false, domain.NewTransportError("failed to store subscription", err)
	}
	if !created {
		n.logger.Debug("Subscription already exists, skipping",
			zap.String("user_id", userID))
	}
	return created, nil
}

var _ domain.Notifier = (*RedisNotifier)(nil)
