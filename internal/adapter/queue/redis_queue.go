package queue

import (
	"context"
	"encoding/json"
	"strings"

	"quizcraft/internal/config"
	"quizcraft/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bodyField = "body"

// RedisStreamQueue implements the generation queue on a Redis stream with a
// consumer group. Acknowledgment (XACK + XDEL) is the delete: an un-acked
// entry stays pending and is reclaimed by a later Receive, giving
// at-least-once delivery.
type RedisStreamQueue struct {
	client *redis.Client
	cfg    config.QueueConfig
	logger *zap.Logger
}

// NewRedisStreamQueue creates the queue and ensures the stream's consumer
// group exists.
func NewRedisStreamQueue(client *redis.Client, cfg config.QueueConfig, logger *zap.Logger) (*RedisStreamQueue, error) {
	err := client.XGroupCreateMkStream(context.Background(), cfg.Stream, cfg.Group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, domain.NewTransportError("failed to create queue consumer group", err)
	}
	return &RedisStreamQueue{client: client, cfg: cfg, logger: logger}, nil
}

// Enqueue appends a generation message to the stream.
func (q *RedisStreamQueue) Enqueue(ctx context.Context, msg domain.GenerationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return domain.NewInternalError("failed to encode generation message", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.cfg.Stream,
		Values: map[string]interface{}{bodyField: string(body)},
	}).Err()
	if err != nil {
		return domain.NewTransportError("failed to enqueue generation message", err)
	}
	return nil
}

// Receive returns pending redeliveries first (entries idle longer than
// MinIdle, abandoned by a crashed consumer), then blocks for new entries up
// to the configured timeout. An empty slice means the wait timed out.
func (q *RedisStreamQueue) Receive(ctx context.Context) ([]domain.QueueDelivery, error) {
	claimed, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.cfg.Stream,
		Group:    q.cfg.Group,
		Consumer: q.cfg.Consumer,
		MinIdle:  q.cfg.MinIdle,
		Start:    "0-0",
		Count:    10,
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, domain.NewTransportError("failed to reclaim pending queue entries", err)
	}
	if len(claimed) > 0 {
		return q.decode(ctx, claimed), nil
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.cfg.Group,
		Consumer: q.cfg.Consumer,
		Streams:  []string{q.cfg.Stream, ">"},
		Count:    1,
		Block:    q.cfg.BlockTimeout,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, domain.NewTransportError("failed to read from generation queue", err)
	}

	var entries []redis.XMessage
	for _, stream := range streams {
		entries = append(entries, stream.Messages...)
	}
	return q.decode(ctx, entries), nil
}

// decode unmarshals stream entries. Entries whose body cannot be decoded can
// never reach a terminal job state, so they are acked away rather than
// redelivered forever.
func (q *RedisStreamQueue) decode(ctx context.Context, entries []redis.XMessage) []domain.QueueDelivery {
	deliveries := make([]domain.QueueDelivery, 0, len(entries))
	for _, entry := range entries {
		body, _ := entry.Values[bodyField].(string)
		var msg domain.GenerationMessage
		if err := json.Unmarshal([]byte(body), &msg); err != nil || msg.QuizID == "" {
			q.logger.Error("Discarding undecodable queue entry",
				zap.String("entry_id", entry.ID),
				zap.Error(err))
			if ackErr := q.Ack(ctx, entry.ID); ackErr != nil {
				q.logger.Error("Failed to discard queue entry", zap.String("entry_id", entry.ID), zap.Error(ackErr))
			}
			continue
		}
		deliveries = append(deliveries, domain.QueueDelivery{ID: entry.ID, Message: msg})
	}
	return deliveries
}

// Ack acknowledges and removes a delivered entry. Call only after the job
// has durably reached a terminal state.
func (q *RedisStreamQueue) Ack(ctx context.Context, deliveryID string) error {
	if err := q.client.XAck(ctx, q.cfg.Stream, q.cfg.Group, deliveryID).Err(); err != nil {
		return domain.NewTransportError("failed to ack queue entry", err)
	}
	if err := q.client.XDel(ctx, q.cfg.Stream, deliveryID).Err(); err != nil {
		return domain.NewTransportError("failed to delete queue entry", err)
	}
	return nil
}

var (
	_ domain.GenerationQueue = (*RedisStreamQueue)(nil)
	_ domain.QueueConsumer   = (*RedisStreamQueue)(nil)
)
