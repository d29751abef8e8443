package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"quizcraft/internal/config"
	"quizcraft/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testQueueConfig() config.QueueConfig {
	return config.QueueConfig{
		Stream:       "quiz:generation",
		Group:        "quiz-generators",
		Consumer:     "worker-0",
		BlockTimeout: time.Second,
		MinIdle:      time.Minute,
	}
}

func newTestQueue(t *testing.T) (*RedisStreamQueue, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	mock.ExpectXGroupCreateMkStream("quiz:generation", "quiz-generators", "$").SetVal("OK")

	q, err := NewRedisStreamQueue(client, testQueueConfig(), zap.NewNop())
	require.NoError(t, err)
	return q, mock
}

func TestNewRedisStreamQueue_ToleratesExistingGroup(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectXGroupCreateMkStream("quiz:generation", "quiz-generators", "$").
		SetErr(errors.New("BUSYGROUP Consumer Group name already exists"))

	_, err := NewRedisStreamQueue(client, testQueueConfig(), zap.NewNop())
	require.NoError(t, err)
}

func TestEnqueue_AppendsEncodedMessage(t *testing.T) {
	q, mock := newTestQueue(t)

	msg := domain.GenerationMessage{
		QuizID:    "quiz-1",
		UserID:    "user-1",
		TopicID:   "topic-1",
		Source:    domain.SourceTopic,
		TopicName: "Algebra",
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "quiz:generation",
		Values: map[string]interface{}{"body": string(body)},
	}).SetVal("1-0")

	require.NoError(t, q.Enqueue(context.Background(), msg))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAck_RemovesEntry(t *testing.T) {
	q, mock := newTestQueue(t)

	mock.ExpectXAck("quiz:generation", "quiz-generators", "1-0").SetVal(1)
	mock.ExpectXDel("quiz:generation", "1-0").SetVal(1)

	require.NoError(t, q.Ack(context.Background(), "1-0"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceive_NewEntryDecoded(t *testing.T) {
	q, mock := newTestQueue(t)

	msg := domain.GenerationMessage{QuizID: "quiz-1", UserID: "user-1", Source: domain.SourceTopic, TopicName: "Algebra"}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	mock.ExpectXAutoClaim(&redis.XAutoClaimArgs{
		Stream:   "quiz:generation",
		Group:    "quiz-generators",
		Consumer: "worker-0",
		MinIdle:  time.Minute,
		Start:    "0-0",
		Count:    10,
	}).SetVal([]redis.XMessage{}, "0-0")
	mock.ExpectXReadGroup(&redis.XReadGroupArgs{
		Group:    "quiz-generators",
		Consumer: "worker-0",
		Streams:  []string{"quiz:generation", ">"},
		Count:    1,
		Block:    time.Second,
	}).SetVal([]redis.XStream{
		{
			Stream:   "quiz:generation",
			Messages: []redis.XMessage{{ID: "1-0", Values: map[string]interface{}{"body": string(body)}}},
		},
	})

	deliveries, err := q.Receive(context.Background())
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, "1-0", deliveries[0].ID)
	assert.Equal(t, "quiz-1", deliveries[0].Message.QuizID)
}

func TestReceive_RedeliveredEntriesFirst(t *testing.T) {
	q, mock := newTestQueue(t)

	msg := domain.GenerationMessage{QuizID: "quiz-stale", Source: domain.SourceTopic, TopicName: "Physics"}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	mock.ExpectXAutoClaim(&redis.XAutoClaimArgs{
		Stream:   "quiz:generation",
		Group:    "quiz-generators",
		Consumer: "worker-0",
		MinIdle:  time.Minute,
		Start:    "0-0",
		Count:    10,
	}).SetVal([]redis.XMessage{
		{ID: "0-5", Values: map[string]interface{}{"body": string(body)}},
	}, "0-0")

	deliveries, err := q.Receive(context.Background())
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, "0-5", deliveries[0].ID)
	assert.Equal(t, "quiz-stale", deliveries[0].Message.QuizID)
}

func TestReceive_PoisonEntryAckedAway(t *testing.T) {
	q, mock := newTestQueue(t)

	mock.ExpectXAutoClaim(&redis.XAutoClaimArgs{
		Stream:   "quiz:generation",
		Group:    "quiz-generators",
		Consumer: "worker-0",
		MinIdle:  time.Minute,
		Start:    "0-0",
		Count:    10,
	}).SetVal([]redis.XMessage{
		{ID: "0-9", Values: map[string]interface{}{"body": "not json"}},
	}, "0-0")
	mock.ExpectXAck("quiz:generation", "quiz-generators", "0-9").SetVal(1)
	mock.ExpectXDel("quiz:generation", "0-9").SetVal(1)

	deliveries, err := q.Receive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, deliveries)
	require.NoError(t, mock.ExpectationsWereMet())
}
