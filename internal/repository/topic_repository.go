package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizcraft/internal/domain"
	"quizcraft/internal/repository/models"
	"quizcraft/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// sqlxTopicRepository implements domain.TopicRepository using sqlx.
type sqlxTopicRepository struct {
	db *sqlx.DB
}

// NewSQLXTopicRepository creates a new instance of sqlxTopicRepository.
func NewSQLXTopicRepository(db *sqlx.DB) domain.TopicRepository {
	return &sqlxTopicRepository{db: db}
}

func toDomainTopic(m *models.Topic) *domain.Topic {
	if m == nil {
		return nil
	}
	return &domain.Topic{
		UserID:           m.UserID,
		TopicID:          m.TopicID,
		Name:             m.Name,
		Source:           domain.SourceType(m.Source),
		SourceIdentifier: m.SourceIdentifier,
		ObjectKey:        m.ObjectKey.String,
		CreatedAt:        m.CreatedAt,
	}
}

func fromDomainTopic(t *domain.Topic) *models.Topic {
	if t == nil {
		return nil
	}
	return &models.Topic{
		UserID:           t.UserID,
		TopicID:          t.TopicID,
		Name:             t.Name,
		Source:           string(t.Source),
		SourceIdentifier: t.SourceIdentifier,
		ObjectKey:        util.StringToNullString(t.ObjectKey),
		CreatedAt:        t.CreatedAt,
	}
}

// Save inserts a new topic. The unique index on (user_id, source_identifier)
// closes the check-then-insert race: a concurrent duplicate insert surfaces
// as a DUPLICATE_SOURCE error instead of a second row.
func (r *sqlxTopicRepository) Save(ctx context.Context, topic *domain.Topic) error {
	m := fromDomainTopic(topic)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO topics (user_id, topic_id, name, source, source_identifier, object_key, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		m.UserID, m.TopicID, m.Name, m.Source, m.SourceIdentifier, m.ObjectKey, m.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.NewDuplicateSourceError("source is already registered", "")
		}
		return domain.NewTransportError(fmt.Sprintf("failed to save topic %s", m.TopicID), err)
	}
	return nil
}

func (r *sqlxTopicRepository) GetByID(ctx context.Context, userID, topicID string) (*domain.Topic, error) {
	var m models.Topic
	query := `SELECT user_id, topic_id, name, source, source_identifier, object_key, created_at
	          FROM topics WHERE user_id = $1 AND topic_id = $2`
	if err := r.db.GetContext(ctx, &m, query, userID, topicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewTransportError(fmt.Sprintf("failed to get topic %s", topicID), err)
	}
	return toDomainTopic(&m), nil
}

func (r *sqlxTopicRepository) FindBySourceIdentifier(ctx context.Context, userID, sourceIdentifier string) (*domain.Topic, error) {
	var m models.Topic
	query := `SELECT user_id, topic_id, name, source, source_identifier, object_key, created_at
	          FROM topics WHERE user_id = $1 AND source_identifier = $2`
	if err := r.db.GetContext(ctx, &m, query, userID, sourceIdentifier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewTransportError("failed to look up source identifier", err)
	}
	return toDomainTopic(&m), nil
}

func (r *sqlxTopicRepository) CountByNamePrefix(ctx context.Context, userID, namePrefix string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM topics WHERE user_id = $1 AND name LIKE $2 || '%'`
	if err := r.db.GetContext(ctx, &count, query, userID, namePrefix); err != nil {
		return 0, domain.NewTransportError("failed to count topics by name prefix", err)
	}
	return count, nil
}

var _ domain.TopicRepository = (*sqlxTopicRepository)(nil)
