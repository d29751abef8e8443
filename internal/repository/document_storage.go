package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizcraft/internal/domain"

	"github.com/jmoiron/sqlx"
)

// sqlxDocumentStorage implements domain.ObjectStorage on a documents table.
// Uploaded PDFs are small enough (request body limit applies) that a bytea
// column is sufficient; the port keeps callers unaware of the backing store.
type sqlxDocumentStorage struct {
	db *sqlx.DB
}

// NewSQLXDocumentStorage creates a new instance of sqlxDocumentStorage.
func NewSQLXDocumentStorage(db *sqlx.DB) domain.ObjectStorage {
	return &sqlxDocumentStorage{db: db}
}

func (s *sqlxDocumentStorage) Put(ctx context.Context, key string, data []byte) error {
	query := `INSERT INTO documents (object_key, content, created_at) VALUES ($1, $2, $3)
	          ON CONFLICT (object_key) DO UPDATE SET content = EXCLUDED.content`
	if _, err := s.db.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		return domain.NewTransportError(fmt.Sprintf("failed to store document %s", key), err)
	}
	return nil
}

func (s *sqlxDocumentStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var content []byte
	query := `SELECT content FROM documents WHERE object_key = $1`
	if err := s.db.GetContext(ctx, &content, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("document %s not found", key))
		}
		return nil, domain.NewTransportError(fmt.Sprintf("failed to fetch document %s", key), err)
	}
	return content, nil
}

func (s *sqlxDocumentStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE object_key = $1`, key); err != nil {
		return domain.NewTransportError(fmt.Sprintf("failed to delete document %s", key), err)
	}
	return nil
}

var _ domain.ObjectStorage = (*sqlxDocumentStorage)(nil)
