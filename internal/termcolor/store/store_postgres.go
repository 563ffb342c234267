package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "termcolor/pkg/domain"
	"termcolor/pkg/platform/sentinel"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS term_meta (
	term_id    BIGINT      NOT NULL,
	meta_key   TEXT        NOT NULL,
	meta_value TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (term_id, meta_key)
)`

// PostgresStore persists term metadata in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed metadata store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the term_meta table if needed.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate term_meta: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, termID id.TermID, key MetaKey) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT meta_value FROM term_meta WHERE term_id = $1 AND meta_key = $2`,
		int64(termID), string(key),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("select term meta: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Update(ctx context.Context, termID id.TermID, key MetaKey, value string) error {
	query := `
		INSERT INTO term_meta (term_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (term_id, meta_key) DO UPDATE SET
			meta_value = EXCLUDED.meta_value,
			updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, int64(termID), string(key), value); err != nil {
		return fmt.Errorf("upsert term meta: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, termID id.TermID, key MetaKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM term_meta WHERE term_id = $1 AND meta_key = $2`,
		int64(termID), string(key),
	)
	if err != nil {
		return fmt.Errorf("delete term meta: %w", err)
	}
	return nil
}

// GetMany reads a page of terms with a single ANY($1) query.
func (s *PostgresStore) GetMany(ctx context.Context, termIDs []id.TermID, key MetaKey) (map[id.TermID]string, error) {
	out := make(map[id.TermID]string, len(termIDs))
	if len(termIDs) == 0 {
		return out, nil
	}
	raw := make([]int64, len(termIDs))
	for i, t := range termIDs {
		raw[i] = int64(t)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT term_id, meta_value FROM term_meta WHERE meta_key = $1 AND term_id = ANY($2::bigint[])`,
		string(key), pq.Array(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("select term meta batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			termID int64
			value  string
		)
		if err := rows.Scan(&termID, &value); err != nil {
			return nil, fmt.Errorf("scan term meta: %w", err)
		}
		out[id.TermID(termID)] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate term meta: %w", err)
	}
	return out, nil
}
