package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	id "termcolor/pkg/domain"
	"termcolor/pkg/platform/sentinel"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS term_meta (
	term_id    INTEGER NOT NULL,
	meta_key   TEXT    NOT NULL,
	meta_value TEXT    NOT NULL,
	updated_at TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (term_id, meta_key)
)`

// sqliteBatch stays well under SQLite's bound-parameter limit.
const sqliteBatch = 500

// SQLiteStore persists term metadata in an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite constructs a SQLite-backed metadata store.
func NewSQLite(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate creates the term_meta table if needed.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate term_meta: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, termID id.TermID, key MetaKey) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT meta_value FROM term_meta WHERE term_id = ? AND meta_key = ?`,
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

func (s *SQLiteStore) Update(ctx context.Context, termID id.TermID, key MetaKey, value string) error {
	query := `
		INSERT INTO term_meta (term_id, meta_key, meta_value)
		VALUES (?, ?, ?)
		ON CONFLICT (term_id, meta_key) DO UPDATE SET
			meta_value = excluded.meta_value,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, int64(termID), string(key), value); err != nil {
		return fmt.Errorf("upsert term meta: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, termID id.TermID, key MetaKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM term_meta WHERE term_id = ? AND meta_key = ?`,
		int64(termID), string(key),
	)
	if err != nil {
		return fmt.Errorf("delete term meta: %w", err)
	}
	return nil
}

// GetMany reads terms in IN (...) batches.
func (s *SQLiteStore) GetMany(ctx context.Context, termIDs []id.TermID, key MetaKey) (map[id.TermID]string, error) {
	out := make(map[id.TermID]string, len(termIDs))
	for start := 0; start < len(termIDs); start += sqliteBatch {
		end := min(start+sqliteBatch, len(termIDs))
		if err := s.getBatch(ctx, termIDs[start:end], key, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) getBatch(ctx context.Context, termIDs []id.TermID, key MetaKey, out map[id.TermID]string) error {
	args := make([]any, 0, len(termIDs)+1)
	args = append(args, string(key))
	for _, t := range termIDs {
		args = append(args, int64(t))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(termIDs)), ",")

	rows, err := s.db.QueryContext(ctx,
		`SELECT term_id, meta_value FROM term_meta WHERE meta_key = ? AND term_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("select term meta batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			termID int64
			value  string
		)
		if err := rows.Scan(&termID, &value); err != nil {
			return fmt.Errorf("scan term meta: %w", err)
		}
		out[id.TermID(termID)] = value
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate term meta: %w", err)
	}
	return nil
}
