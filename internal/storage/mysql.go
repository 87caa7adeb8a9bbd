package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MySQL is a Backend backed by the local_storage table (see
// db/migrations). One row per (client, key).
type MySQL struct {
	db *sql.DB
}

// NewMySQL creates a MySQL backend over an open pool.
func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

// Scope returns the namespace for clientID.
func (m *MySQL) Scope(clientID string) Storage {
	return &mysqlScope{db: m.db, client: clientID}
}

type mysqlScope struct {
	db     *sql.DB
	client string
}

func (s *mysqlScope) GetItem(ctx context.Context, key string) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx,
		`SELECT item_value FROM local_storage WHERE client_id = ? AND item_key = ?`,
		s.client, key,
	).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return val, nil
}

func (s *mysqlScope) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_storage (client_id, item_key, item_value, updated_at)
		 VALUES (?, ?, ?, UTC_TIMESTAMP())
		 ON DUPLICATE KEY UPDATE item_value = VALUES(item_value), updated_at = UTC_TIMESTAMP()`,
		s.client, key, value,
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *mysqlScope) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM local_storage WHERE client_id = ? AND item_key = ?`,
		s.client, key,
	)
	if err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// PurgeIdle deletes rows not written for longer than olderThanSeconds.
// Returns the number of rows removed.
func (m *MySQL) PurgeIdle(ctx context.Context, olderThanSeconds int64) (int64, error) {
	res, err := m.db.ExecContext(ctx,
		`DELETE FROM local_storage WHERE updated_at < UTC_TIMESTAMP() - INTERVAL ? SECOND`,
		olderThanSeconds,
	)
	if err != nil {
		return 0, fmt.Errorf("purging idle storage: %w", err)
	}
	return res.RowsAffected()
}

var _ Backend = (*MySQL)(nil)
