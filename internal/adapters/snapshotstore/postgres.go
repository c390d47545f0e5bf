package snapshotstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bahnwerk/core/internal/domain/snapshot"
)

// snapshotRowID is the primary key of the single snapshot row. The store is
// one logical blob; concurrent writers follow last-write-wins.
const snapshotRowID = 1

// PostgresStore persists the snapshot as a single row in the task_snapshots
// table (schema managed by the migrate command).
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a Postgres-backed snapshot store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context) (snapshot.Snapshot, bool, error) {
	query := `SELECT data FROM task_snapshots WHERE id = $1`

	var data []byte
	err := s.db.GetContext(ctx, &data, query, snapshotRowID)
	if err != nil {
		if err == sql.ErrNoRows {
			return snapshot.Snapshot{}, false, nil
		}
		return snapshot.Snapshot{}, false, fmt.Errorf("load snapshot row: %w", err)
	}

	snap, err := snapshot.Decode(data)
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, snap snapshot.Snapshot) error {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO task_snapshots (id, version, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET version = EXCLUDED.version, data = EXCLUDED.data, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, snapshotRowID, snap.Version, data); err != nil {
		return fmt.Errorf("save snapshot row: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
