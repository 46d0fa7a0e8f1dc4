package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/exoscope/internal/common"
	"github.com/dmitrijs2005/exoscope/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save replaces the stored snapshot of s.Dataset.
func (r *SQLiteRepository) Save(ctx context.Context, s Snapshot) error {
	if s.Dataset == "" {
		return errors.New("snapshot dataset is empty")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (dataset, payload, item_count, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(dataset) DO UPDATE SET
			payload = excluded.payload,
			item_count = excluded.item_count,
			fetched_at = excluded.fetched_at
	`, s.Dataset, s.Payload, s.ItemCount, s.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot[%s]: %w", s.Dataset, err)
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context, dataset string) (*Snapshot, error) {
	s := Snapshot{Dataset: dataset}
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, item_count, fetched_at FROM snapshots WHERE dataset = ?`, dataset,
	).Scan(&s.Payload, &s.ItemCount, &s.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot[%s]: %w", dataset, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot[%s]: %w", dataset, err)
	}
	return &s, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, dataset string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE dataset = ?`, dataset); err != nil {
		return fmt.Errorf("failed to delete snapshot[%s]: %w", dataset, err)
	}
	return nil
}

// List returns snapshot headers without payloads, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT dataset, item_count, fetched_at FROM snapshots ORDER BY fetched_at DESC, dataset`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var result []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.Dataset, &s.ItemCount, &s.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot rows: %w", err)
	}
	return result, nil
}
