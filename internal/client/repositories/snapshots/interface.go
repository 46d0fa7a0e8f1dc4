// Package snapshots keeps the last successfully fetched listing of each
// dataset so the client can still show records while the API is down.
package snapshots

import (
	"context"
	"time"
)

// Snapshot is a raw listing payload as the API returned it.
type Snapshot struct {
	Dataset   string
	Payload   []byte
	ItemCount int
	FetchedAt time.Time
}

type Repository interface {
	Save(ctx context.Context, s Snapshot) error
	// Load returns common.ErrorNotFound when the dataset was never stored.
	Load(ctx context.Context, dataset string) (*Snapshot, error)
	Delete(ctx context.Context, dataset string) error
	List(ctx context.Context) ([]Snapshot, error)
}
