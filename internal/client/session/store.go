package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/exoscope/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/exoscope/internal/client/repositories/snapshots"
	"github.com/dmitrijs2005/exoscope/internal/common"
	"github.com/dmitrijs2005/exoscope/internal/dbx"
)

// TokenStore persists the bearer token across restarts.
type TokenStore interface {
	// Load returns "" when no token is stored.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	// Clear succeeds when no token is stored.
	Clear(ctx context.Context) error
}

// MetadataStore keeps the token in the local metadata table.
type MetadataStore struct {
	repo metadata.Repository
}

func NewMetadataStore(repo metadata.Repository) *MetadataStore {
	return &MetadataStore{repo: repo}
}

func (s *MetadataStore) Load(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, metadata.KeyAccessToken)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *MetadataStore) Save(ctx context.Context, token string) error {
	return s.repo.Set(ctx, metadata.KeyAccessToken, []byte(token))
}

func (s *MetadataStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, metadata.KeyAccessToken)
}

// LocalStore is the TokenStore of the CLI. Clear wipes the token and every
// cached dataset snapshot in one transaction, so nothing fetched under an
// ended session is served afterwards.
type LocalStore struct {
	*MetadataStore
	db *sql.DB
}

// NewLocalStore reads and writes the token through repo; Clear opens its
// own transaction on db.
func NewLocalStore(db *sql.DB, repo metadata.Repository) *LocalStore {
	return &LocalStore{MetadataStore: NewMetadataStore(repo), db: db}
}

func (s *LocalStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := metadata.NewSQLiteRepository(tx).Delete(ctx, metadata.KeyAccessToken); err != nil {
			return err
		}
		snaps := snapshots.NewSQLiteRepository(tx)
		cached, err := snaps.List(ctx)
		if err != nil {
			return err
		}
		for _, c := range cached {
			if err := snaps.Delete(ctx, c.Dataset); err != nil {
				return fmt.Errorf("clear offline data: %w", err)
			}
		}
		return nil
	})
}

// MemoryStore is a process-local TokenStore. The *Err fields make the
// corresponding operation fail.
type MemoryStore struct {
	mu    sync.Mutex
	token string

	LoadErr  error
	SaveErr  error
	ClearErr error
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return "", s.LoadErr
	}
	return s.token, nil
}

func (s *MemoryStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.token = token
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.token = ""
	return nil
}

// Stored returns the persisted token.
func (s *MemoryStore) Stored() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}
