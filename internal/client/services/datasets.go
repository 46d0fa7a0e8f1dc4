package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/client/client"
	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/client/repositories/snapshots"
	"github.com/dmitrijs2005/exoscope/internal/common"
	"github.com/dmitrijs2005/exoscope/internal/logging"
)

const (
	DatasetKepler = "kepler"
	DatasetTess   = "tess"
)

// Page is one listing of archive records. Offline pages come from the local
// snapshot and FetchedAt tells when that snapshot was taken.
type Page[T any] struct {
	Items      []T
	Pagination *models.Pagination
	Offline    bool
	FetchedAt  time.Time
}

// DatasetService reads the Kepler and TESS archives.
//
// Contract:
//   - Every successful listing replaces the stored snapshot for the same
//     dataset and filter.
//   - When the API is unreachable a listing falls back to that snapshot;
//     without one the original error is returned.
//   - Detail, search and statistics calls are never served offline.
type DatasetService interface {
	Kepler(ctx context.Context, f models.ListFilter) (*Page[models.KeplerPlanet], error)
	KeplerGet(ctx context.Context, id string) (*models.KeplerPlanet, error)
	Tess(ctx context.Context, f models.ListFilter) (*Page[models.TessObject], error)
	TessGet(ctx context.Context, id string) (*models.TessObject, error)
	Search(ctx context.Context, query string) (*models.SearchResponse, error)
	Stats(ctx context.Context) (*models.DatasetStats, error)
}

type datasetService struct {
	client    client.Client
	snapshots snapshots.Repository
	logger    logging.Logger
	now       func() time.Time
}

func NewDatasetService(c client.Client, r snapshots.Repository, l logging.Logger) DatasetService {
	return &datasetService{client: c, snapshots: r, logger: l, now: time.Now}
}

// SnapshotKey names the snapshot a filtered listing is stored under.
func SnapshotKey(dataset string, f models.ListFilter) string {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if d := strings.TrimSpace(f.Disposition); d != "" {
		q.Set("disposition", d)
	}
	if f.MinPeriod > 0 {
		q.Set("min_period", strconv.FormatFloat(f.MinPeriod, 'g', -1, 64))
	}
	if len(q) == 0 {
		return dataset
	}
	return dataset + "?" + q.Encode()
}

func (s *datasetService) Kepler(ctx context.Context, f models.ListFilter) (*Page[models.KeplerPlanet], error) {
	l, raw, err := s.client.KeplerList(ctx, f)
	return listing(ctx, s, SnapshotKey(DatasetKepler, f), l, raw, err)
}

func (s *datasetService) Tess(ctx context.Context, f models.ListFilter) (*Page[models.TessObject], error) {
	l, raw, err := s.client.TessList(ctx, f)
	return listing(ctx, s, SnapshotKey(DatasetTess, f), l, raw, err)
}

func listing[T any](ctx context.Context, s *datasetService, key string, l *models.Listing[T], raw []byte, err error) (*Page[T], error) {
	if err == nil {
		s.store(ctx, key, raw, len(l.Items))
		return &Page[T]{Items: l.Items, Pagination: l.Pagination, FetchedAt: s.now()}, nil
	}
	if !errors.Is(err, client.ErrUnavailable) {
		return nil, err
	}

	snap, lerr := s.snapshots.Load(ctx, key)
	if lerr != nil {
		if !errors.Is(lerr, common.ErrorNotFound) {
			s.logger.Warn(ctx, "snapshot load failed", "dataset", key, "error", lerr)
		}
		return nil, err
	}

	var cached models.Listing[T]
	if derr := json.Unmarshal(snap.Payload, &cached); derr != nil {
		s.logger.Warn(ctx, "snapshot is unreadable", "dataset", key, "error", derr)
		return nil, err
	}
	s.logger.Info(ctx, "serving snapshot", "dataset", key, "fetched_at", snap.FetchedAt)
	return &Page[T]{Items: cached.Items, Pagination: cached.Pagination, Offline: true, FetchedAt: snap.FetchedAt}, nil
}

// store is best effort; a failed write never fails the listing.
func (s *datasetService) store(ctx context.Context, key string, raw []byte, n int) {
	if len(raw) == 0 {
		return
	}
	err := s.snapshots.Save(ctx, snapshots.Snapshot{Dataset: key, Payload: raw, ItemCount: n, FetchedAt: s.now()})
	if err != nil {
		s.logger.Warn(ctx, "snapshot save failed", "dataset", key, "error", err)
	}
}

func (s *datasetService) KeplerGet(ctx context.Context, id string) (*models.KeplerPlanet, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return s.client.KeplerGet(ctx, strings.TrimSpace(id))
}

func (s *datasetService) TessGet(ctx context.Context, id string) (*models.TessObject, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return s.client.TessGet(ctx, strings.TrimSpace(id))
}

func (s *datasetService) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Fields: map[string]string{"query": "is required"}}
	}
	res, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return res, nil
}

func (s *datasetService) Stats(ctx context.Context) (*models.DatasetStats, error) {
	return s.client.DatasetStats(ctx)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Fields: map[string]string{"id": "is required"}}
	}
	return nil
}
