package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/exoscope/internal/client/client"
	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, client.RunMigrations(context.Background(), db))
	return db
}

func unavailable() error {
	return fmt.Errorf("dial tcp: connection refused: %w", client.ErrUnavailable)
}

// ---- fake client ----

// fakeClient implements client.Client with canned results. Calls may come
// from several goroutines (dashboard), so captures are guarded.
type fakeClient struct {
	mu sync.Mutex

	PingErr error

	LoginRet  *models.AuthResponse
	LoginErr  error
	SignupRet *models.AuthResponse
	SignupErr error
	MeRet     *models.User
	MeErr     error

	KeplerRet    *models.Listing[models.KeplerPlanet]
	KeplerRaw    []byte
	KeplerErr    error
	KeplerGetRet *models.KeplerPlanet
	TessRet      *models.Listing[models.TessObject]
	TessRaw      []byte
	TessErr      error
	SearchRet    *models.SearchResponse
	SearchErr    error
	StatsRet     *models.DatasetStats

	AnnotationsRet []models.Annotation
	AnnotationRet  *models.Annotation
	AnnotationErr  error

	PredictRet    *models.PredictResponse
	PredictErr    error
	HistoryRet    *models.PredictionHistory
	HistoryErr    error
	PredictionRet *models.PredictionRecord
	PredStatsRet  *models.PredictionStats

	calls int

	LastLoginEmail   string
	LastSignup       models.SignupRequest
	LastFilter       models.ListFilter
	LastSearch       string
	LastAnnotation   models.AnnotationInput
	LastAnnotationID string
	LastDeleteID     string
	LastPredict      models.PredictionRequest
	LastPage         int
	LastLimit        int
	LastGetID        string
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) track() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeClient) Ping(context.Context) error { f.track(); return f.PingErr }

func (f *fakeClient) Login(_ context.Context, email, _ string) (*models.AuthResponse, error) {
	f.track()
	f.LastLoginEmail = email
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Signup(_ context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	f.track()
	f.LastSignup = req
	return f.SignupRet, f.SignupErr
}

func (f *fakeClient) CurrentUser(context.Context, string) (*models.User, error) {
	f.track()
	return f.MeRet, f.MeErr
}

func (f *fakeClient) KeplerList(_ context.Context, fl models.ListFilter) (*models.Listing[models.KeplerPlanet], []byte, error) {
	f.track()
	f.mu.Lock()
	f.LastFilter = fl
	f.mu.Unlock()
	return f.KeplerRet, f.KeplerRaw, f.KeplerErr
}

func (f *fakeClient) KeplerGet(_ context.Context, id string) (*models.KeplerPlanet, error) {
	f.track()
	f.LastGetID = id
	return f.KeplerGetRet, nil
}

func (f *fakeClient) TessList(context.Context, models.ListFilter) (*models.Listing[models.TessObject], []byte, error) {
	f.track()
	return f.TessRet, f.TessRaw, f.TessErr
}

func (f *fakeClient) TessGet(_ context.Context, id string) (*models.TessObject, error) {
	f.track()
	f.LastGetID = id
	return &models.TessObject{ID: id}, nil
}

func (f *fakeClient) Search(_ context.Context, q string) (*models.SearchResponse, error) {
	f.track()
	f.LastSearch = q
	return f.SearchRet, f.SearchErr
}

func (f *fakeClient) DatasetStats(context.Context) (*models.DatasetStats, error) {
	f.track()
	return f.StatsRet, nil
}

func (f *fakeClient) Annotations(context.Context) ([]models.Annotation, error) {
	f.track()
	return f.AnnotationsRet, f.AnnotationErr
}

func (f *fakeClient) CreateAnnotation(_ context.Context, in models.AnnotationInput) (*models.Annotation, error) {
	f.track()
	f.LastAnnotation = in
	return f.AnnotationRet, f.AnnotationErr
}

func (f *fakeClient) UpdateAnnotation(_ context.Context, id string, in models.AnnotationInput) (*models.Annotation, error) {
	f.track()
	f.LastAnnotationID = id
	f.LastAnnotation = in
	return f.AnnotationRet, f.AnnotationErr
}

func (f *fakeClient) DeleteAnnotation(_ context.Context, id string) error {
	f.track()
	f.LastDeleteID = id
	return f.AnnotationErr
}

func (f *fakeClient) Predict(_ context.Context, req models.PredictionRequest) (*models.PredictResponse, error) {
	f.track()
	f.LastPredict = req
	return f.PredictRet, f.PredictErr
}

func (f *fakeClient) PredictionHistory(_ context.Context, page, limit int) (*models.PredictionHistory, error) {
	f.track()
	f.mu.Lock()
	f.LastPage, f.LastLimit = page, limit
	f.mu.Unlock()
	return f.HistoryRet, f.HistoryErr
}

func (f *fakeClient) PredictionGet(_ context.Context, id string) (*models.PredictionRecord, error) {
	f.track()
	f.LastGetID = id
	return f.PredictionRet, nil
}

func (f *fakeClient) PredictionStats(context.Context) (*models.PredictionStats, error) {
	f.track()
	return f.PredStatsRet, nil
}
