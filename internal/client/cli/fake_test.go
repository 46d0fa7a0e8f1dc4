package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/exoscope/internal/client/config"
	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/client/services"
	"github.com/dmitrijs2005/exoscope/internal/client/session"
	"github.com/dmitrijs2005/exoscope/internal/common"
)

var testUser = models.User{ID: "u1", Username: "ada", Email: "ada@example.com"}

type fakeAuth struct {
	m *session.Manager

	mu        sync.Mutex
	MeErr     error
	LoginErr  error
	SignupErr error
	PingErr   error

	LastEmail, LastPassword, LastUsername string
	LoginCalls, SignupCalls               int
}

func (f *fakeAuth) CurrentUser(context.Context, string) (*models.User, error) {
	if f.MeErr != nil {
		return nil, f.MeErr
	}
	u := testUser
	return &u, nil
}

func (f *fakeAuth) Initialize(ctx context.Context) error { return f.m.Initialize(ctx, f) }

func (f *fakeAuth) establish(ctx context.Context, err error) (*models.User, error) {
	if err != nil && !errors.Is(err, services.ErrNotPersisted) {
		return nil, err
	}
	u := testUser
	if lerr := f.m.Login(ctx, "tok", &u); lerr != nil {
		return nil, lerr
	}
	return &u, err
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*models.User, error) {
	f.LoginCalls++
	f.LastEmail, f.LastPassword = email, password
	return f.establish(ctx, f.LoginErr)
}

func (f *fakeAuth) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	f.SignupCalls++
	f.LastUsername, f.LastEmail, f.LastPassword = username, email, password
	return f.establish(ctx, f.SignupErr)
}

func (f *fakeAuth) Logout(ctx context.Context) error { return f.m.Logout(ctx) }

func (f *fakeAuth) Whoami(context.Context) (*services.Identity, error) {
	st := f.m.State()
	if !st.IsAuthenticated {
		return nil, common.ErrNotAuthenticated
	}
	return &services.Identity{User: st.User}, nil
}

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PingErr
}

func (f *fakeAuth) State() session.State { return f.m.State() }

type fakeDatasets struct {
	KeplerPage *services.Page[models.KeplerPlanet]
	TessPage   *services.Page[models.TessObject]
	KeplerRec  *models.KeplerPlanet
	TessRec    *models.TessObject
	SearchRes  *models.SearchResponse
	StatsRes   *models.DatasetStats
	Err        error

	LastFilter models.ListFilter
	LastID     string
	LastQuery  string
}

func (f *fakeDatasets) Kepler(_ context.Context, flt models.ListFilter) (*services.Page[models.KeplerPlanet], error) {
	f.LastFilter = flt
	return f.KeplerPage, f.Err
}

func (f *fakeDatasets) KeplerGet(_ context.Context, id string) (*models.KeplerPlanet, error) {
	f.LastID = id
	return f.KeplerRec, f.Err
}

func (f *fakeDatasets) Tess(_ context.Context, flt models.ListFilter) (*services.Page[models.TessObject], error) {
	f.LastFilter = flt
	return f.TessPage, f.Err
}

func (f *fakeDatasets) TessGet(_ context.Context, id string) (*models.TessObject, error) {
	f.LastID = id
	return f.TessRec, f.Err
}

func (f *fakeDatasets) Search(_ context.Context, q string) (*models.SearchResponse, error) {
	f.LastQuery = q
	return f.SearchRes, f.Err
}

func (f *fakeDatasets) Stats(context.Context) (*models.DatasetStats, error) {
	return f.StatsRes, f.Err
}

type fakeNotes struct {
	Items []models.Annotation
	Err   error

	Created, Updated []noteInput
	Deleted          []string
	nextID           int
}

func (f *fakeNotes) List(context.Context) ([]models.Annotation, error) { return f.Items, f.Err }

func (f *fakeNotes) save(id string, in noteInput) *models.Annotation {
	return &models.Annotation{ID: id, DatasetType: in.Type, DatasetID: in.Record, Notes: in.Text, Tags: models.ParseTags(in.Tags)}
}

func (f *fakeNotes) Create(_ context.Context, typ, record, notes, tags string) (*models.Annotation, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	in := noteInput{Type: typ, Record: record, Text: notes, Tags: tags}
	f.Created = append(f.Created, in)
	f.nextID++
	return f.save(fmt.Sprintf("n%d", f.nextID), in), nil
}

func (f *fakeNotes) Update(_ context.Context, id, typ, record, notes, tags string) (*models.Annotation, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	in := noteInput{Type: typ, Record: record, Text: notes, Tags: tags}
	f.Updated = append(f.Updated, in)
	return f.save(id, in), nil
}

func (f *fakeNotes) Delete(_ context.Context, id string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Deleted = append(f.Deleted, id)
	return nil
}

type fakePredictions struct {
	PredictRet *models.PredictResponse
	HistoryRet *models.PredictionHistory
	GetRet     *models.PredictionRecord
	StatsRet   *models.PredictionStats
	Err        error

	LastRequest     models.PredictionRequest
	LastPage, LastN int
}

func (f *fakePredictions) Predict(_ context.Context, req models.PredictionRequest) (*models.PredictResponse, error) {
	f.LastRequest = req
	return f.PredictRet, f.Err
}

func (f *fakePredictions) History(_ context.Context, page, limit int) (*models.PredictionHistory, error) {
	f.LastPage, f.LastN = page, limit
	return f.HistoryRet, f.Err
}

func (f *fakePredictions) Get(context.Context, string) (*models.PredictionRecord, error) {
	return f.GetRet, f.Err
}

func (f *fakePredictions) Stats(context.Context) (*models.PredictionStats, error) {
	return f.StatsRet, f.Err
}

type fakeDashboard struct {
	Ret *services.Dashboard
	Err error
}

func (f *fakeDashboard) Summary(context.Context) (*services.Dashboard, error) { return f.Ret, f.Err }

// testApp is an App wired to fakes, with its output captured.
type testApp struct {
	*App
	buf         *bytes.Buffer
	store       *session.MemoryStore
	authF       *fakeAuth
	datasetsF   *fakeDatasets
	notesF      *fakeNotes
	predictionF *fakePredictions
	dashboardF  *fakeDashboard
}

// newTestApp builds an App reading input and starting from a stored token.
func newTestApp(t *testing.T, input, token string) *testApp {
	t.Helper()
	store := session.NewMemoryStore(token)
	m := session.NewManager(context.Background(), store, nil)

	ta := &testApp{
		buf:         &bytes.Buffer{},
		store:       store,
		authF:       &fakeAuth{m: m},
		datasetsF:   &fakeDatasets{},
		notesF:      &fakeNotes{},
		predictionF: &fakePredictions{},
		dashboardF:  &fakeDashboard{},
	}
	ta.App = &App{
		config:      &config.Config{},
		session:     m,
		auth:        ta.authF,
		datasets:    ta.datasetsF,
		notes:       ta.notesF,
		predictions: ta.predictionF,
		dashboard:   ta.dashboardF,
		mode:        ModeOnline,
	}
	ta.init(strings.NewReader(input), ta.buf)
	t.Cleanup(ta.Close)
	return ta
}

// loggedIn returns a test app with an authenticated session.
func loggedIn(t *testing.T, input string) *testApp {
	t.Helper()
	ta := newTestApp(t, input, "")
	u := testUser
	require.NoError(t, ta.session.Login(context.Background(), "tok", &u))
	return ta
}

// loggedOut returns a test app whose session finished loading without a token.
func loggedOut(t *testing.T, input string) *testApp {
	t.Helper()
	ta := newTestApp(t, input, "")
	require.NoError(t, ta.Initialize(context.Background()))
	return ta
}

// stubPasswords makes the password prompt return pws in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { readPassword = orig })
}

func ptr[T any](v T) *T { return &v }
