package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/client/client"
	"github.com/dmitrijs2005/exoscope/internal/client/config"
	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/client/services"
	"github.com/dmitrijs2005/exoscope/internal/client/session"
	"github.com/dmitrijs2005/exoscope/internal/client/texture"
	"github.com/dmitrijs2005/exoscope/internal/client/view"
	"github.com/dmitrijs2005/exoscope/internal/common"
	"github.com/dmitrijs2005/exoscope/internal/logging"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// textureTimeout bounds one image generation; it is much slower than the
// research API.
const textureTimeout = 90 * time.Second

const pingTimeout = 3 * time.Second

// Which listing filter, sort and show act on.
const (
	viewKepler      = "kepler"
	viewTess        = "tess"
	viewNotes       = "notes"
	viewPredictions = "history"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	session     *session.Manager
	auth        services.AuthService
	datasets    services.DatasetService
	notes       services.AnnotationService
	predictions services.PredictionService
	dashboard   services.DashboardService

	urls     *texture.ObjectURLs
	textures *texture.Loader
	exporter *texture.Exporter

	kepler  *view.View[models.KeplerPlanet]
	tess    *view.View[models.TessObject]
	notesV  *view.View[models.Annotation]
	history *view.View[models.PredictionRecord]
	active  string

	in  *prompter
	out io.Writer

	modeMu sync.Mutex
	mode   Mode

	loggingOut  atomic.Bool
	stateMu     sync.Mutex
	lastState   session.State
	unsubscribe func()
}

// NewApp opens the local database and wires every component for cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repos := client.NewRepositories(db)

	m := session.NewManager(ctx, session.NewLocalStore(db, repos.Metadata), logger)
	api, err := client.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout,
		client.WithTokenSource(m),
		client.WithUnauthorizedHandler(m),
		client.WithLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	urls, err := texture.NewObjectURLs(cfg.TextureDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	gen := texture.NewStabilityClient(cfg.StabilityEndpoint, cfg.StabilityAPIKey, textureTimeout, logger)

	var exporter *texture.Exporter
	if cfg.ExportEnabled() {
		exporter, err = texture.NewS3Exporter(ctx, texture.ExportConfig{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			logger.Warn(ctx, "texture export disabled", "error", err)
		}
	}

	datasets := services.NewDatasetService(api, repos.Snapshots, logger)
	predictions := services.NewPredictionService(api, logger)

	a := &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		session:     m,
		auth:        services.NewAuthService(api, m, logger),
		datasets:    datasets,
		notes:       services.NewAnnotationService(api, logger),
		predictions: predictions,
		dashboard:   services.NewDashboardService(datasets, predictions, logger),
		urls:        urls,
		exporter:    exporter,
		mode:        ModeOnline,
	}
	a.textures = texture.NewLoader(gen, urls, logger, nil)
	a.init(os.Stdin, os.Stdout)
	return a, nil
}

// init prepares the parts every App needs, including test ones.
func (a *App) init(in io.Reader, out io.Writer) {
	a.in = newPrompter(in, out)
	a.out = out
	a.kepler = view.New(view.KeplerSchema)
	a.tess = view.New(view.TessSchema)
	a.notesV = view.New(view.AnnotationSchema)
	a.history = view.New(view.PredictionSchema)
	if a.logger == nil {
		a.logger = logging.Nop()
	}
	if a.session != nil {
		a.lastState = a.session.State()
		a.unsubscribe = a.session.Subscribe(a.onSession)
	}
}

// onSession reports session ends the user did not ask for.
func (a *App) onSession(st session.State) {
	a.stateMu.Lock()
	prev := a.lastState
	a.lastState = st
	a.stateMu.Unlock()
	explicit := a.loggingOut.Load()

	switch {
	case prev.IsAuthenticated && !st.IsAuthenticated && !explicit:
		fmt.Fprintln(a.out, warnStyle.Render("Session expired, please log in again."))
	case prev.IsAuthLoading && prev.Token != "" && !st.IsAuthLoading && !st.IsAuthenticated:
		fmt.Fprintln(a.out, warnStyle.Render("Saved session is no longer valid, please log in."))
	}
}

// Initialize validates a restored session. It blocks until done.
func (a *App) Initialize(ctx context.Context) error {
	return a.auth.Initialize(ctx)
}

// Close releases textures, the database and background work.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.textures != nil {
		a.textures.Close()
	}
	if a.urls != nil {
		_ = a.urls.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().IsAuthenticated
}

// requireAuth refuses protected commands while the session is validating
// or absent.
func (a *App) requireAuth() error {
	st := a.auth.State()
	switch {
	case st.IsAuthLoading:
		fmt.Fprintln(a.out, warnStyle.Render("Still checking the saved session, try again in a moment."))
		return common.ErrAuthLoading
	case !st.IsAuthenticated:
		fmt.Fprintln(a.out, "Please log in first (login or signup).")
		return common.ErrNotAuthenticated
	}
	return nil
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()
	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

// StartOnlineStatusWatcher pings the API every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.auth.Ping(pctx)
	cancel()

	if err != nil && errors.Is(err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
		return
	}
	if err == nil {
		a.setMode(ModeOnline)
	}
}

func (a *App) getStatus() string {
	s := ""
	st := a.auth.State()
	switch {
	case st.IsAuthLoading:
		s = "… "
	case st.User != nil:
		s = st.User.Username + " "
	}
	return fmt.Sprintf("(%s%s)", s, a.Mode())
}

// report prints err in user terms and returns it unchanged.
func (a *App) report(err error) error {
	if err == nil {
		return nil
	}
	var (
		ve  *services.ValidationError
		api *client.APIError
	)
	switch {
	case errors.As(err, &ve):
		fmt.Fprintln(a.out, errorStyle.Render("Please correct the following:"))
		for _, f := range slices.Sorted(maps.Keys(ve.Fields)) {
			fmt.Fprintf(a.out, "  %s %s\n", f, ve.Fields[f])
		}
	case errors.Is(err, common.ErrAuthLoading), errors.Is(err, common.ErrNotAuthenticated):
		// requireAuth already explained.
	case errors.Is(err, client.ErrInvalidCredentials):
		fmt.Fprintln(a.out, errorStyle.Render("Invalid email or password."))
	case errors.Is(err, client.ErrUnauthorized):
		// The session observer prints the expiry notice.
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, errorStyle.Render("The research API is unreachable."))
	case errors.Is(err, client.ErrNotFound):
		fmt.Fprintln(a.out, errorStyle.Render("Not found."))
	case errors.Is(err, texture.ErrMissingAPIKey):
		fmt.Fprintln(a.out, errorStyle.Render("Set STABILITY_API_KEY to generate textures."))
	case errors.As(err, &api) && api.Message != "":
		fmt.Fprintln(a.out, errorStyle.Render(api.Message))
	default:
		fmt.Fprintln(a.out, errorStyle.Render("Error: "+err.Error()))
	}
	return err
}
