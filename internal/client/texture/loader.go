package texture

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/exoscope/internal/logging"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "idle"
	}
}

var ErrLoaderClosed = errors.New("texture loader is closed")

// Snapshot is what a view renders.
type Snapshot struct {
	Status Status
	URL    string
	Err    error
}

// Loader runs texture generation for one detail view. At most one request
// is in flight; starting another cancels it. Only the latest request may
// publish a URL, and the published URL is revoked when it is replaced or
// the loader is closed.
type Loader struct {
	gen      Generator
	urls     URLStore
	logger   logging.Logger
	onChange func(Snapshot)

	// pubMu orders publication: it is taken before mu and held until
	// onChange returns, so a superseded result cannot be delivered after
	// the snapshot of the request that replaced it.
	pubMu sync.Mutex

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
	snap   Snapshot
	// active counts running requests; idle is closed when it drops to
	// zero and is nil while nothing runs.
	active int
	idle   chan struct{}
}

// NewLoader returns an idle loader. onChange, when non-nil, receives every
// published snapshot in order. It must not call back into the loader.
func NewLoader(gen Generator, urls URLStore, logger logging.Logger, onChange func(Snapshot)) *Loader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Loader{gen: gen, urls: urls, logger: logger.With("component", "texture_loader"), onChange: onChange}
}

// Request starts generating a texture for traits, superseding any request
// in flight. It returns immediately.
func (l *Loader) Request(ctx context.Context, traits PlanetTraits) error {
	l.pubMu.Lock()
	defer l.pubMu.Unlock()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoaderClosed
	}
	if l.cancel != nil {
		l.cancel()
	}
	if l.snap.URL != "" {
		l.urls.Revoke(l.snap.URL)
	}
	l.seq++
	id := l.seq
	rctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.snap = Snapshot{Status: StatusLoading}
	snap := l.snap
	if l.active == 0 {
		l.idle = make(chan struct{})
	}
	l.active++
	l.mu.Unlock()

	l.publish(snap)
	go l.run(rctx, cancel, id, BuildPrompt(traits))
	return nil
}

func (l *Loader) run(ctx context.Context, cancel context.CancelFunc, id uint64, p Prompt) {
	defer l.finish()
	defer cancel()

	img, err := l.gen.Generate(ctx, p)
	var u string
	if err == nil {
		u, err = l.urls.Create(img)
	}

	l.pubMu.Lock()
	defer l.pubMu.Unlock()

	l.mu.Lock()
	if id != l.seq || l.closed {
		l.mu.Unlock()
		if u != "" {
			l.urls.Revoke(u)
		}
		l.logger.Debug(ctx, "dropped superseded texture", "request", id)
		return
	}
	if err != nil {
		l.snap = Snapshot{Status: StatusError, Err: err}
	} else {
		l.snap = Snapshot{Status: StatusSuccess, URL: u}
	}
	snap := l.snap
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn(ctx, "texture generation failed", "error", err)
	}
	l.publish(snap)
}

func (l *Loader) finish() {
	l.mu.Lock()
	l.active--
	if l.active == 0 {
		close(l.idle)
		l.idle = nil
	}
	l.mu.Unlock()
}

func (l *Loader) publish(s Snapshot) {
	if l.onChange != nil {
		l.onChange(s)
	}
}

// Snapshot returns the current state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Wait blocks until no request is in flight or ctx is done. It starts no
// goroutine, so giving up on ctx leaves nothing behind.
func (l *Loader) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		idle := l.idle
		l.mu.Unlock()
		if idle == nil {
			return nil
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels the request in flight, waits for it and revokes the
// published URL. The loader cannot be reused.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	if l.cancel != nil {
		l.cancel()
	}
	idle := l.idle
	l.mu.Unlock()

	if idle != nil {
		<-idle
	}

	l.mu.Lock()
	if l.snap.URL != "" {
		l.urls.Revoke(l.snap.URL)
	}
	l.snap = Snapshot{}
	l.mu.Unlock()
}
