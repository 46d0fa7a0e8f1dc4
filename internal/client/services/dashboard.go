package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/logging"
)

const (
	dashboardKeplerLimit = 200
	dashboardTessLimit   = 100
	dashboardRecent      = 5
)

// Dashboard summarizes both archives and the user's latest predictions.
type Dashboard struct {
	KeplerTotal         int
	TessTotal           int
	KeplerByDisposition map[string]int
	TessByDisposition   map[string]int
	Offline             bool
	Recent              []models.PredictionRecord
	// HistoryErr is set when the archives loaded but history did not.
	HistoryErr error
}

type DashboardService interface {
	Summary(ctx context.Context) (*Dashboard, error)
}

type dashboardService struct {
	datasets    DatasetService
	predictions PredictionService
	logger      logging.Logger
}

func NewDashboardService(d DatasetService, p PredictionService, l logging.Logger) DashboardService {
	return &dashboardService{datasets: d, predictions: p, logger: l}
}

func (s *dashboardService) Summary(ctx context.Context) (*Dashboard, error) {
	var (
		kepler  *Page[models.KeplerPlanet]
		tess    *Page[models.TessObject]
		history *models.PredictionHistory
		histErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kepler, err = s.datasets.Kepler(gctx, models.ListFilter{Limit: dashboardKeplerLimit})
		if err != nil {
			return fmt.Errorf("kepler: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tess, err = s.datasets.Tess(gctx, models.ListFilter{Limit: dashboardTessLimit})
		if err != nil {
			return fmt.Errorf("tess: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// History is optional; its error never cancels the listings.
		history, histErr = s.predictions.History(gctx, 1, dashboardRecent)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	d := &Dashboard{
		KeplerTotal:         len(kepler.Items),
		TessTotal:           len(tess.Items),
		KeplerByDisposition: make(map[string]int),
		TessByDisposition:   make(map[string]int),
		Offline:             kepler.Offline || tess.Offline,
	}
	for _, p := range kepler.Items {
		d.KeplerByDisposition[dispositionLabel(p.Disposition)]++
	}
	for _, t := range tess.Items {
		d.TessByDisposition[dispositionLabel(t.Status())]++
	}
	if histErr != nil {
		s.logger.Warn(ctx, "prediction history unavailable", "error", histErr)
		d.HistoryErr = histErr
	} else {
		d.Recent = history.Predictions
	}
	return d, nil
}

func dispositionLabel(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
