package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
)

// predictionField is one numeric input of the prediction form.
type predictionField struct {
	label string
	dst   func(*models.PredictionRequest) *float64
}

var predictionForm = []predictionField{
	{"Orbital period (days)", func(r *models.PredictionRequest) *float64 { return &r.Period }},
	{"Transit epoch (BKJD)", func(r *models.PredictionRequest) *float64 { return &r.Time0BK }},
	{"Impact parameter", func(r *models.PredictionRequest) *float64 { return &r.Impact }},
	{"Transit duration (hours)", func(r *models.PredictionRequest) *float64 { return &r.Duration }},
	{"Transit depth (ppm)", func(r *models.PredictionRequest) *float64 { return &r.Depth }},
	{"Planet radius (Earth radii)", func(r *models.PredictionRequest) *float64 { return &r.Radius }},
	{"Equilibrium temperature (K)", func(r *models.PredictionRequest) *float64 { return &r.EqTemp }},
	{"Insolation flux (Earth flux)", func(r *models.PredictionRequest) *float64 { return &r.Insolation }},
	{"Transit signal-to-noise", func(r *models.PredictionRequest) *float64 { return &r.ModelSNR }},
	{"Stellar effective temperature (K)", func(r *models.PredictionRequest) *float64 { return &r.StellarTemp }},
	{"Stellar surface gravity (log10 cm/s²)", func(r *models.PredictionRequest) *float64 { return &r.StellarLogG }},
	{"Stellar radius (Solar radii)", func(r *models.PredictionRequest) *float64 { return &r.StellarRadius }},
	{"Right ascension (deg)", func(r *models.PredictionRequest) *float64 { return &r.RA }},
	{"Declination (deg)", func(r *models.PredictionRequest) *float64 { return &r.Dec }},
	{"Kepler magnitude", func(r *models.PredictionRequest) *float64 { return &r.KepMag }},
}

// PredictInteractive asks for every field, then submits. A value that is
// not a number is asked again.
func (a *App) PredictInteractive(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	var req models.PredictionRequest
	id, err := a.in.Text("Candidate identifier")
	if err != nil {
		return err
	}
	req.CustomIdentifier = id

	for _, f := range predictionForm {
		for {
			v, err := a.in.Float(f.label)
			if err == nil {
				*f.dst(&req) = v
				break
			}
			if !errors.Is(err, errNotNumber) {
				return err
			}
			fmt.Fprintln(a.out, errorStyle.Render(err.Error()))
		}
	}
	return a.Predict(ctx, req)
}

// PredictFile submits a request read from a JSON file using the API's
// field names.
func (a *App) PredictFile(ctx context.Context, path string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return a.report(fmt.Errorf("read %s: %w", path, err))
	}
	var req models.PredictionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return a.report(fmt.Errorf("parse %s: %w", path, err))
	}
	return a.Predict(ctx, req)
}

func (a *App) Predict(ctx context.Context, req models.PredictionRequest) error {
	resp, err := a.predictions.Predict(ctx, req)
	if err != nil {
		return a.report(err)
	}
	printPrediction(a, resp.Prediction, resp.PredictionID)
	if resp.PredictionID == "" {
		fmt.Fprintln(a.out, warnStyle.Render("The prediction was not saved to your history."))
	}
	return nil
}

func printPrediction(a *App, p models.PredictionResult, id string) {
	style := errorStyle
	if p.IsExoplanet {
		style = titleStyle
	}
	fmt.Fprintln(a.out, style.Render(fmt.Sprintf("%s: %s (%s confidence)", text(p.CandidateIdentifier), verdict(p.IsExoplanet), percent(p.Confidence))))

	d := p.Details
	name := absent
	if d.PlanetName != nil && *d.PlanetName != "" {
		name = *d.PlanetName
	}
	pairs := [][2]string{
		{"Planet type", text(d.PlanetType)},
		{"Planet name", name},
		{"Radius", num(d.RadiusEarth, 2) + " R⊕"},
		{"Orbital period", num(d.OrbitalPeriodDays, 3) + " d"},
		{"Equilibrium temp", num(d.EquilibriumTempKelvin, 0) + " K"},
	}
	if id != "" {
		pairs = append([][2]string{{"Prediction", id}}, pairs...)
	}
	if p.Note != "" {
		pairs = append(pairs, [2]string{"Note", p.Note})
	}
	renderPairs(a.out, pairs)
}

// History lists one page of past predictions into the history view.
func (a *App) History(ctx context.Context, page, limit int) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	h, err := a.predictions.History(ctx, page, limit)
	if err != nil {
		return a.report(err)
	}
	a.history.SetRecords(h.Predictions)
	if err := a.openView(viewPredictions, listOptions{}); err != nil {
		return err
	}
	p := h.Pagination
	if p.Pages > 1 {
		fmt.Fprintln(a.out, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d predictions", p.Page, p.Pages, p.Total)))
	}
	return nil
}

// HistoryArgs parses "history [page] [limit]" from the REPL.
func (a *App) HistoryArgs(ctx context.Context, args []string) error {
	page, limit := 1, 0
	if len(args) > 0 {
		page, _ = strconv.Atoi(args[0])
	}
	if len(args) > 1 {
		limit, _ = strconv.Atoi(args[1])
	}
	return a.History(ctx, page, limit)
}

func (a *App) PredictionStats(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	s, err := a.predictions.Stats(ctx)
	if err != nil {
		return a.report(err)
	}
	renderPairs(a.out, [][2]string{
		{"Predictions", strconv.Itoa(s.TotalPredictions)},
		{"Exoplanets", strconv.Itoa(s.ConfirmedExoplanets)},
		{"Average confidence", percent(s.AverageConfidence)},
	})
	renderTable(a.out, "Planet types", []string{"TYPE", "COUNT"}, countRows(s.PlanetTypeDistribution))
	return nil
}
