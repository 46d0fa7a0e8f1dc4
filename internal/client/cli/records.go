package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/client/services"
	"github.com/dmitrijs2005/exoscope/internal/client/view"
)

const defaultListLimit = 100

// listOptions are the server-side filters plus the local view settings.
type listOptions struct {
	models.ListFilter
	Text string
	Sort string
}

func (o listOptions) filter() models.ListFilter {
	f := o.ListFilter
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	return f
}

// parseListArgs reads REPL arguments: an optional disposition and
// key=value pairs for limit, page and min_period.
func parseListArgs(args []string) (listOptions, error) {
	var o listOptions
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			o.Disposition = arg
			continue
		}
		var err error
		switch k {
		case "limit":
			o.Limit, err = strconv.Atoi(v)
		case "page":
			o.Page, err = strconv.Atoi(v)
		case "min_period":
			o.MinPeriod, err = strconv.ParseFloat(v, 64)
		case "disposition":
			o.Disposition = v
		default:
			return o, &services.ValidationError{Fields: map[string]string{k: "unknown option"}}
		}
		if err != nil {
			return o, &services.ValidationError{Fields: map[string]string{k: "must be a number"}}
		}
	}
	return o, nil
}

func (a *App) offlineNotice(offline bool, at time.Time) {
	if offline {
		fmt.Fprintln(a.out, warnStyle.Render("Offline: showing the copy saved "+at.Local().Format(time.DateTime)))
	}
}

func (a *App) Kepler(ctx context.Context, o listOptions) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	page, err := a.datasets.Kepler(ctx, o.filter())
	if err != nil {
		return a.report(err)
	}
	a.kepler.SetRecords(page.Items)
	a.offlineNotice(page.Offline, page.FetchedAt)
	return a.openView(viewKepler, o)
}

func (a *App) Tess(ctx context.Context, o listOptions) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	page, err := a.datasets.Tess(ctx, o.filter())
	if err != nil {
		return a.report(err)
	}
	a.tess.SetRecords(page.Items)
	a.offlineNotice(page.Offline, page.FetchedAt)
	return a.openView(viewTess, o)
}

// openView makes name the active view, applies o's local settings and
// prints it.
func (a *App) openView(name string, o listOptions) error {
	a.active = name
	if o.Text != "" {
		a.setFilter(o.Text)
	}
	if o.Sort != "" {
		key, desc := strings.CutSuffix(o.Sort, ":desc")
		spec := view.SortSpec{Key: key}
		if desc {
			spec.Direction = view.Descending
		}
		a.setSort(spec)
	}
	return a.printActive()
}

func (a *App) setFilter(text string) {
	switch a.active {
	case viewKepler:
		a.kepler.SetFilter(text)
	case viewTess:
		a.tess.SetFilter(text)
	case viewNotes:
		a.notesV.SetFilter(text)
	case viewPredictions:
		a.history.SetFilter(text)
	}
}

func (a *App) setSort(spec view.SortSpec) {
	switch a.active {
	case viewKepler:
		a.kepler.SetSort(spec)
	case viewTess:
		a.tess.SetSort(spec)
	case viewNotes:
		a.notesV.SetSort(spec)
	case viewPredictions:
		a.history.SetSort(spec)
	}
}

// Filter sets the text filter of the active view; no text clears it.
func (a *App) Filter(args []string) error {
	if a.active == "" {
		fmt.Fprintln(a.out, "Nothing to filter: list kepler, tess, notes or history first.")
		return nil
	}
	a.setFilter(strings.Join(args, " "))
	return a.printActive()
}

// Sort toggles the sort key of the active view: ascending, then
// descending, then ascending again.
func (a *App) Sort(args []string) error {
	if a.active == "" {
		fmt.Fprintln(a.out, "Nothing to sort: list kepler, tess, notes or history first.")
		return nil
	}
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: sort <field>")
		return nil
	}

	var err error
	switch a.active {
	case viewKepler:
		_, err = a.kepler.ToggleSort(args[0])
	case viewTess:
		_, err = a.tess.ToggleSort(args[0])
	case viewNotes:
		_, err = a.notesV.ToggleSort(args[0])
	case viewPredictions:
		_, err = a.history.ToggleSort(args[0])
	}
	if err != nil {
		fmt.Fprintf(a.out, "Unknown field %q. Fields: %s\n", args[0], strings.Join(a.activeFields(), ", "))
		return err
	}
	return a.printActive()
}

func (a *App) activeFields() []string {
	switch a.active {
	case viewKepler:
		return a.kepler.Schema().Names()
	case viewTess:
		return a.tess.Schema().Names()
	case viewNotes:
		return a.notesV.Schema().Names()
	case viewPredictions:
		return a.history.Schema().Names()
	}
	return nil
}

func (a *App) printActive() error {
	switch a.active {
	case viewKepler:
		return printView(a, "Kepler objects of interest", a.kepler, keplerHeaders, keplerRows)
	case viewTess:
		return printView(a, "TESS objects of interest", a.tess, tessHeaders, tessRows)
	case viewNotes:
		return printView(a, "Research notes", a.notesV, annotationHeaders, annotationRows)
	case viewPredictions:
		return printView(a, "Prediction history", a.history, predictionHeaders, predictionRows)
	}
	return nil
}

func printView[T any](a *App, title string, v *view.View[T], headers []string, rows func([]T) [][]string) error {
	items, err := v.Rows()
	if err != nil {
		return a.report(err)
	}
	renderTable(a.out, title, headers, rows(items))
	fmt.Fprintln(a.out, sortCaption(v.Sort(), v.Filter(), len(items), v.Len()))
	return nil
}

// Show prints one record of the active archive, fetched fresh.
func (a *App) Show(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: show <id>")
		return nil
	}

	switch a.active {
	case viewTess:
		t, err := a.datasets.TessGet(ctx, args[0])
		if err != nil {
			return a.report(err)
		}
		printTess(a, t)
	case viewPredictions:
		p, err := a.predictions.Get(ctx, args[0])
		if err != nil {
			return a.report(err)
		}
		printPrediction(a, p.ResponseData, p.ID)
	default:
		k, err := a.datasets.KeplerGet(ctx, args[0])
		if err != nil {
			return a.report(err)
		}
		printKepler(a, k)
	}
	return nil
}

func printKepler(a *App, k *models.KeplerPlanet) {
	fmt.Fprintln(a.out, titleStyle.Render(text(k.Name())))
	kepid := absent
	if k.KepID != nil {
		kepid = strconv.FormatInt(*k.KepID, 10)
	}
	renderPairs(a.out, [][2]string{
		{"ID", text(k.Key())},
		{"KepID", kepid},
		{"Kepler name", text(k.KeplerName)},
		{"Disposition", text(k.Disposition)},
		{"Orbital period", num(k.Period, 5) + " d"},
		{"Radius", num(k.Radius, 2) + " R⊕"},
		{"Equilibrium temp", num(k.EqTemp, 0) + " K"},
		{"Insolation", num(k.Insolation, 2) + " S⊕"},
		{"Transit depth", num(k.Depth, 1) + " ppm"},
		{"Transit duration", num(k.Duration, 3) + " h"},
		{"Stellar temp", num(k.StellarTemp, 0) + " K"},
		{"Kepler magnitude", num(k.KepMag, 3)},
	})
}

func printTess(a *App, t *models.TessObject) {
	fmt.Fprintln(a.out, titleStyle.Render("TOI "+text(t.TOI.String())))
	renderPairs(a.out, [][2]string{
		{"ID", text(t.Key())},
		{"TIC", text(t.TIC())},
		{"Disposition", text(t.Status())},
		{"Orbital period", num(t.OrbitalPeriod, 5) + " d"},
		{"Radius", num(t.PlanetRadius, 2) + " R⊕"},
	})
}

func (a *App) Search(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	res, err := a.datasets.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return a.report(err)
	}
	renderTable(a.out, fmt.Sprintf("Kepler matches for %q", res.Query), keplerHeaders, keplerRows(res.Results.Kepler))
	renderTable(a.out, fmt.Sprintf("TESS matches for %q", res.Query), tessHeaders, tessRows(res.Results.Tess))
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	s, err := a.datasets.Stats(ctx)
	if err != nil {
		return a.report(err)
	}
	renderTable(a.out, "Archive summary", []string{"", "KEPLER", "TESS", "COMBINED"}, [][]string{
		{"Objects", strconv.Itoa(s.Kepler.TotalObjects), strconv.Itoa(s.Tess.TotalObjects), strconv.Itoa(s.Combined.TotalObjects)},
		{"Confirmed", strconv.Itoa(s.Kepler.ConfirmedPlanets), absent, strconv.Itoa(s.Combined.TotalConfirmedPlanets)},
		{"Candidates", strconv.Itoa(s.Kepler.Candidates), strconv.Itoa(s.Tess.PlanetCandidates), strconv.Itoa(s.Combined.TotalCandidates)},
		{"False positives", strconv.Itoa(s.Kepler.FalsePositives), strconv.Itoa(s.Tess.FalsePositives), absent},
	})
	return nil
}
