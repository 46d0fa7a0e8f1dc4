package cli

import (
	"context"
	"fmt"
	"strconv"
)

func (a *App) Dashboard(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	d, err := a.dashboard.Summary(ctx)
	if err != nil {
		return a.report(err)
	}
	if d.Offline {
		fmt.Fprintln(a.out, warnStyle.Render("Offline: archive counts come from saved copies."))
	}
	if st := a.auth.State(); st.User != nil {
		fmt.Fprintln(a.out, titleStyle.Render("Welcome back, "+st.User.Username))
	}

	renderTable(a.out, "Kepler ("+strconv.Itoa(d.KeplerTotal)+" loaded)", []string{"DISPOSITION", "COUNT"}, countRows(d.KeplerByDisposition))
	renderTable(a.out, "TESS ("+strconv.Itoa(d.TessTotal)+" loaded)", []string{"DISPOSITION", "COUNT"}, countRows(d.TessByDisposition))

	if d.HistoryErr != nil {
		fmt.Fprintln(a.out, mutedStyle.Render("Recent predictions are unavailable."))
		return nil
	}
	renderTable(a.out, "Recent predictions", predictionHeaders, predictionRows(d.Recent))
	return nil
}

