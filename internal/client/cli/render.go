package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/client/view"
)

const absent = "-"

var (
	accent  = lipgloss.Color("#8BC34A")
	warning = lipgloss.Color("#FFC107")
	danger  = lipgloss.Color("#e53935")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(warning)
	errorStyle  = lipgloss.NewStyle().Foreground(danger)
)

// renderTable draws rows under headers. An empty table renders a single
// muted line instead.
func renderTable(w io.Writer, title string, headers []string, rows [][]string) {
	if title != "" {
		fmt.Fprintln(w, titleStyle.Render(title))
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("(no records)"))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

// renderPairs prints aligned "key  value" lines.
func renderPairs(w io.Writer, pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}
	key := lipgloss.NewStyle().Bold(true).Width(width + 2)
	for _, p := range pairs {
		fmt.Fprintln(w, key.Render(p[0])+p[1])
	}
}

func sortCaption(spec view.SortSpec, filter string, shown, total int) string {
	parts := []string{fmt.Sprintf("%d of %d", shown, total)}
	if filter != "" {
		parts = append(parts, fmt.Sprintf("filter %q", filter))
	}
	if !spec.IsNone() {
		parts = append(parts, "sorted by "+spec.String())
	}
	return mutedStyle.Render(strings.Join(parts, ", "))
}

func num(f *float64, prec int) string {
	if f == nil {
		return absent
	}
	return strconv.FormatFloat(*f, 'f', prec, 64)
}

func text(s string) string {
	if s == "" {
		return absent
	}
	return s
}

func percent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
}

func keplerRows(items []models.KeplerPlanet) [][]string {
	rows := make([][]string, len(items))
	for i, k := range items {
		rows[i] = []string{text(k.Key()), text(k.Name()), text(k.KeplerName), text(k.Disposition),
			num(k.Period, 3), num(k.Radius, 2), num(k.EqTemp, 0), num(k.Insolation, 2)}
	}
	return rows
}

var keplerHeaders = []string{"ID", "KOI", "KEPLER NAME", "DISPOSITION", "PERIOD (d)", "RADIUS (R⊕)", "TEQ (K)", "INSOL"}

func tessRows(items []models.TessObject) [][]string {
	rows := make([][]string, len(items))
	for i, t := range items {
		rows[i] = []string{text(t.Key()), text(t.TIC()), text(t.TOI.String()), text(t.Status()),
			num(t.OrbitalPeriod, 3), num(t.PlanetRadius, 2)}
	}
	return rows
}

var tessHeaders = []string{"ID", "TIC", "TOI", "DISPOSITION", "PERIOD (d)", "RADIUS (R⊕)"}

func annotationRows(items []models.Annotation) [][]string {
	rows := make([][]string, len(items))
	for i, a := range items {
		rows[i] = []string{text(a.ID), text(a.DatasetType), text(a.DatasetID), text(firstLine(a.Notes, 48)), text(strings.Join(a.Tags, ", "))}
	}
	return rows
}

var annotationHeaders = []string{"ID", "DATASET", "RECORD", "NOTES", "TAGS"}

func predictionRows(items []models.PredictionRecord) [][]string {
	rows := make([][]string, len(items))
	for i, p := range items {
		rows[i] = []string{text(p.ID), text(p.ResponseData.CandidateIdentifier), verdict(p.ResponseData.IsExoplanet),
			percent(p.ResponseData.Confidence), text(p.ResponseData.Details.PlanetType), text(p.CreatedAt)}
	}
	return rows
}

var predictionHeaders = []string{"ID", "CANDIDATE", "VERDICT", "CONFIDENCE", "TYPE", "CREATED"}

func verdict(isPlanet bool) string {
	if isPlanet {
		return "exoplanet"
	}
	return "false positive"
}

// countRows turns a breakdown map into rows ordered by count, then label.
func countRows(m map[string]int) [][]string {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	slices.SortFunc(labels, func(a, b string) int {
		if m[a] != m[b] {
			return m[b] - m[a]
		}
		return strings.Compare(a, b)
	})
	rows := make([][]string, len(labels))
	for i, l := range labels {
		rows[i] = []string{l, strconv.Itoa(m[l])}
	}
	return rows
}

func firstLine(s string, limit int) string {
	s, _, cut := strings.Cut(s, "\n")
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	if cut {
		return s + " …"
	}
	return s
}
