package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/exoscope/internal/client/view"
)

func TestNum(t *testing.T) {
	assert.Equal(t, absent, num(nil, 2))
	assert.Equal(t, "3.14", num(ptr(3.14159), 2))
	assert.Equal(t, "290", num(ptr(289.86), 0))
}

func TestCountRows_ByCountThenLabel(t *testing.T) {
	rows := countRows(map[string]int{"PC": 3, "FP": 1, "CP": 3, "KP": 2})
	assert.Equal(t, [][]string{{"CP", "3"}, {"PC", "3"}, {"KP", "2"}, {"FP", "1"}}, rows)
	assert.Empty(t, countRows(nil))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "short", firstLine("short", 10))
	assert.Equal(t, "one …", firstLine("one\ntwo", 10))
	assert.Equal(t, "abcd…", firstLine("abcdefgh", 5))
}

func TestSortCaption(t *testing.T) {
	assert.Contains(t, sortCaption(view.SortSpec{}, "", 3, 3), "3 of 3")
	got := sortCaption(view.SortSpec{Key: "period"}, "kep", 1, 3)
	assert.Contains(t, got, `1 of 3, filter "kep", sorted by period`)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, "Kepler", keplerHeaders, keplerRows(keplerFixture()[:1]))
	out := buf.String()
	assert.Contains(t, out, "Kepler")
	assert.Contains(t, out, "DISPOSITION")
	assert.Contains(t, out, "K00087.01")
	assert.Contains(t, out, "289.860")

	buf.Reset()
	renderTable(&buf, "Empty", keplerHeaders, nil)
	assert.Contains(t, buf.String(), "(no records)")
}

func TestVerdictAndPercent(t *testing.T) {
	assert.Equal(t, "exoplanet", verdict(true))
	assert.Equal(t, "false positive", verdict(false))
	assert.Equal(t, "87.5%", percent(0.875))
}
