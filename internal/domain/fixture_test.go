package domain

import (
	"fmt"
	"strings"
)

// soundingRule is the horizontal rule line used by the archive's tables.
const soundingRule = "-----------------------------------------------------------------------------"

// formatRow renders one fixed-width table row; blanks stand for unmeasured
// cells.
func formatRow(cells ...string) string {
	var b strings.Builder
	for _, c := range cells {
		fmt.Fprintf(&b, "%7s", c)
	}
	return b.String()
}

// headerRow is the schema row every valid block carries.
func headerRow() string {
	return formatRow("PRES", "HGHT", "TEMP", "DWPT", "RELH", "MIXR", "DRCT", "SKNT", "THTA", "THTE", "THTV")
}

func unitsRow() string {
	return formatRow("hPa", "m", "C", "C", "%", "g/kg", "deg", "knot", "K", "K", "K")
}

// levelRow renders a data row from pressure, height, temperature and wind
// speed (knots), leaving the remaining columns blank.
func levelRow(pres, hght, temp, sknt string) string {
	return formatRow(pres, hght, temp, "", "", "", "", sknt, "", "", "")
}

// buildBlock assembles a raw sounding block the way it appears inside a
// <pre> tag: leading and trailing framing lines, rules around the header.
func buildBlock(dataRows ...string) string {
	lines := []string{
		"",
		soundingRule,
		headerRow(),
		unitsRow(),
		soundingRule,
	}
	lines = append(lines, dataRows...)
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// buildPage wraps headers and blocks into a minimal report HTML page.
func buildPage(headers, blocks []string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	n := len(headers)
	if len(blocks) > n {
		n = len(blocks)
	}
	for i := 0; i < n; i++ {
		if i < len(headers) {
			fmt.Fprintf(&b, "<h2>%s</h2>", headers[i])
		}
		if i < len(blocks) {
			fmt.Fprintf(&b, "<pre>%s</pre>", blocks[i])
		}
	}
	b.WriteString("</body></html>")
	return b.String()
}

func f(v float64) *float64 { return &v }

// makeLevels builds a profile's levels from (height, temperature) pairs.
func makeLevels(pairs ...[2]float64) []Level {
	levels := make([]Level, len(pairs))
	for i, p := range pairs {
		levels[i] = Level{Height: f(p[0]), Temperature: f(p[1])}
	}
	return levels
}
