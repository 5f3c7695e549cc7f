package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// KnotsToMS converts the archive's wind speed unit to m/s.
const KnotsToMS = 0.51444444444444

// fieldWidth is the fixed column width of the sounding table.
const fieldWidth = 7

// Columns is the sounding table schema, in column order. The parsed header
// row must match it exactly; dynamic column discovery is deliberately not
// supported.
var Columns = []string{"PRES", "HGHT", "TEMP", "DWPT", "RELH", "MIXR", "DRCT", "SKNT", "THTA", "THTE", "THTV"}

// ParseProfile converts one raw fixed-width sounding block into a Profile.
//
// The first and last lines are framing and discarded; lines containing "--"
// are rules and skipped. The first retained row must match Columns, the row
// after it carries units and is dropped, everything after that is data.
// Blank cells become nil; any non-numeric cell fails the whole profile with
// ErrNumericCoercion. Wind speed is converted to m/s during coercion. Blocks
// with fewer than two data rows yield ErrInsufficientLevels.
func ParseProfile(raw string, observed time.Time) (*Profile, error) {
	rows := sliceRows(raw)
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %d rows", ErrInsufficientLevels, len(rows))
	}

	if err := validateHeader(rows[0]); err != nil {
		return nil, err
	}

	data := rows[2:] // rows[1] is the units row
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: %d data rows", ErrInsufficientLevels, len(data))
	}

	levels := make([]Level, 0, len(data))
	for i, row := range data {
		lvl, err := parseLevel(row)
		if err != nil {
			return nil, fmt.Errorf("data row %d: %w", i, err)
		}
		levels = append(levels, lvl)
	}

	return &Profile{Observed: observed, Levels: levels}, nil
}

// sliceRows drops the framing lines and rule lines, then slices each
// remaining line into trimmed fixed-width fields.
func sliceRows(raw string) [][]string {
	lines := strings.Split(raw, "\n")
	if len(lines) < 3 {
		return nil
	}
	lines = lines[1 : len(lines)-1]

	var rows [][]string
	for _, line := range lines {
		if strings.Contains(line, "--") {
			continue
		}
		var row []string
		for i := 0; i < len(line); i += fieldWidth {
			end := i + fieldWidth
			if end > len(line) {
				end = len(line)
			}
			row = append(row, strings.TrimSpace(line[i:end]))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

func validateHeader(header []string) error {
	if len(header) != len(Columns) {
		return fmt.Errorf("%w: %d columns", ErrUnexpectedColumns, len(header))
	}
	for i, name := range header {
		if name != Columns[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrUnexpectedColumns, i, name, Columns[i])
		}
	}
	return nil
}

// parseLevel coerces one data row. Cells beyond the row's length stay nil;
// short rows are normal near the top of a sounding where only pressure and
// height are reported.
func parseLevel(row []string) (Level, error) {
	var lvl Level
	dst := [...]**float64{
		&lvl.Pressure, &lvl.Height, &lvl.Temperature, &lvl.DewPoint,
		&lvl.RelHumidity, &lvl.MixingRatio, &lvl.WindDir, &lvl.WindSpeed,
		&lvl.Theta, &lvl.ThetaE, &lvl.ThetaV,
	}

	for i, cell := range row {
		if i >= len(dst) || cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Level{}, fmt.Errorf("%w: column %s value %q", ErrNumericCoercion, Columns[i], cell)
		}
		if Columns[i] == "SKNT" {
			v = math.Round(v*KnotsToMS*100) / 100
		}
		*dst[i] = &v
	}
	return lvl, nil
}
