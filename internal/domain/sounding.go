package domain

import (
	"errors"
	"time"
)

// Sentinel errors for the per-report failure modes. All of them are local to
// a single report, profile, or month; callers log and continue.
var (
	// ErrStructureMismatch reports that header and table-block counts in a
	// report page do not reconcile.
	ErrStructureMismatch = errors.New("header/table block count mismatch")

	// ErrNumericCoercion reports a level field that could not be parsed as a
	// number; the whole profile is discarded.
	ErrNumericCoercion = errors.New("numeric coercion failed")

	// ErrInsufficientLevels reports a profile with fewer than two usable data
	// rows.
	ErrInsufficientLevels = errors.New("fewer than 2 data rows")

	// ErrUnexpectedColumns reports a profile whose header row does not match
	// the fixed sounding column schema.
	ErrUnexpectedColumns = errors.New("unexpected column set")

	// ErrNoData reports that retrieval produced no report text for a month.
	ErrNoData = errors.New("no report text retrieved")
)

// Level is one height-indexed row of a sounding. Nil means the quantity was
// not measured at that level; zero is a real measurement.
type Level struct {
	Pressure     *float64 `json:"pres,omitempty"`  // hPa
	Height       *float64 `json:"hght,omitempty"`  // m
	Temperature  *float64 `json:"temp,omitempty"`  // °C
	DewPoint     *float64 `json:"dwpt,omitempty"`  // °C
	RelHumidity  *float64 `json:"relh,omitempty"`  // %
	MixingRatio  *float64 `json:"mixr,omitempty"`  // g/kg
	WindDir      *float64 `json:"drct,omitempty"`  // deg
	WindSpeed    *float64 `json:"sknt,omitempty"`  // m/s, converted from knots
	Theta        *float64 `json:"thta,omitempty"`  // K
	ThetaE       *float64 `json:"thte,omitempty"`  // K
	ThetaV       *float64 `json:"thtv,omitempty"`  // K
}

// RawSounding is one profile's raw table text paired with its observation
// time, as isolated from a report page by SplitReport.
type RawSounding struct {
	Text     string
	Observed time.Time
}

// Profile is an ordered sequence of levels (ascending height) for one
// observation time. Profiles are immutable once parsed.
type Profile struct {
	Observed time.Time
	Levels   []Level
}

// InversionSegment is a maximal contiguous run of at least two levels with
// non-decreasing temperature, plus derived layer metadata.
type InversionSegment struct {
	Levels   []Level `json:"-"`
	DeltaT   float64 `json:"delta_t"`     // °C gained across the layer
	DeltaH   float64 `json:"delta_h"`     // m of depth
	BaseHgt  float64 `json:"base_height"` // m, height of the first level
	BaseTemp float64 `json:"base_temp"`   // °C at the first level
}

// InversionEvent is a retained segment with its categorical tags and owning
// observation time. Immutable after classification.
type InversionEvent struct {
	InversionSegment

	Observed    time.Time `json:"observed_at"`
	Ground      bool      `json:"ground"` // base at or below GroundThreshold
	Night       bool      `json:"night"`  // 00Z observation
	Day         bool      `json:"day"`    // 12Z observation
	ProcessedAt time.Time `json:"processed_at"`
}

// PeriodRow is one 12-hour grid slot of the aggregated period table. Event is
// nil for slots with no detected inversion.
type PeriodRow struct {
	Date  time.Time
	Event *InversionEvent
}

// PeriodDataset is the full-cadence grid for a month range, left-joined with
// all detected events. Subset tables are filtered views sharing the joined
// rows, not copies.
type PeriodDataset struct {
	Rows []PeriodRow
}

// Table is a named view over the period dataset.
type Table struct {
	Name string
	Rows []PeriodRow
}
