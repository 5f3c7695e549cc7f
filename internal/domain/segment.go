package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// GroundThreshold is the base height (m) at or below which an inversion
	// counts as a ground inversion.
	GroundThreshold = 100.0

	// MaxBaseHeight is the base height (m) above which a segment is not
	// reportable.
	MaxBaseHeight = 1000.0
)

// DetectInversions scans a profile for maximal runs of consecutive levels
// with non-decreasing temperature. A run must span at least two levels and
// gain both temperature and height overall. Segments come out in ascending
// height order.
//
// After a run [i, j] the scan resumes at j+1, so the run's last level is
// never re-tested as the start of another run. Levels missing a temperature
// terminate any run.
func DetectInversions(p *Profile) []InversionSegment {
	if p == nil || len(p.Levels) < 2 {
		return nil
	}

	var segments []InversionSegment
	levels := p.Levels

	for i := 0; i < len(levels)-1; {
		if !tempRises(levels[i], levels[i+1]) {
			i++
			continue
		}

		j := i + 1
		for j < len(levels)-1 && tempRises(levels[j], levels[j+1]) {
			j++
		}

		if seg, ok := buildSegment(levels[i : j+1]); ok {
			segments = append(segments, seg)
		}
		i = j + 1
	}
	return segments
}

// tempRises reports whether temperature is non-decreasing from lower to
// upper. A missing temperature on either side breaks the run.
func tempRises(lower, upper Level) bool {
	if lower.Temperature == nil || upper.Temperature == nil {
		return false
	}
	return *upper.Temperature >= *lower.Temperature
}

// buildSegment derives the layer metadata for a candidate run. Runs whose
// endpoints lack height or temperature, or that do not strictly gain both,
// are rejected.
func buildSegment(run []Level) (InversionSegment, bool) {
	first, last := run[0], run[len(run)-1]
	if first.Height == nil || last.Height == nil || first.Temperature == nil || last.Temperature == nil {
		return InversionSegment{}, false
	}

	deltaT := *last.Temperature - *first.Temperature
	deltaH := *last.Height - *first.Height
	if deltaT <= 0 || deltaH <= 0 {
		return InversionSegment{}, false
	}

	levels := make([]Level, len(run))
	copy(levels, run)

	return InversionSegment{
		Levels:   levels,
		DeltaT:   deltaT,
		DeltaH:   deltaH,
		BaseHgt:  *first.Height,
		BaseTemp: *first.Temperature,
	}, true
}

// ClassifyEvents narrows candidate segments to reportable events and tags
// them. Segments based above MaxBaseHeight are dropped, then duplicates
// (identical level content) are removed. The caller treats an empty result
// as a failed profile.
func ClassifyEvents(segments []InversionSegment, observed time.Time) []InversionEvent {
	seen := make(map[string]struct{}, len(segments))
	events := make([]InversionEvent, 0, len(segments))

	for _, seg := range segments {
		if seg.BaseHgt > MaxBaseHeight {
			continue
		}
		key := segmentKey(seg)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		events = append(events, InversionEvent{
			InversionSegment: seg,
			Observed:         observed,
			Ground:           seg.BaseHgt <= GroundThreshold,
			Night:            observed.Hour() == 0,
			Day:              observed.Hour() == 12,
			ProcessedAt:      clock.Now().UTC(),
		})
	}

	if len(events) == 0 {
		return nil
	}
	return events
}

// segmentKey fingerprints a segment by its level content for deduplication.
func segmentKey(seg InversionSegment) string {
	var b strings.Builder
	for _, lvl := range seg.Levels {
		for _, f := range []*float64{
			lvl.Pressure, lvl.Height, lvl.Temperature, lvl.DewPoint,
			lvl.RelHumidity, lvl.MixingRatio, lvl.WindDir, lvl.WindSpeed,
			lvl.Theta, lvl.ThetaE, lvl.ThetaV,
		} {
			if f == nil {
				b.WriteString("_,")
				continue
			}
			fmt.Fprintf(&b, "%g,", *f)
		}
		b.WriteByte(';')
	}
	return b.String()
}
