// Command validate performs integrity checks over cached sounding report
// pages: page structure, fixed-width parsing, inversion detection invariants,
// and event classification rules. With -db it additionally cross-checks the
// sqlite archive against the events re-detected from the cached pages. It is
// the offline sanity check to run after downloading or regenerating a season
// of report pages.
//
// Usage:
//
//	go run ./cmd/validate -cache-dir data
//	go run ./cmd/validate -cache-dir data -station 16622 -db archive.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/soundinglab/inversion-etl/internal/adapter/sqlitestore"
	"github.com/soundinglab/inversion-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

var cacheFileRe = regexp.MustCompile(`^response_(\d{4})_(\d{2})_(\w+)\.html$`)

func main() {
	cacheDir := flag.String("cache-dir", "data", "page cache directory")
	station := flag.String("station", "", "restrict checks to one station (optional)")
	dbPath := flag.String("db", "", "sqlite archive to cross-check (optional)")
	flag.Parse()

	if code := run(*cacheDir, *station, *dbPath); code != 0 {
		os.Exit(code)
	}
}

func run(cacheDir, station, dbPath string) int {
	pages, err := loadPages(cacheDir, station)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load cached pages: %v\n", err)
		return 1
	}
	if len(pages) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no cached pages in %s\n", cacheDir)
		return 1
	}

	fmt.Println("=== Sounding Cache Integrity Validation ===")
	fmt.Println()

	structure := &phase{name: "Phase 1: Page Structure (split)"}
	parsing := &phase{name: "Phase 2: Profile Parsing (fixed-width)"}
	detection := &phase{name: "Phase 3: Detection Invariants"}
	classification := &phase{name: "Phase 4: Classification Rules"}

	var totalSoundings, totalProfiles, totalEvents int
	detected := map[string][]domain.InversionEvent{}
	for _, pg := range pages {
		soundings := validateStructure(structure, pg)
		totalSoundings += len(soundings)

		profiles := validateParsing(parsing, pg.name, soundings)
		totalProfiles += len(profiles)

		for _, profile := range profiles {
			segments := validateDetection(detection, pg.name, profile)
			events := domain.ClassifyEvents(segments, profile.Observed)
			validateClassification(classification, pg.name, profile, events)
			detected[pg.station] = append(detected[pg.station], events...)
			totalEvents += len(events)
		}
	}

	phases := []*phase{structure, parsing, detection, classification}
	if dbPath != "" {
		phases = append(phases, validateArchive(dbPath, detected))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Pages: %d, soundings: %d, profiles: %d, events: %d\n",
		len(pages), totalSoundings, totalProfiles, totalEvents)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// cachedPage is one report page read from the cache directory.
type cachedPage struct {
	name    string
	station string
	content string
}

func loadPages(dir, station string) ([]cachedPage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var pages []cachedPage
	for _, e := range entries {
		m := cacheFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if station != "" && m[3] != station {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		pages = append(pages, cachedPage{name: e.Name(), station: m[3], content: string(data)})
	}
	return pages, nil
}

// ── Phase 1: Page Structure ──
// Every cached page must split into header/table pairs with usable timestamps.

func validateStructure(p *phase, pg cachedPage) []domain.RawSounding {
	soundings, err := domain.SplitReport(pg.content)
	if err != nil {
		p.errorf("%s: %v", pg.name, err)
		return nil
	}
	if len(soundings) == 0 {
		p.errorf("%s: page split to zero soundings", pg.name)
		return nil
	}

	for i, snd := range soundings {
		if snd.Observed.IsZero() {
			p.errorf("%s: sounding %d has zero timestamp", pg.name, i)
		}
		if h := snd.Observed.Hour(); h != 0 && h != 12 {
			p.errorf("%s: sounding %d observed at %02dZ (expected 00Z or 12Z)", pg.name, i, h)
		}
	}
	return soundings
}

// ── Phase 2: Profile Parsing ──
// Blocks must parse under the fixed column schema; levels must be ordered by
// height and wind speeds must be plausible after the knots conversion.

func validateParsing(p *phase, page string, soundings []domain.RawSounding) []*domain.Profile {
	var profiles []*domain.Profile
	for _, snd := range soundings {
		profile, err := domain.ParseProfile(snd.Text, snd.Observed)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientLevels) {
				continue // short blocks are expected, not an integrity failure
			}
			p.errorf("%s %s: %v", page, snd.Observed.Format(time.RFC3339), err)
			continue
		}

		var prevHeight *float64
		for i, lvl := range profile.Levels {
			if lvl.Height != nil && prevHeight != nil && *lvl.Height < *prevHeight {
				p.errorf("%s %s: level %d height %.0fm below previous %.0fm",
					page, snd.Observed.Format(time.RFC3339), i, *lvl.Height, *prevHeight)
			}
			if lvl.Height != nil {
				prevHeight = lvl.Height
			}
			if lvl.WindSpeed != nil && (*lvl.WindSpeed < 0 || *lvl.WindSpeed > 130) {
				p.errorf("%s %s: level %d wind speed %.2f m/s out of range",
					page, snd.Observed.Format(time.RFC3339), i, *lvl.WindSpeed)
			}
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

// ── Phase 3: Detection Invariants ──
// Each segment must be a genuine warming layer inside its profile.

func validateDetection(p *phase, page string, profile *domain.Profile) []domain.InversionSegment {
	segments := domain.DetectInversions(profile)
	ts := profile.Observed.Format(time.RFC3339)

	for i, seg := range segments {
		if seg.DeltaT <= 0 {
			p.errorf("%s %s: segment %d has ΔT %.2f <= 0", page, ts, i, seg.DeltaT)
		}
		if seg.DeltaH <= 0 {
			p.errorf("%s %s: segment %d has ΔH %.2f <= 0", page, ts, i, seg.DeltaH)
		}
		if len(seg.Levels) < 2 {
			p.errorf("%s %s: segment %d spans %d levels", page, ts, i, len(seg.Levels))
			continue
		}

		var prevTemp *float64
		for j, lvl := range seg.Levels {
			if lvl.Temperature == nil {
				continue
			}
			if prevTemp != nil && *lvl.Temperature < *prevTemp {
				p.errorf("%s %s: segment %d temperature falls at level %d", page, ts, i, j)
			}
			prevTemp = lvl.Temperature
		}
	}
	return segments
}

// ── Phase 4: Classification Rules ──
// Ground/Night/Day tags must follow the base height and observation hour.

func validateClassification(p *phase, page string, profile *domain.Profile, events []domain.InversionEvent) {
	ts := profile.Observed.Format(time.RFC3339)

	for i, e := range events {
		if e.BaseHgt > domain.MaxBaseHeight {
			p.errorf("%s %s: event %d base %.0fm above the %gm limit", page, ts, i, e.BaseHgt, domain.MaxBaseHeight)
		}
		if got, want := e.Ground, e.BaseHgt <= domain.GroundThreshold; got != want {
			p.errorf("%s %s: event %d ground=%t with base %.0fm", page, ts, i, got, e.BaseHgt)
		}
		if e.Night && e.Day {
			p.errorf("%s %s: event %d tagged both night and day", page, ts, i)
		}
		switch profile.Observed.Hour() {
		case 0:
			if !e.Night {
				p.errorf("%s %s: event %d from 00Z not tagged night", page, ts, i)
			}
		case 12:
			if !e.Day {
				p.errorf("%s %s: event %d from 12Z not tagged day", page, ts, i)
			}
		}
		if e.ProcessedAt.IsZero() {
			p.errorf("%s %s: event %d processed_at is zero", page, ts, i)
		}
	}
}

// ── Phase 5: Archive Consistency ──
// Every event re-detected from the cached pages must be present in the sqlite
// archive with matching metadata.

func validateArchive(dbPath string, detected map[string][]domain.InversionEvent) *phase {
	p := &phase{name: "Phase 5: Archive Consistency (sqlite)"}

	store, err := sqlitestore.Open(dbPath)
	if err != nil {
		p.errorf("open archive: %v", err)
		return p
	}
	defer store.Close()

	ctx := context.Background()
	for station, events := range detected {
		if len(events) == 0 {
			continue
		}

		from, to := events[0].Observed, events[0].Observed
		for _, e := range events[1:] {
			if e.Observed.Before(from) {
				from = e.Observed
			}
			if e.Observed.After(to) {
				to = e.Observed
			}
		}

		archived, err := store.EventsBetween(ctx, station, from, to.Add(time.Second))
		if err != nil {
			p.errorf("station %s: query archive: %v", station, err)
			continue
		}

		index := map[string]int{}
		for _, a := range archived {
			index[archiveKey(station, a)]++
		}
		for _, e := range events {
			key := archiveKey(station, e)
			if index[key] == 0 {
				p.errorf("station %s: event at %s (ΔT %.2f, base %.0fm) missing from archive",
					station, e.Observed.Format(time.RFC3339), e.DeltaT, e.BaseHgt)
				continue
			}
			index[key]--
		}
	}
	return p
}

func archiveKey(station string, e domain.InversionEvent) string {
	return fmt.Sprintf("%s|%s|%.2f|%.2f|%.2f|%t|%t|%t",
		station, e.Observed.UTC().Format(time.RFC3339),
		e.DeltaT, e.DeltaH, e.BaseHgt, e.Ground, e.Night, e.Day)
}
