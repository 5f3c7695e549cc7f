// Command genmock generates a synthetic monthly sounding report page in the
// archive's HTML layout and writes it into the local page cache, so the main
// command can run offline against known data. It runs the generated page
// through the actual domain packages and prints detection stats for updating
// test assertions.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -cache-dir data \
//	  -year 2021 -month 1 -station 16622
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/soundinglab/inversion-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cacheDir := flag.String("cache-dir", "data", "page cache directory")
	year := flag.Int("year", 2021, "year of the generated report")
	month := flag.Int("month", 1, "month of the generated report (1-12)")
	station := flag.String("station", "16622", "WMO station number")
	seed := flag.Int64("seed", 1, "random seed for reproducible profiles")
	flag.Parse()

	if *month < 1 || *month > 12 {
		flag.Usage()
		return fmt.Errorf("invalid -month %d", *month)
	}

	// Fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(*year, time.Month(*month), 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	page := generatePage(*year, time.Month(*month), *station, rand.New(rand.NewSource(*seed)))

	if err := os.MkdirAll(*cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	path := filepath.Join(*cacheDir, fmt.Sprintf("response_%d_%02d_%s.html", *year, *month, *station))
	if err := os.WriteFile(path, []byte(page), 0o600); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	log.Printf("wrote mock report: %s", path)

	return printStats(page)
}

const rule = "-----------------------------------------------------------------------------"

var columns = []string{"PRES", "HGHT", "TEMP", "DWPT", "RELH", "MIXR", "DRCT", "SKNT", "THTA", "THTE", "THTV"}
var units = []string{"hPa", "m", "C", "C", "%", "g/kg", "deg", "knot", "K", "K", "K"}

// generatePage builds one month of twice-daily soundings. Roughly a third of
// the night profiles and a tenth of the day profiles carry a low-level
// inversion; the rest cool monotonically with height.
func generatePage(year int, month time.Month, station string, rng *rand.Rand) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Upper air soundings</title></head><body>\n")

	for day := 1; day <= domain.DaysInMonth(year, month); day++ {
		for _, hour := range []int{0, 12} {
			inversion := false
			switch hour {
			case 0:
				inversion = rng.Float64() < 0.33
			case 12:
				inversion = rng.Float64() < 0.10
			}
			header := fmt.Sprintf("%s Observations at %02dZ %02d %s %d",
				station, hour, day, month.String()[:3], year)
			fmt.Fprintf(&b, "<h2>%s</h2>\n<pre>%s</pre>\n",
				header, generateBlock(rng, inversion))
		}
	}

	b.WriteString("</body></html>\n")
	return b.String()
}

// generateBlock renders one fixed-width sounding table. With inversion set,
// temperature rises across the second and third levels before resuming its
// fall.
func generateBlock(rng *rand.Rand, inversion bool) string {
	var lines []string
	lines = append(lines, "", rule, formatRow(columns), formatRow(units), rule)

	height := 40.0 + rng.Float64()*60
	temp := -8.0 + rng.Float64()*16
	pres := 1000.0

	for i := 0; i < 12; i++ {
		sknt := fmt.Sprintf("%.0f", rng.Float64()*30)
		row := []string{
			fmt.Sprintf("%.1f", pres),
			fmt.Sprintf("%.0f", height),
			fmt.Sprintf("%.1f", temp),
			"", "", "",
			fmt.Sprintf("%.0f", rng.Float64()*360),
			sknt,
			"", "", "",
		}
		lines = append(lines, formatRow(row))

		pres -= 8 + rng.Float64()*10
		height += 60 + rng.Float64()*80
		if inversion && (i == 0 || i == 1) {
			temp += 1 + rng.Float64()*2
		} else {
			temp -= 0.5 + rng.Float64()*1.5
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func formatRow(cells []string) string {
	var b strings.Builder
	for _, c := range cells {
		fmt.Fprintf(&b, "%7s", c)
	}
	return b.String()
}

// printStats runs the generated page through split, parse, and detection and
// reports the counts tests would assert on.
func printStats(page string) error {
	soundings, err := domain.SplitReport(page)
	if err != nil {
		return fmt.Errorf("split generated page: %w", err)
	}

	var profiles, withEvents, ground, night, day int
	var segments int
	for _, snd := range soundings {
		profile, err := domain.ParseProfile(snd.Text, snd.Observed)
		if err != nil {
			return fmt.Errorf("parse generated profile at %s: %w", snd.Observed, err)
		}
		profiles++

		segs := domain.DetectInversions(profile)
		segments += len(segs)

		events := domain.ClassifyEvents(segs, profile.Observed)
		if len(events) == 0 {
			continue
		}
		withEvents++
		for _, e := range events {
			if e.Ground {
				ground++
			}
			if e.Night {
				night++
			}
			if e.Day {
				day++
			}
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Soundings: %d\n", len(soundings))
	fmt.Printf("Profiles parsed: %d\n", profiles)
	fmt.Printf("Profiles with events: %d\n", withEvents)
	fmt.Printf("Segments detected: %d\n", segments)
	fmt.Printf("Events: ground=%d, night=%d, day=%d\n", ground, night, day)
	return nil
}
