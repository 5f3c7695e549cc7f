package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soundinglab/inversion-etl/internal/domain"
	"github.com/soundinglab/inversion-etl/internal/observability"
)

// Fetcher retrieves one month's raw report page for a station.
type Fetcher interface {
	Fetch(ctx context.Context, year int, month time.Month, station string) (string, error)
}

// EventWriter persists one profile's classified events; it returns the name
// of the artifact it produced.
type EventWriter interface {
	WriteProfileEvents(observed time.Time, events []domain.InversionEvent) (string, error)
}

// DatasetWriter persists the aggregated period dataset.
type DatasetWriter interface {
	WriteDataset(ds domain.PeriodDataset) error
}

// Publisher delivers classified events to a downstream sink. Optional.
type Publisher interface {
	Publish(ctx context.Context, station string, events []domain.InversionEvent) error
}

// Archiver stores classified events for later querying. Optional.
type Archiver interface {
	InsertEvents(ctx context.Context, station string, events []domain.InversionEvent) error
}

// Params are the run-level parameters collected by the front end.
type Params struct {
	Year       int
	StartMonth time.Month
	EndMonth   time.Month
	Station    string
}

func (p Params) validate() error {
	if p.StartMonth < time.January || p.EndMonth > time.December || p.StartMonth > p.EndMonth {
		return fmt.Errorf("invalid month range %d-%d", p.StartMonth, p.EndMonth)
	}
	if p.Station == "" {
		return errors.New("station is required")
	}
	if p.Year < 1900 || p.Year > 2200 {
		return fmt.Errorf("implausible year %d", p.Year)
	}
	return nil
}

// Summary is the user-visible result of a run.
type Summary struct {
	ProfilesProcessed int
	ProfilesFailed    int
	MonthsSkipped     int
	Events            int
	Files             []string
}

// Pipeline orchestrates the fetch-split-parse-classify-aggregate run.
type Pipeline struct {
	fetcher   Fetcher
	events    EventWriter
	dataset   DatasetWriter
	publisher Publisher // nil disables publishing
	archiver  Archiver  // nil disables archiving
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	last      atomic.Pointer[Summary]
}

// New creates a Pipeline. Publisher and archiver may be nil.
func New(f Fetcher, ew EventWriter, dw DatasetWriter, pub Publisher, arch Archiver, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		events:    ew,
		dataset:   dw,
		publisher: pub,
		archiver:  arch,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the run has processed at least one profile.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no profile processed yet")
	}
	return nil
}

// LastSummary returns the summary of the most recently completed run, if any.
func (p *Pipeline) LastSummary() (Summary, bool) {
	s := p.last.Load()
	if s == nil {
		return Summary{}, false
	}
	return *s, true
}

// Run processes every month of the range in chronological order. Failures
// are local: a month with no data or a profile that cannot be parsed is
// counted and skipped, never fatal. The combined dataset is written even
// when zero events were found, so the caller always gets a complete grid.
func (p *Pipeline) Run(ctx context.Context, params Params) (Summary, error) {
	if err := params.validate(); err != nil {
		return Summary{}, err
	}

	p.logger.Info("run started",
		"station", params.Station,
		"year", params.Year,
		"start_month", int(params.StartMonth),
		"end_month", int(params.EndMonth),
	)
	p.metrics.RunActive.Set(1)
	defer p.metrics.RunActive.Set(0)

	var summary Summary
	var allEvents []domain.InversionEvent

	for month := params.StartMonth; month <= params.EndMonth; month++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		events := p.processMonth(ctx, params, month, &summary)
		allEvents = append(allEvents, events...)
	}

	ds, err := domain.BuildPeriodDataset(allEvents, params.Year, params.StartMonth, params.EndMonth)
	if err != nil {
		return summary, fmt.Errorf("build period dataset: %w", err)
	}
	summary.Events = len(allEvents)

	if err := p.dataset.WriteDataset(ds); err != nil {
		return summary, fmt.Errorf("write combined dataset: %w", err)
	}

	p.logger.Info("run finished",
		"processed", summary.ProfilesProcessed,
		"failed", summary.ProfilesFailed,
		"months_skipped", summary.MonthsSkipped,
		"events", summary.Events,
	)
	p.last.Store(&summary)
	return summary, nil
}

// processMonth fetches and works through one month's report. Returns the
// events retained from all of its profiles.
func (p *Pipeline) processMonth(ctx context.Context, params Params, month time.Month, summary *Summary) []domain.InversionEvent {
	start := time.Now()
	defer func() { p.metrics.MonthDuration.Observe(time.Since(start).Seconds()) }()

	page, err := p.fetcher.Fetch(ctx, params.Year, month, params.Station)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			p.logger.Info("no report for month, skipping", "month", int(month))
		} else {
			p.logger.Error("fetch failed, skipping month", "month", int(month), "error", err)
		}
		p.metrics.MonthsSkipped.Inc()
		summary.MonthsSkipped++
		return nil
	}
	p.metrics.ReportsFetched.Inc()

	soundings, err := domain.SplitReport(page)
	if err != nil {
		p.logger.Error("report structure invalid, skipping month", "month", int(month), "error", err)
		p.metrics.MonthsSkipped.Inc()
		summary.MonthsSkipped++
		return nil
	}

	var monthEvents []domain.InversionEvent
	for _, snd := range soundings {
		events := p.processProfile(ctx, params.Station, snd, summary)
		monthEvents = append(monthEvents, events...)
	}
	return monthEvents
}

// processProfile runs one sounding through parse, segment, and classify. A
// profile counts as processed only when it yields at least one event.
func (p *Pipeline) processProfile(ctx context.Context, station string, snd domain.RawSounding, summary *Summary) []domain.InversionEvent {
	profile, err := domain.ParseProfile(snd.Text, snd.Observed)
	if err != nil {
		p.logger.Warn("profile discarded", "observed", snd.Observed, "error", err)
		p.metrics.ProfilesFailed.Inc()
		summary.ProfilesFailed++
		return nil
	}
	p.metrics.ProfileLevels.Observe(float64(len(profile.Levels)))

	segments := domain.DetectInversions(profile)
	p.metrics.SegmentsDetected.Add(float64(len(segments)))

	events := domain.ClassifyEvents(segments, profile.Observed)
	if len(events) == 0 {
		p.logger.Warn("no reportable inversion", "observed", snd.Observed)
		p.metrics.ProfilesFailed.Inc()
		summary.ProfilesFailed++
		return nil
	}

	p.metrics.ProfilesProcessed.Inc()
	summary.ProfilesProcessed++
	p.ready.Store(true)

	if file, err := p.events.WriteProfileEvents(profile.Observed, events); err != nil {
		p.logger.Warn("event file not written", "observed", snd.Observed, "error", err)
	} else {
		summary.Files = append(summary.Files, file)
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, station, events); err != nil {
			p.logger.Warn("publish failed", "observed", snd.Observed, "error", err)
		} else {
			p.metrics.EventsPublished.Add(float64(len(events)))
		}
	}

	if p.archiver != nil {
		if err := p.archiver.InsertEvents(ctx, station, events); err != nil {
			p.logger.Warn("archive insert failed", "observed", snd.Observed, "error", err)
		} else {
			p.metrics.EventsArchived.Add(float64(len(events)))
		}
	}

	return events
}
