package domain

import (
	"fmt"
	"time"
)

// GridCadence is the spacing of the aggregation grid; the archive reports at
// the 00Z and 12Z synoptic hours.
const GridCadence = 12 * time.Hour

// BuildPeriodDataset reindexes events onto the full 12-hour grid for a
// contiguous month range within one year. The grid runs from the first day
// of the start month at 00:00 through the last day of the end month at
// 12:00, leap-year aware, so every calendar day contributes two slots.
//
// Events join by exact timestamp; slots with no event keep a nil Event and
// are retained. When several events share a timestamp the slot emits one row
// per event, so the row count equals the slot count whenever event
// timestamps are unique.
func BuildPeriodDataset(events []InversionEvent, year int, startMonth, endMonth time.Month) (PeriodDataset, error) {
	if startMonth < time.January || endMonth > time.December || startMonth > endMonth {
		return PeriodDataset{}, fmt.Errorf("invalid month range %d-%d", startMonth, endMonth)
	}

	byTime := make(map[time.Time][]*InversionEvent, len(events))
	for i := range events {
		ts := events[i].Observed.UTC()
		byTime[ts] = append(byTime[ts], &events[i])
	}

	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, endMonth, DaysInMonth(year, endMonth), 12, 0, 0, 0, time.UTC)

	var rows []PeriodRow
	for t := start; !t.After(end); t = t.Add(GridCadence) {
		matched := byTime[t]
		if len(matched) == 0 {
			rows = append(rows, PeriodRow{Date: t})
			continue
		}
		for _, ev := range matched {
			rows = append(rows, PeriodRow{Date: t, Event: ev})
		}
	}

	return PeriodDataset{Rows: rows}, nil
}

// DaysInMonth returns the true number of calendar days in a month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Tables returns the nine named views of the dataset: the full joined table
// plus the eight tag-filtered subsets. Rows without an event appear only in
// the full table. The sheet names match the historical combined workbook.
func (d PeriodDataset) Tables() []Table {
	filters := []struct {
		name string
		keep func(*InversionEvent) bool
	}{
		{"df_full", nil},
		{"df_ground", func(e *InversionEvent) bool { return e.Ground }},
		{"df_not_ground", func(e *InversionEvent) bool { return !e.Ground }},
		{"df_day", func(e *InversionEvent) bool { return e.Day }},
		{"df_night", func(e *InversionEvent) bool { return e.Night }},
		{"df_ground_night", func(e *InversionEvent) bool { return e.Ground && e.Night }},
		{"df_ground_day", func(e *InversionEvent) bool { return e.Ground && e.Day }},
		{"df_not_ground_night", func(e *InversionEvent) bool { return !e.Ground && e.Night }},
		{"df_not_ground_day", func(e *InversionEvent) bool { return !e.Ground && e.Day }},
	}

	tables := make([]Table, 0, len(filters))
	for _, f := range filters {
		if f.keep == nil {
			tables = append(tables, Table{Name: f.name, Rows: d.Rows})
			continue
		}
		var rows []PeriodRow
		for _, row := range d.Rows {
			if row.Event != nil && f.keep(row.Event) {
				rows = append(rows, row)
			}
		}
		tables = append(tables, Table{Name: f.name, Rows: rows})
	}
	return tables
}
