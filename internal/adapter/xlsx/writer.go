// Package xlsx persists inversion events and period datasets as Excel
// workbooks, one file per profile plus one combined file per run.
package xlsx

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/soundinglab/inversion-etl/internal/domain"
)

// CombinedFileName is the name of the workbook holding all subset sheets.
const CombinedFileName = "DATA.xlsx"

var eventColumns = []string{"date", "ΔT", "ΔH", "HL", "TL", "Ground", "Night", "Day"}

// Writer implements pipeline.EventWriter and pipeline.DatasetWriter on top
// of xlsx workbooks in a fixed output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a workbook writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteProfileEvents writes one profile's events to DATA_<timestamp>.xlsx
// and returns the file name.
func (w *Writer) WriteProfileEvents(observed time.Time, events []domain.InversionEvent) (string, error) {
	name := fmt.Sprintf("DATA_%s.xlsx", observed.Format("20060102_1504"))

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "inversion_data"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeHeader(f, sheet); err != nil {
		return "", err
	}
	for i, e := range events {
		if err := writeEventRow(f, sheet, i+2, e); err != nil {
			return "", err
		}
	}

	if err := w.save(f, name); err != nil {
		return "", err
	}
	w.logger.Info("profile workbook written", "file", name, "events", len(events))
	return name, nil
}

// WriteDataset writes the combined workbook with one sheet per category
// subset. Grid rows without an event carry only the date column.
func (w *Writer) WriteDataset(ds domain.PeriodDataset) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range ds.Tables() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", table.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(table.Name); err != nil {
				return fmt.Errorf("create sheet %s: %w", table.Name, err)
			}
		}

		if err := writeHeader(f, table.Name); err != nil {
			return err
		}
		for j, row := range table.Rows {
			if err := writePeriodRow(f, table.Name, j+2, row); err != nil {
				return err
			}
		}
	}

	if err := w.save(f, CombinedFileName); err != nil {
		return err
	}
	w.logger.Info("combined workbook written", "file", CombinedFileName)
	return nil
}

func (w *Writer) save(f *excelize.File, name string) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := f.SaveAs(filepath.Join(w.dir, name)); err != nil {
		return fmt.Errorf("save workbook %s: %w", name, err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string) error {
	for i, col := range eventColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("write header %s: %w", sheet, err)
		}
	}
	return nil
}

func writeEventRow(f *excelize.File, sheet string, row int, e domain.InversionEvent) error {
	values := []any{
		e.Observed.Format("2006-01-02 15:04:05"),
		e.DeltaT,
		e.DeltaH,
		e.BaseHgt,
		e.BaseTemp,
		boolToInt(e.Ground),
		boolToInt(e.Night),
		boolToInt(e.Day),
	}
	return writeValues(f, sheet, row, values)
}

func writePeriodRow(f *excelize.File, sheet string, row int, r domain.PeriodRow) error {
	if r.Event == nil {
		values := []any{r.Date.Format("2006-01-02 15:04:05"), nil, nil, nil, nil, nil, nil, nil}
		return writeValues(f, sheet, row, values)
	}
	return writeEventRow(f, sheet, row, *r.Event)
}

func writeValues(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("write row %d in %s: %w", row, sheet, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
