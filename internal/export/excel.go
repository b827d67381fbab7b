// Package export writes search reports as xlsx workbooks and serves them back
// for download. Files live under a single configured directory, keyed by the
// sanitized query string; regenerating a search overwrites the previous file.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vigil/internal/screening/models"
	"vigil/pkg/sentinel"
)

const sheetName = "Search Result"

var headers = []string{
	"Search Input", "Results", "Positions", "Date Of Birth",
	"Nationality", "Match Rates (%)", "View Links",
}

var columnWidths = []float64{35, 40, 68, 12, 20, 15, 45}

// ExcelWriter renders export rows into a styled workbook on disk.
type ExcelWriter struct {
	dir    string
	logger *slog.Logger
}

// NewExcelWriter creates a writer rooted at dir, creating it if needed.
func NewExcelWriter(dir string, logger *slog.Logger) (*ExcelWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &ExcelWriter{dir: dir, logger: logger}, nil
}

// Write renders rows into filename inside the export directory, overwriting
// any existing file of the same name.
func (w *ExcelWriter) Write(ctx context.Context, rows []models.ExportRow, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11, Family: "Calibri"}})
	if err != nil {
		return fmt.Errorf("build header style: %w", err)
	}
	noMatchStyle, err := w.rowStyle(f, "E2EFDA", "33B050")
	if err != nil {
		return err
	}
	alertStyle, err := w.rowStyle(f, "FCE4D6", "FF0056")
	if err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		line := i + 2
		values := []any{row.SearchInput, row.Result, row.Positions, row.DOB, row.Nationality, row.MatchRate, row.Link}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, line)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
		}

		var styleID int
		switch row.Style {
		case models.StyleNoMatch:
			styleID = noMatchStyle
		case models.StyleSummary, models.StyleMatch:
			styleID = alertStyle
		}
		start, _ := excelize.CoordinatesToCellName(2, line)
		end, _ := excelize.CoordinatesToCellName(6, line)
		if err := f.SetCellStyle(sheetName, start, end, styleID); err != nil {
			return fmt.Errorf("style row %d: %w", i, err)
		}
	}

	path := filepath.Join(w.dir, filepath.Base(filename))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Debug("export written", "file", path, "rows", len(rows))
	return nil
}

func (w *ExcelWriter) rowStyle(f *excelize.File, fill, font string) (int, error) {
	id, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
		Font: &excelize.Font{Color: font},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
		},
	})
	if err != nil {
		return 0, fmt.Errorf("build row style: %w", err)
	}
	return id, nil
}

// Open streams a previously generated export file. Returns
// sentinel.ErrNotFound when no file exists for the token.
func (w *ExcelWriter) Open(filename string) (io.ReadCloser, error) {
	path := filepath.Join(w.dir, filepath.Base(filename))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("open export file: %w", err)
	}
	return f, nil
}
