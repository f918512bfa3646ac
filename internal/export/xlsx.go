// Package export serializes a ResultTable to an .xlsx workbook.
package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/harrison/txtmerge/internal/filelock"
	"github.com/harrison/txtmerge/internal/models"
	"github.com/xuri/excelize/v2"
)

// Output naming defaults
const (
	DefaultDirName    = "processing-results"
	DefaultFilePrefix = "merged-data"
	DefaultSheetName  = "Sheet1"
	TimestampLayout   = "20060102_150405"
)

// OutputPath builds "<root>/<dirName>/<prefix>_<YYYYMMDD_HHMMSS>.xlsx"
func OutputPath(root, dirName, prefix string, now time.Time) string {
	if dirName == "" {
		dirName = DefaultDirName
	}
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	name := fmt.Sprintf("%s_%s.xlsx", prefix, now.Format(TimestampLayout))
	return filepath.Join(root, dirName, name)
}

// XLSXExporter writes result tables as single-sheet workbooks
type XLSXExporter struct {
	sheet   string
	headers []string
}

// NewXLSXExporter creates an exporter. headers overrides the column labels
// (e.g. localized names) and must have one entry per column when non-empty.
func NewXLSXExporter(sheet string, headers []string) (*XLSXExporter, error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	if len(headers) == 0 {
		headers = models.ColumnNames()
	}
	if len(headers) != len(models.ColumnNames()) {
		return nil, fmt.Errorf("expected %d header labels, got %d", len(models.ColumnNames()), len(headers))
	}
	return &XLSXExporter{sheet: sheet, headers: headers}, nil
}

// Headers returns the column labels written in the first row
func (e *XLSXExporter) Headers() []string {
	out := make([]string, len(e.headers))
	copy(out, e.headers)
	return out
}

// Export writes table to path: one header row followed by one row per record
// in table order. The output directory is created if needed and the file is
// replaced atomically.
func (e *XLSXExporter) Export(table models.ResultTable, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if e.sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, e.sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := make([]interface{}, len(e.headers))
	for i, h := range e.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(e.sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	if err := e.styleHeader(f); err != nil {
		return err
	}

	for i, row := range table.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(e.sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to serialize workbook: %w", err)
	}

	if err := filelock.LockAndWrite(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// styleHeader bolds the header row and widens the text columns
func (e *XLSXExporter) styleHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(e.headers), 1)
	if err != nil {
		return fmt.Errorf("failed to address header: %w", err)
	}
	if err := f.SetCellStyle(e.sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := f.SetColWidth(e.sheet, "A", "B", 24); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(e.sheet, "C", "C", 60); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	return nil
}
