// Package export writes a dataset as a downloadable table.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"aqdash/internal/dataset"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	JSON Format = "json"
)

// SheetName is the worksheet holding the table in XLSX output.
const SheetName = "air_quality"

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, XLSX, JSON:
		return f, nil
	}
	return "", fmt.Errorf("%w %q (allowed: csv, xlsx, json)", ErrUnknownFormat, s)
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case JSON:
		return "application/json; charset=utf-8"
	}
	return "application/octet-stream"
}

func Write(w io.Writer, ds dataset.Dataset, f Format) error {
	switch f {
	case CSV:
		return WriteCSV(w, ds)
	case XLSX:
		return WriteXLSX(w, ds)
	case JSON:
		return WriteJSON(w, ds)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, f)
}

// WriteFile writes ds to path in the format implied by its extension.
func WriteFile(path string, ds dataset.Dataset) (err error) {
	f, err := FormatForPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return Write(out, ds, f)
}

// WriteCSV writes the table with a header row. Missing values are empty cells.
func WriteCSV(w io.Writer, ds dataset.Dataset) error {
	if err := ds.Frame().WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the table to a single worksheet. Numeric cells are stored
// as numbers and missing values are left blank.
func WriteXLSX(w io.Writer, ds dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	header := dataset.Header()
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := setRow(f, 1, row); err != nil {
		return err
	}

	for i := range ds.Records {
		r := &ds.Records[i]
		row := make([]any, 0, len(header))
		row = append(row, r.Timestamp.Format(dataset.TimestampLayout), r.City)
		for _, c := range dataset.NumericColumns {
			if v := r.Value(c); v != nil {
				row = append(row, *v)
			} else {
				row = append(row, nil)
			}
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("xlsx panes: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, row []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("xlsx row %d: %w", n, err)
	}
	return nil
}

// WriteJSON writes the records as a JSON array.
func WriteJSON(w io.Writer, ds dataset.Dataset) error {
	records := ds.Records
	if records == nil {
		records = []dataset.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
