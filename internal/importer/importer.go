// Package importer reads start lists into roster rows. Two source formats
// are supported: delimited CSV and XLSX workbooks (first sheet), since
// schools hand over both. Column headers are matched case-insensitively
// after trimming.
//
// Required columns are Category, House, and Name; a file missing any of
// them is rejected as a whole and the caller's roster stays untouched.
// Optional T1..T5 columns carry raw throw text, which is what lets a
// previously exported results file be re-imported losslessly. Rank and
// Best Throw columns are derived data and ignored on import.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/amahle/discus-manager/internal/models"
)

// Options adjusts how a start list is interpreted.
type Options struct {
	// FallbackCategory is used for every row when the source has no
	// Category column. Exported results files carry the category in the
	// filename rather than a column, so re-imports supply it here.
	FallbackCategory string
}

// Read parses the start list in r. The filename only selects the parser:
// ".xlsx" goes through excelize, everything else is treated as CSV.
func Read(r io.Reader, filename string, opts Options) ([]models.StartRow, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ReadXLSX(r, opts)
	}
	return ReadCSV(r, opts)
}

// ReadCSV parses a delimited start list.
func ReadCSV(r io.Reader, opts Options) ([]models.StartRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return fromRows(records, opts)
}

// ReadXLSX parses the first sheet of an XLSX workbook.
func ReadXLSX(r io.Reader, opts Options) ([]models.StartRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX data: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows, opts)
}

// columnMap locates the start-list columns in a header row.
type columnMap struct {
	category int
	house    int
	name     int
	throws   [models.ThrowCount]int
}

func mapColumns(header []string, haveFallback bool) (columnMap, error) {
	cols := columnMap{category: -1, house: -1, name: -1}
	for i := range cols.throws {
		cols.throws[i] = -1
	}

	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "category":
			cols.category = i
		case "house":
			cols.house = i
		case "name":
			cols.name = i
		case "t1", "t2", "t3", "t4", "t5":
			cols.throws[strings.TrimSpace(h)[1]-'1'] = i
		}
	}

	var missing []string
	if cols.category < 0 && !haveFallback {
		missing = append(missing, "Category")
	}
	if cols.house < 0 {
		missing = append(missing, "House")
	}
	if cols.name < 0 {
		missing = append(missing, "Name")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("start list needs columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func fromRows(rows [][]string, opts Options) ([]models.StartRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("start list is empty")
	}

	cols, err := mapColumns(rows[0], opts.FallbackCategory != "")
	if err != nil {
		return nil, err
	}

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	out := make([]models.StartRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		sr := models.StartRow{
			Category: cell(row, cols.category),
			House:    cell(row, cols.house),
			Name:     cell(row, cols.name),
		}
		if sr.Category == "" {
			sr.Category = opts.FallbackCategory
		}
		for i, idx := range cols.throws {
			sr.Throws[i] = cell(row, idx)
		}
		out = append(out, sr)
	}
	return out, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
