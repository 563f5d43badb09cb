// Package exporter serializes a category's ranked results for download.
// The table is ordered by descending best throw (ties stable on load
// order) and carries the raw throw text exactly as entered, which makes an
// exported file safe to re-import through the importer. The internal
// athlete ID is deliberately left out.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/amahle/discus-manager/internal/models"
	"github.com/amahle/discus-manager/internal/scoring"
)

var header = []string{"Rank", "Name", "House", "Best Throw", "T1", "T2", "T3", "T4", "T5"}

// Filename returns the download name for a category's results file,
// e.g. "Discus_Senior Boys.csv".
func Filename(category, format string) string {
	return fmt.Sprintf("Discus_%s.%s", category, format)
}

// WriteCSV writes the ranked results table for the given athletes as CSV.
func WriteCSV(w io.Writer, athletes []models.Athlete) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}
	for _, row := range scoring.Results(athletes) {
		if err := cw.Write(record(row)); err != nil {
			return fmt.Errorf("failed to write results row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush results: %w", err)
	}
	return nil
}

// WriteXLSX writes the ranked results table as a single-sheet workbook.
func WriteXLSX(w io.Writer, athletes []models.Athlete) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	writeRow := func(rowIdx int, cells []string) error {
		addr, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, addr, &cells)
	}

	if err := writeRow(1, header); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}
	for i, row := range scoring.Results(athletes) {
		if err := writeRow(i+2, record(row)); err != nil {
			return fmt.Errorf("failed to write results row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func record(row models.ResultRow) []string {
	rec := []string{
		strconv.Itoa(row.Rank),
		row.Name,
		row.House,
		strconv.FormatFloat(row.Best, 'f', -1, 64),
	}
	return append(rec, row.Throws[:]...)
}
