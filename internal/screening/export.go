package screening

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"hiringdesk/hiring-assistant/internal/models"
)

// ExportRow is one completed screening flattened for interchange.
type ExportRow struct {
	FileName       string                `json:"fileName"`
	Summary        string                `json:"summary"`
	Strengths      []string              `json:"strengths"`
	Weaknesses     []string              `json:"weaknesses"`
	MatchingSkills []string              `json:"matchingSkills"`
	MatchScore     int                   `json:"matchScore"`
	Recommendation models.Recommendation `json:"recommendation"`
}

var exportHeaders = []string{
	"File Name", "Match Score", "Recommendation", "Summary",
	"Matching Skills", "Strengths", "Weaknesses",
}

// ExportRows projects only completed items with a verdict, one row per item
// in the order provided.
func ExportRows(items []models.ScreeningItem) []ExportRow {
	var rows []ExportRow
	for _, item := range items {
		if item.Status != models.StatusCompleted || item.Verdict == nil {
			continue
		}
		rows = append(rows, ExportRow{
			FileName:       item.File.Name,
			Summary:        item.Verdict.Summary,
			Strengths:      item.Verdict.Strengths,
			Weaknesses:     item.Verdict.Weaknesses,
			MatchingSkills: item.Verdict.MatchingSkills,
			MatchScore:     item.Verdict.MatchScore,
			Recommendation: item.Verdict.Recommendation,
		})
	}
	return rows
}

// WriteCSV renders the rows with every text field quote-wrapped (internal
// quotes doubled) and the score bare. encoding/csv is not used because it
// quotes only when required, while this format always quotes text fields.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	var b strings.Builder
	b.WriteString(strings.Join(exportHeaders, ","))

	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(strings.Join([]string{
			csvQuote(row.FileName),
			fmt.Sprintf("%d", row.MatchScore),
			csvQuote(string(row.Recommendation)),
			csvQuote(row.Summary),
			csvQuote(strings.Join(row.MatchingSkills, "; ")),
			csvQuote(strings.Join(row.Strengths, "; ")),
			csvQuote(strings.Join(row.Weaknesses, "; ")),
		}, ","))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteJSON renders the rows as a pretty-printed array.
func WriteJSON(w io.Writer, rows []ExportRow) error {
	if rows == nil {
		rows = []ExportRow{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export rows: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteXLSX renders the rows as a single-sheet workbook with the same columns
// as the CSV export.
func WriteXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	const sheet = "Screenings"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for r, row := range rows {
		values := []interface{}{
			row.FileName,
			row.MatchScore,
			string(row.Recommendation),
			row.Summary,
			strings.Join(row.MatchingSkills, "; "),
			strings.Join(row.Strengths, "; "),
			strings.Join(row.Weaknesses, "; "),
		}
		for c, value := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
