// Package export renders reconciliation reports as downloadable artifacts
// for the ops dashboard.
package export

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/catalog-recon/internal/model"
)

// WriteXLSX writes a reconciliation report as a two-sheet workbook: one row
// per comparison row on the Rows sheet, aggregate counts on the Summary
// sheet.
func WriteXLSX(report *model.Report, path string) error {
	f := xlsx.NewFile()

	if err := addRowsSheet(f, report); err != nil {
		return err
	}
	if err := addSummarySheet(f, report); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func addRowsSheet(f *xlsx.File, report *model.Report) error {
	sheet, err := f.AddSheet("Rows")
	if err != nil {
		return eris.Wrap(err, "export: add rows sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Key", "Status", "Reasons"} {
		header.AddCell().Value = h
	}
	for _, src := range model.Sources {
		label := src.Label()
		for _, col := range []string{" Name", " SKU", " Price"} {
			header.AddCell().Value = label + col
		}
	}
	header.AddCell().Value = "Suggested Matches"

	for _, row := range report.Rows {
		r := sheet.AddRow()
		r.AddCell().Value = row.Key
		if row.IsMismatch {
			r.AddCell().Value = "mismatch"
		} else {
			r.AddCell().Value = "ok"
		}
		r.AddCell().Value = strings.Join(row.Reasons, "; ")

		for _, src := range model.Sources {
			p := row.Products[src]
			if p == nil {
				r.AddCell()
				r.AddCell()
				r.AddCell()
				continue
			}
			r.AddCell().Value = p.Name
			r.AddCell().Value = p.SKU
			if p.Price != nil {
				r.AddCell().SetFloat(*p.Price)
			} else {
				r.AddCell()
			}
		}

		r.AddCell().Value = formatCandidates(row.PossibleMatches)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, report *model.Report) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	add := func(label string, value any) {
		r := sheet.AddRow()
		r.AddCell().Value = label
		switch v := value.(type) {
		case int:
			r.AddCell().SetInt(v)
		case string:
			r.AddCell().Value = v
		}
	}

	add("Generated", report.LastUpdated.Format("2006-01-02 15:04:05 UTC"))
	add("Total rows", report.Summary.TotalRows)
	add("Mismatched rows", report.Summary.MismatchRows)
	add("Fully matched rows", report.Summary.FullyMatchedRows)
	for _, src := range model.Sources {
		add(src.Label()+" records", report.Summary.SourceCounts[src])
		add("Missing in "+src.Label(), report.Summary.MissingBySource[src])
	}
	for _, w := range report.Warnings {
		add("Warning", w)
	}
	return nil
}

func formatCandidates(cands []model.CandidateMatch) string {
	parts := make([]string, 0, len(cands))
	for _, c := range cands {
		name := c.Product.Name
		if name == "" {
			name = c.Product.ID
		}
		parts = append(parts, fmt.Sprintf("%s: %s (%.3f)", c.Source.Label(), name, c.Score))
	}
	return strings.Join(parts, "; ")
}
