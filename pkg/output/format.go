// Package output provides utilities for formatting and displaying
// explanation results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cortlandlabs/variance-explainer/internal/report"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ResultHeader is the column set of the exported result table.
var ResultHeader = []string{
	"gl_code",
	"account_label",
	"actual",
	"budget",
	"dollar_variance",
	"percent_variance",
	"ytd_actual",
	"ytd_budget",
	"explanation",
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []report.ExplanationResult) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "GL   | Account                        | Actual        | Budget        | Variance      | Explanation\n")
	fmt.Fprintf(w, "__   | _______                        | ______        | ______        | ________      | ___________\n")
	for _, result := range results {
		code := result.GLCode
		if code == "" {
			code = "----"
		}
		_, _ = p.Fprintf(w, "%s | %-30s | %13s | %13s | %13s | %s\n",
			code,
			truncate(result.AccountLabel, 30),
			prettyAmount(p, result.Actual),
			prettyAmount(p, result.Budget),
			prettyAmount(p, result.DollarVariance),
			result.Explanation,
		)
	}
}

// CsvFormat writes the result table as UTF-8 comma-separated values with a
// header row. Absent numerics are empty cells; unflagged accounts keep their
// empty explanation so downstream consumers can filter deterministically.
func CsvFormat(w io.Writer, results []report.ExplanationResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ResultHeader); err != nil {
		return fmt.Errorf("failed to write result header: %w", err)
	}
	for _, result := range results {
		record := []string{
			result.GLCode,
			result.AccountLabel,
			csvAmount(result.Actual),
			csvAmount(result.Budget),
			csvAmount(result.DollarVariance),
			csvAmount(result.PercentVariance),
			csvAmount(result.YTDActual),
			csvAmount(result.YTDBudget),
			result.Explanation,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write result row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func prettyAmount(p *message.Printer, value *float64) string {
	if value == nil {
		return ""
	}
	return p.Sprintf("$%.2f", *value)
}

func csvAmount(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', 2, 64)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "…"
}
