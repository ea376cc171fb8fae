// Package report defines the canonical entities produced by normalization and
// the final result table consumed by the display/export collaborator.
package report

// AccountLineItem is one row of the budget-vs-actual report for one period.
// Optional numeric fields are nil when absent or uncoercible. Items are
// created once by the normalizer and treated as read-only afterwards; later
// stages attach their derived values to working copies, never back into the
// normalized slice.
type AccountLineItem struct {
	AccountLabel    string
	GLCode          string // "" when no four-digit code was found in the label
	Actual          *float64
	Budget          *float64
	DollarVariance  *float64
	PercentVariance *float64
	YTDActual       *float64
	YTDBudget       *float64
}

// ChartEntry is reference metadata for one GL account, loaded once and
// looked up by code.
type ChartEntry struct {
	GLCode      string
	Title       string
	Description string
}

// JournalEntry is a single posted transaction. PostedAmount is debit plus
// credit with absent sides treated as zero.
type JournalEntry struct {
	GLCode       string
	Memo         string
	Debit        *float64
	Credit       *float64
	PostedAmount float64
}

// InvoiceRecord is a single invoice line.
type InvoiceRecord struct {
	GLCode                string
	SupplierInvoiceNumber string
	LineItemTotal         *float64
}

// TrendSnapshot carries occupancy and leasing trend scalars pulled from the
// auxiliary trends workbook. Any field may be nil; absent trend data never
// blocks explanation generation.
type TrendSnapshot struct {
	TotalUnits          *float64
	LeasingApplications *PeriodPair
	MoveOuts            *PeriodPair
	OccupancyActualPct  *float64
	OccupancyBudgetPct  *float64
}

// PeriodPair holds a current-period value and the prior-period value it is
// compared against.
type PeriodPair struct {
	Current float64
	Prior   float64
}

// MonthlyContext holds the operator-supplied free-text notes for the period.
// The narrative composer consumes these verbatim.
type MonthlyContext struct {
	MajorEvent   string
	DelayNote    string
	MoveOutNote  string
	StaffingNote string
}

// ExplanationResult is one output row: the original line item plus the
// generated explanation. Explanation is "" for unflagged accounts and for
// flagged accounts where no narrative rule fired.
type ExplanationResult struct {
	AccountLineItem
	Flagged     bool
	Explanation string
}

// Assemble projects the normalized items and their per-index explanations
// into the final result sequence, preserving the original report row order
// and emitting one row per account whether flagged or not.
func Assemble(items []AccountLineItem, flagged []bool, explanations []string) []ExplanationResult {
	results := make([]ExplanationResult, len(items))
	for i, item := range items {
		results[i] = ExplanationResult{AccountLineItem: item}
		if i < len(flagged) {
			results[i].Flagged = flagged[i]
		}
		if i < len(explanations) {
			results[i].Explanation = explanations[i]
		}
	}
	return results
}
