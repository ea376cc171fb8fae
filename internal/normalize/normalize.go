// Package normalize canonicalizes heterogeneous raw rows from the uploaded
// workbook into the entities consumed by the explanation pipeline. Account
// identifiers become zero-padded four-digit GL codes and every numeric field
// either coerces cleanly or becomes nil with a warning; value-level problems
// never abort a run.
package normalize

import (
	"strconv"
	"strings"

	"github.com/cortlandlabs/variance-explainer/internal/report"
	"github.com/cortlandlabs/variance-explainer/pkg/constants"
	"github.com/cortlandlabs/variance-explainer/pkg/glcode"
	"go.uber.org/zap"
)

// ReportRow is one raw budget-vs-actual row as handed over by the parsing
// collaborator. All values are uncoerced text.
type ReportRow struct {
	AccountLabel    string
	Actual          string
	Budget          string
	DollarVariance  string
	PercentVariance string
	YTDActual       string
	YTDBudget       string
}

// ChartRow is one raw chart-of-accounts row.
type ChartRow struct {
	AccountNumber string
	Title         string
	Description   string
}

// JournalRow is one raw journal-entry row.
type JournalRow struct {
	Account string
	Memo    string
	Debit   string
	Credit  string
}

// InvoiceRow is one raw invoice line.
type InvoiceRow struct {
	Account       string
	InvoiceNumber string
	LineItemTotal string
}

// TrendTable is one named sub-table of the auxiliary trends workbook.
type TrendTable struct {
	Name string
	Rows [][]string
}

// Normalizer canonicalizes raw rows into the report entities.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a new normalizer with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Report canonicalizes the budget-vs-actual rows. Subtotal rows (any label
// containing "total", case-insensitively) and rows with blank labels are
// dropped; they are not real accounts and must never reach the flagger.
// A nil row set means the report sheet itself was absent, which is fatal.
func (n *Normalizer) Report(rows []ReportRow) ([]report.AccountLineItem, error) {
	if rows == nil {
		return nil, &MissingSourceError{Source: constants.SourceReport}
	}

	items := make([]report.AccountLineItem, 0, len(rows))
	for _, row := range rows {
		label := strings.TrimSpace(row.AccountLabel)
		if label == "" {
			continue
		}
		if strings.Contains(strings.ToLower(label), "total") {
			n.logger.Debug("dropping subtotal row",
				zap.String("op", "normalize.Report"),
				zap.String("accountLabel", label),
			)
			continue
		}

		item := report.AccountLineItem{
			AccountLabel:    label,
			GLCode:          glcode.Extract(label),
			Actual:          n.coerce(row.Actual, "actual", label),
			Budget:          n.coerce(row.Budget, "budget", label),
			DollarVariance:  n.coerce(row.DollarVariance, "dollarVariance", label),
			PercentVariance: n.coerce(row.PercentVariance, "percentVariance", label),
			YTDActual:       n.coerce(row.YTDActual, "ytdActual", label),
			YTDBudget:       n.coerce(row.YTDBudget, "ytdBudget", label),
		}
		if item.DollarVariance == nil && item.Actual != nil && item.Budget != nil {
			derived := *item.Actual - *item.Budget
			item.DollarVariance = &derived
		}
		items = append(items, item)
	}
	return items, nil
}

// Chart canonicalizes the chart of accounts into a lookup keyed by GL code.
// A nil row set means the chart sheet was absent, which is fatal.
func (n *Normalizer) Chart(rows []ChartRow) (map[string]report.ChartEntry, error) {
	if rows == nil {
		return nil, &MissingSourceError{Source: constants.SourceChart}
	}

	entries := make(map[string]report.ChartEntry, len(rows))
	for _, row := range rows {
		code := glcode.Normalize(row.AccountNumber)
		if code == "" {
			n.logger.Warn("chart row has no usable account number",
				zap.String("op", "normalize.Chart"),
				zap.String("accountNumber", row.AccountNumber),
			)
			continue
		}
		if _, exists := entries[code]; exists {
			continue
		}
		entries[code] = report.ChartEntry{
			GLCode:      code,
			Title:       strings.TrimSpace(row.Title),
			Description: strings.TrimSpace(row.Description),
		}
	}
	return entries, nil
}

// Journal canonicalizes journal-entry rows. The journal is an optional
// secondary dataset: a nil row set yields an empty slice, never an error.
func (n *Normalizer) Journal(rows []JournalRow) []report.JournalEntry {
	entries := make([]report.JournalEntry, 0, len(rows))
	for _, row := range rows {
		code := glcode.Normalize(row.Account)
		if code == "" {
			code = glcode.Extract(row.Account)
		}
		debit := n.coerce(row.Debit, "debit", row.Account)
		credit := n.coerce(row.Credit, "credit", row.Account)
		entry := report.JournalEntry{
			GLCode: code,
			Memo:   strings.TrimSpace(row.Memo),
			Debit:  debit,
			Credit: credit,
		}
		if debit != nil {
			entry.PostedAmount += *debit
		}
		if credit != nil {
			entry.PostedAmount += *credit
		}
		entries = append(entries, entry)
	}
	return entries
}

// Invoices canonicalizes invoice lines. Like the journal, absent data
// degrades to an empty slice.
func (n *Normalizer) Invoices(rows []InvoiceRow) []report.InvoiceRecord {
	records := make([]report.InvoiceRecord, 0, len(rows))
	for _, row := range rows {
		code := glcode.Normalize(row.Account)
		if code == "" {
			code = glcode.Extract(row.Account)
		}
		records = append(records, report.InvoiceRecord{
			GLCode:                code,
			SupplierInvoiceNumber: strings.TrimSpace(row.InvoiceNumber),
			LineItemTotal:         n.coerce(row.LineItemTotal, "lineItemTotal", row.Account),
		})
	}
	return records
}

// Trends builds a TrendSnapshot from the named sub-tables of the trends
// workbook. Unrecognized tables are ignored and absent fields stay nil;
// nothing here can fail the run.
func (n *Normalizer) Trends(tables []TrendTable) *report.TrendSnapshot {
	if len(tables) == 0 {
		return nil
	}

	snapshot := &report.TrendSnapshot{}
	for _, table := range tables {
		name := strings.ToLower(table.Name)
		switch {
		case strings.Contains(name, "unit"):
			snapshot.TotalUnits = n.lastValue(table)
		case strings.Contains(name, "application") || strings.Contains(name, "leasing"):
			snapshot.LeasingApplications = n.periodPair(table)
		case strings.Contains(name, "move"):
			snapshot.MoveOuts = n.periodPair(table)
		case strings.Contains(name, "occupancy"):
			n.occupancy(table, snapshot)
		default:
			n.logger.Debug("ignoring unrecognized trend table",
				zap.String("op", "normalize.Trends"),
				zap.String("table", table.Name),
			)
		}
	}
	return snapshot
}

// lastValue returns the most recent (last) coercible value of the table's
// second column.
func (n *Normalizer) lastValue(table TrendTable) *float64 {
	var last *float64
	for _, value := range n.secondColumn(table) {
		v := value
		last = &v
	}
	return last
}

// periodPair pairs the last coercible value of the second column (current
// period) with the one before it (prior period).
func (n *Normalizer) periodPair(table TrendTable) *report.PeriodPair {
	values := n.secondColumn(table)
	if len(values) < 2 {
		return nil
	}
	return &report.PeriodPair{
		Current: values[len(values)-1],
		Prior:   values[len(values)-2],
	}
}

// occupancy fills the actual/budget occupancy percentages from rows whose
// first cell names them.
func (n *Normalizer) occupancy(table TrendTable, snapshot *report.TrendSnapshot) {
	for _, row := range table.Rows {
		if len(row) < 2 {
			continue
		}
		label := strings.ToLower(row[0])
		value := n.coerce(row[1], "occupancy", table.Name)
		if value == nil {
			continue
		}
		switch {
		case strings.Contains(label, "actual"):
			snapshot.OccupancyActualPct = value
		case strings.Contains(label, "budget"):
			snapshot.OccupancyBudgetPct = value
		}
	}
}

func (n *Normalizer) secondColumn(table TrendTable) []float64 {
	var values []float64
	for _, row := range table.Rows {
		if len(row) < 2 {
			continue
		}
		if value := n.coerce(row[1], "trendValue", table.Name); value != nil {
			values = append(values, *value)
		}
	}
	return values
}

// coerce parses a numeric field, tolerating currency symbols, thousands
// separators, percent signs, and accounting-style parenthesized negatives.
// Anything unparseable becomes nil with a warning; coercion never errors.
func (n *Normalizer) coerce(value, field, context string) *float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "-" {
		return nil
	}

	negative := false
	if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") {
		negative = true
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	cleaner := strings.NewReplacer("$", "", ",", "", "%", "", " ", "")
	trimmed = cleaner.Replace(trimmed)

	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		n.logger.Warn("value failed numeric coercion",
			zap.String("op", "normalize.coerce"),
			zap.String("field", field),
			zap.String("context", context),
			zap.String("value", value),
		)
		return nil
	}
	if negative {
		parsed = -parsed
	}
	return &parsed
}
