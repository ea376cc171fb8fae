// Package loader reads the already-structured delimited-text datasets handed
// over by the parsing collaborator and maps them onto the raw row schemas the
// normalizer consumes. Column resolution is by header keyword so the loader
// tolerates the naming drift between report exports.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/cortlandlabs/variance-explainer/internal/normalize"
)

// LoadReport reads the budget-vs-actual rows. An empty path means the report
// was not supplied; the normalizer turns that into a missing-source failure.
func LoadReport(path string) ([]normalize.ReportRow, error) {
	if path == "" {
		return nil, nil
	}
	records, err := readDelimited(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []normalize.ReportRow{}, nil
	}

	header := headerIndex(records[0])
	labelCol := header.find("account")
	actualCol := header.findExcluding("actual", "ytd")
	budgetCol := header.findExcluding("budget", "ytd")
	dollarCol := header.findAny("$ variance", "dollar variance", "$ var")
	percentCol := header.findAny("% variance", "percent variance", "% var")
	ytdActualCol := header.findBoth("ytd", "actual")
	ytdBudgetCol := header.findBoth("ytd", "budget")

	rows := make([]normalize.ReportRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, normalize.ReportRow{
			AccountLabel:    cell(record, labelCol),
			Actual:          cell(record, actualCol),
			Budget:          cell(record, budgetCol),
			DollarVariance:  cell(record, dollarCol),
			PercentVariance: cell(record, percentCol),
			YTDActual:       cell(record, ytdActualCol),
			YTDBudget:       cell(record, ytdBudgetCol),
		})
	}
	return rows, nil
}

// LoadChart reads the chart of accounts.
func LoadChart(path string) ([]normalize.ChartRow, error) {
	if path == "" {
		return nil, nil
	}
	records, err := readDelimited(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []normalize.ChartRow{}, nil
	}

	header := headerIndex(records[0])
	numberCol := header.find("number")
	titleCol := header.find("title")
	descriptionCol := header.find("description")

	rows := make([]normalize.ChartRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, normalize.ChartRow{
			AccountNumber: cell(record, numberCol),
			Title:         cell(record, titleCol),
			Description:   cell(record, descriptionCol),
		})
	}
	return rows, nil
}

// LoadJournal reads the journal-entry detail. Optional.
func LoadJournal(path string) ([]normalize.JournalRow, error) {
	if path == "" {
		return nil, nil
	}
	records, err := readDelimited(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []normalize.JournalRow{}, nil
	}

	header := headerIndex(records[0])
	accountCol := header.findAny("gl", "account")
	memoCol := header.findAny("memo", "description")
	debitCol := header.find("debit")
	creditCol := header.find("credit")

	rows := make([]normalize.JournalRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, normalize.JournalRow{
			Account: cell(record, accountCol),
			Memo:    cell(record, memoCol),
			Debit:   cell(record, debitCol),
			Credit:  cell(record, creditCol),
		})
	}
	return rows, nil
}

// LoadInvoices reads the invoice detail. Optional.
func LoadInvoices(path string) ([]normalize.InvoiceRow, error) {
	if path == "" {
		return nil, nil
	}
	records, err := readDelimited(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []normalize.InvoiceRow{}, nil
	}

	header := headerIndex(records[0])
	accountCol := header.findAny("gl", "account")
	invoiceCol := header.find("invoice")
	totalCol := header.find("total")

	rows := make([]normalize.InvoiceRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, normalize.InvoiceRow{
			Account:       cell(record, accountCol),
			InvoiceNumber: cell(record, invoiceCol),
			LineItemTotal: cell(record, totalCol),
		})
	}
	return rows, nil
}

// LoadTrends reads the trends workbook dump: named sub-tables separated by
// rows whose first cell alone is populated. Optional.
func LoadTrends(path string) ([]normalize.TrendTable, error) {
	if path == "" {
		return nil, nil
	}
	records, err := readDelimited(path)
	if err != nil {
		return nil, err
	}

	var tables []normalize.TrendTable
	var current *normalize.TrendTable
	for _, record := range records {
		if isSectionHeader(record) {
			tables = append(tables, normalize.TrendTable{Name: strings.TrimSpace(record[0])})
			current = &tables[len(tables)-1]
			continue
		}
		if current == nil {
			continue
		}
		if isBlank(record) {
			continue
		}
		current.Rows = append(current.Rows, record)
	}
	return tables, nil
}

func readDelimited(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return records, nil
}

// isSectionHeader reports a row carrying only a table name in its first cell.
func isSectionHeader(record []string) bool {
	if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
		return false
	}
	for _, field := range record[1:] {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

type columns []string

func headerIndex(record []string) columns {
	lowered := make(columns, len(record))
	for i, field := range record {
		lowered[i] = strings.ToLower(strings.TrimSpace(field))
	}
	return lowered
}

func (c columns) find(keyword string) int {
	for i, field := range c {
		if strings.Contains(field, keyword) {
			return i
		}
	}
	return -1
}

func (c columns) findAny(keywords ...string) int {
	for _, keyword := range keywords {
		if i := c.find(keyword); i >= 0 {
			return i
		}
	}
	return -1
}

func (c columns) findBoth(first, second string) int {
	for i, field := range c {
		if strings.Contains(field, first) && strings.Contains(field, second) {
			return i
		}
	}
	return -1
}

func (c columns) findExcluding(keyword, excluded string) int {
	for i, field := range c {
		if strings.Contains(field, keyword) && !strings.Contains(field, excluded) {
			return i
		}
	}
	return -1
}

func cell(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return record[index]
}
