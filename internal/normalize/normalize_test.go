package normalize

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestReportDropsNonAccountRows(t *testing.T) {
	normalizer := NewNormalizer(zap.NewNop())

	rows := []ReportRow{
		{AccountLabel: "5210 Payroll", Actual: "52000", Budget: "48000"},
		{AccountLabel: "Total Operating Expenses", Actual: "90000", Budget: "85000"},
		{AccountLabel: "GRAND TOTAL", Actual: "90000", Budget: "85000"},
		{AccountLabel: "   "},
		{AccountLabel: ""},
		{AccountLabel: "5310 Contract Services", Actual: "12000", Budget: "11000"},
	}

	items, err := normalizer.Report(rows)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Report() returned %d items, expected 2", len(items))
	}
	if items[0].AccountLabel != "5210 Payroll" || items[1].AccountLabel != "5310 Contract Services" {
		t.Errorf("Report() kept wrong rows: %q, %q", items[0].AccountLabel, items[1].AccountLabel)
	}
}

func TestReportCoercion(t *testing.T) {
	normalizer := NewNormalizer(zap.NewNop())

	rows := []ReportRow{
		{
			AccountLabel:    "5210 Payroll",
			Actual:          "$52,000.00",
			Budget:          "48000",
			DollarVariance:  "(4,000)",
			PercentVariance: "8.3%",
		},
		{
			AccountLabel: "5310 Contract Services",
			Actual:       "not a number",
			Budget:       "",
		},
		{
			AccountLabel: "5410 Landscaping",
			Actual:       "9000",
			Budget:       "7500",
			// dollar variance omitted, derived from actual - budget
		},
	}

	items, err := normalizer.Report(rows)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	payroll := items[0]
	if payroll.Actual == nil || *payroll.Actual != 52000 {
		t.Errorf("Actual = %v, expected 52000", payroll.Actual)
	}
	if payroll.DollarVariance == nil || *payroll.DollarVariance != -4000 {
		t.Errorf("DollarVariance = %v, expected -4000 (parenthesized negative)", payroll.DollarVariance)
	}
	if payroll.PercentVariance == nil || *payroll.PercentVariance != 8.3 {
		t.Errorf("PercentVariance = %v, expected 8.3", payroll.PercentVariance)
	}

	contract := items[1]
	if contract.Actual != nil {
		t.Errorf("uncoercible Actual = %v, expected nil", *contract.Actual)
	}
	if contract.DollarVariance != nil {
		t.Error("DollarVariance fabricated from uncoercible operands, expected nil")
	}

	landscaping := items[2]
	if landscaping.DollarVariance == nil || *landscaping.DollarVariance != 1500 {
		t.Errorf("derived DollarVariance = %v, expected 1500", landscaping.DollarVariance)
	}
}

func TestReportGLCodeExtraction(t *testing.T) {
	normalizer := NewNormalizer(zap.NewNop())

	rows := []ReportRow{
		{AccountLabel: "5210 Payroll"},
		{AccountLabel: "Payroll Overtime"},
	}
	items, err := normalizer.Report(rows)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if items[0].GLCode != "5210" {
		t.Errorf("GLCode = %q, expected %q", items[0].GLCode, "5210")
	}
	if items[1].GLCode != "" {
		t.Errorf("GLCode = %q, expected empty for label without code", items[1].GLCode)
	}
}

func TestMissingSources(t *testing.T) {
	normalizer := NewNormalizer(zap.NewNop())

	_, err := normalizer.Report(nil)
	var missing *MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("Report(nil) error = %v, expected MissingSourceError", err)
	}
	if missing.Source == "" {
		t.Error("MissingSourceError does not name the missing source")
	}

	_, err = normalizer.Chart(nil)
	if !errors.As(err, &missing) {
		t.Fatalf("Chart(nil) error = %v, expected MissingSourceError", err)
	}
}

func TestChart(t *testing.T) {
	normalizer := NewNormalizer(zap.NewNop())

	entries, err := normalizer.Chart([]ChartRow{
		{AccountNumber: "5210", Title: "Payroll", Description: "Site payroll and wages"},
		{AccountNumber: "210.0", Title: "Deposits", Description: "Refundable deposits"},
		{AccountNumber: "junk", Title: "Ignored"},
	})
	if err != nil {
		t.Fatalf("Chart() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Chart() returned %d entries, expected 2", len(entries))
	}
	if entries["5210"].Description != "Site payroll and wages" {
		t.Errorf("Description = %q", entries["5210"].Description)
	}
	if _, found := entries["0210"]; !found {
		t.Error("numeric-coerced account number 210.0 not normalized to 0210")
	}
}

func TestJournalPostedAmount(t *testing.T) {
	normalizer := NewNormalizer(zap.NewNop())

	entries := normalizer.Journal([]JournalRow{
		{Account: "5210", Memo: "Payroll run", Debit: "1000", Credit: "250"},
		{Account: "5210", Memo: "Adjustment", Debit: "", Credit: "100"},
		{Account: "5210", Memo: "Bad row", Debit: "x", Credit: ""},
	})

	if len(entries) != 3 {
		t.Fatalf("Journal() returned %d entries, expected 3", len(entries))
	}
	if entries[0].PostedAmount != 1250 {
		t.Errorf("PostedAmount = %v, expected 1250", entries[0].PostedAmount)
	}
	if entries[1].PostedAmount != 100 {
		t.Errorf("PostedAmount = %v, expected 100 with nil debit treated as zero", entries[1].PostedAmount)
	}
	if entries[2].PostedAmount != 0 {
		t.Errorf("PostedAmount = %v, expected 0 when both sides fail coercion", entries[2].PostedAmount)
	}
}

func TestTrends(t *testing.T) {
	normalizer := NewNormalizer(zap.NewNop())

	snapshot := normalizer.Trends([]TrendTable{
		{
			Name: "Unit Mix",
			Rows: [][]string{
				{"1BR", "120"},
				{"2BR", "200"},
				{"Total units", "320"},
			},
		},
		{
			Name: "Leasing Applications",
			Rows: [][]string{
				{"May", "42"},
				{"June", "31"},
			},
		},
		{
			Name: "Move Outs",
			Rows: [][]string{
				{"May", "8"},
				{"June", "14"},
			},
		},
		{
			Name: "Occupancy",
			Rows: [][]string{
				{"Actual", "92.5"},
				{"Budget", "95.0"},
			},
		},
	})

	if snapshot == nil {
		t.Fatal("Trends() = nil, expected snapshot")
	}
	if snapshot.TotalUnits == nil || *snapshot.TotalUnits != 320 {
		t.Errorf("TotalUnits = %v, expected 320 (last non-null value)", snapshot.TotalUnits)
	}
	if snapshot.LeasingApplications == nil || snapshot.LeasingApplications.Current != 31 || snapshot.LeasingApplications.Prior != 42 {
		t.Errorf("LeasingApplications = %+v, expected current 31 prior 42", snapshot.LeasingApplications)
	}
	if snapshot.MoveOuts == nil || snapshot.MoveOuts.Current != 14 {
		t.Errorf("MoveOuts = %+v, expected current 14", snapshot.MoveOuts)
	}
	if snapshot.OccupancyActualPct == nil || *snapshot.OccupancyActualPct != 92.5 {
		t.Errorf("OccupancyActualPct = %v, expected 92.5", snapshot.OccupancyActualPct)
	}
	if snapshot.OccupancyBudgetPct == nil || *snapshot.OccupancyBudgetPct != 95.0 {
		t.Errorf("OccupancyBudgetPct = %v, expected 95.0", snapshot.OccupancyBudgetPct)
	}
}

func TestTrendsAbsent(t *testing.T) {
	normalizer := NewNormalizer(zap.NewNop())
	if snapshot := normalizer.Trends(nil); snapshot != nil {
		t.Errorf("Trends(nil) = %+v, expected nil", snapshot)
	}
}
