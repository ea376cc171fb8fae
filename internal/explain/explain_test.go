package explain

import (
	"errors"
	"strings"
	"testing"

	"github.com/cortlandlabs/variance-explainer/internal/config"
	"github.com/cortlandlabs/variance-explainer/internal/normalize"
	"github.com/cortlandlabs/variance-explainer/pkg/constants"
	"github.com/cortlandlabs/variance-explainer/pkg/testutil"
	"go.uber.org/zap"
)

func baseInputs() Inputs {
	return Inputs{
		Report: []normalize.ReportRow{
			{
				AccountLabel:    "4105 Application Fees",
				Actual:          "9000",
				Budget:          "12000",
				DollarVariance:  "-3000",
				PercentVariance: "-25",
			},
			{
				AccountLabel:    "5210 Payroll",
				Actual:          "52000",
				Budget:          "48000",
				DollarVariance:  "4000",
				PercentVariance: "8.3",
			},
			{
				AccountLabel:    "5310 Contract Services",
				Actual:          "14000",
				Budget:          "10000",
				DollarVariance:  "4000",
				PercentVariance: "40",
				YTDActual:       "98000",
				YTDBudget:       "80000",
			},
			{
				AccountLabel: "Total Operating Expenses",
				Actual:       "75000",
				Budget:       "70000",
			},
			{
				AccountLabel:    "7100 Debt Service",
				Actual:          "30000",
				Budget:          "20000",
				DollarVariance:  "10000",
				PercentVariance: "50",
			},
		},
		Chart: []normalize.ChartRow{
			{AccountNumber: "4105", Title: "Application Fees", Description: "Leasing application fee income"},
			{AccountNumber: "5210", Title: "Payroll", Description: "Site payroll and wages"},
			{AccountNumber: "5310", Title: "Contract Services", Description: "Outside contract services"},
		},
	}
}

func TestUnflaggedAccountsGetEmptyExplanation(t *testing.T) {
	results, err := Run(zap.NewNop(), config.Default(), baseInputs())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Payroll at 8.3% fails the conjunctive standard profile.
	payroll := testutil.FindResult(results, "5210")
	if payroll == nil {
		t.Fatal("payroll row missing from output")
	}
	if payroll.Flagged {
		t.Error("payroll flagged at 8.3% under conjunctive standard profile")
	}
	if payroll.Explanation != "" {
		t.Errorf("unflagged explanation = %q, expected empty string", payroll.Explanation)
	}

	for _, result := range results {
		if !result.Flagged && result.Explanation != "" {
			t.Errorf("unflagged account %q has explanation %q", result.AccountLabel, result.Explanation)
		}
	}
}

func TestFlaggedAccountGetsNarrative(t *testing.T) {
	results, err := Run(zap.NewNop(), config.Default(), baseInputs())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	contract := testutil.FindResult(results, "5310")
	if contract == nil {
		t.Fatal("contract services row missing from output")
	}
	if !contract.Flagged {
		t.Fatal("contract services not flagged at $4,000 / 40%")
	}
	for _, fragment := range []string{"Unfavorable", "GL 5310", "$4,000.00", "continuing"} {
		if !strings.Contains(contract.Explanation, fragment) {
			t.Errorf("explanation %q missing %q", contract.Explanation, fragment)
		}
	}
	// No invoice dataset was supplied; the absence is an explicit fact.
	if !strings.Contains(strings.ToLower(contract.Explanation), "no recorded invoicing activity") {
		t.Errorf("explanation %q missing no-invoicing fact", contract.Explanation)
	}
}

func TestExclusionsNeverFlagged(t *testing.T) {
	results, err := Run(zap.NewNop(), config.Default(), baseInputs())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Subtotal rows are dropped at normalization, not merely unflagged.
	if testutil.FindResultByLabel(results, "Total Operating Expenses") != nil {
		t.Error("subtotal row survived normalization")
	}
	if len(results) != 4 {
		t.Errorf("result count = %d, expected 4", len(results))
	}

	// 7xxx accounts are excluded by prefix even when material.
	debt := testutil.FindResult(results, "7100")
	if debt == nil {
		t.Fatal("debt service row missing from output")
	}
	if debt.Flagged {
		t.Error("excluded 7xxx account was flagged")
	}
}

func TestStaffingNoteAppearsVerbatim(t *testing.T) {
	conf := config.Default()
	conf.Context.StaffingNote = "site is short two leasing agents"

	in := baseInputs()
	in.Report[1].PercentVariance = "15" // payroll now passes both gates

	results, err := Run(zap.NewNop(), conf, in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	payroll := testutil.FindResult(results, "5210")
	if payroll == nil || !payroll.Flagged {
		t.Fatal("payroll not flagged at 15%")
	}
	if !strings.Contains(payroll.Explanation, "site is short two leasing agents") {
		t.Errorf("explanation %q missing verbatim staffing note", payroll.Explanation)
	}

	// The staffing note is payroll-gated; contract services must not carry it.
	contract := testutil.FindResult(results, "5310")
	if strings.Contains(contract.Explanation, "site is short two leasing agents") {
		t.Error("staffing note leaked onto a non-payroll account")
	}
}

func TestBroadPolicyFlagsMore(t *testing.T) {
	conf := config.Default()
	conf.Policy = constants.ProfileBroad

	results, err := Run(zap.NewNop(), conf, baseInputs())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// $4,000 passes the broad disjunctive dollar leg even at 8.3 points.
	payroll := testutil.FindResult(results, "5210")
	if payroll == nil || !payroll.Flagged {
		t.Error("payroll not flagged under broad profile")
	}
}

func TestJournalAndInvoiceEvidenceInNarrative(t *testing.T) {
	in := baseInputs()
	in.Journal = []normalize.JournalRow{
		{Account: "5310", Memo: "Emergency roof repair", Debit: "1000", Credit: ""},
		{Account: "5310", Memo: "Monthly service", Debit: "100", Credit: ""},
		{Account: "5310", Memo: "Monthly service", Debit: "100", Credit: ""},
		{Account: "5310", Memo: "Reversal - duplicate", Debit: "100", Credit: ""},
	}
	in.Invoices = []normalize.InvoiceRow{
		{Account: "5310", InvoiceNumber: "INV-100", LineItemTotal: "100"},
		{Account: "5310", InvoiceNumber: "INV-101", LineItemTotal: "2000"},
		{Account: "5310", InvoiceNumber: "INV-102", LineItemTotal: "100"},
	}
	in.Trends = []normalize.TrendTable{
		{Name: "Unit Mix", Rows: [][]string{{"1BR", "120"}, {"2BR", "200"}, {"All", "320"}}},
	}

	results, err := Run(zap.NewNop(), config.Default(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	contract := testutil.FindResult(results, "5310")
	if contract == nil || !contract.Flagged {
		t.Fatal("contract services not flagged")
	}
	explanation := contract.Explanation

	// [1000 100 100 100]: avg 325, max 1000 >= 650, dominant posting clause.
	if !strings.Contains(explanation, "dominates") {
		t.Errorf("explanation %q missing dominant-posting clause", explanation)
	}
	if !strings.Contains(explanation, "1 reversal entry detected.") {
		t.Errorf("explanation %q missing reversal clause", explanation)
	}
	if !strings.Contains(explanation, "INV-101") {
		t.Errorf("explanation %q missing invoice outlier", explanation)
	}
	// 14000 actual across 320 units.
	if !strings.Contains(explanation, "$43.75") {
		t.Errorf("explanation %q missing per-unit cost", explanation)
	}
}

func TestMissingReportAborts(t *testing.T) {
	in := baseInputs()
	in.Report = nil

	_, err := Run(zap.NewNop(), config.Default(), in)
	var missing *normalize.MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("Run() error = %v, expected MissingSourceError", err)
	}
	if missing.Source != constants.SourceReport {
		t.Errorf("missing source = %q, expected %q", missing.Source, constants.SourceReport)
	}
}

func TestMissingChartAborts(t *testing.T) {
	in := baseInputs()
	in.Chart = nil

	_, err := Run(zap.NewNop(), config.Default(), in)
	var missing *normalize.MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("Run() error = %v, expected MissingSourceError", err)
	}
}

func TestRowOrderPreserved(t *testing.T) {
	results, err := Run(zap.NewNop(), config.Default(), baseInputs())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	expected := []string{"4105", "5210", "5310", "7100"}
	if len(results) != len(expected) {
		t.Fatalf("result count = %d, expected %d", len(results), len(expected))
	}
	for i, code := range expected {
		if results[i].GLCode != code {
			t.Errorf("results[%d].GLCode = %q, expected %q (input order)", i, results[i].GLCode, code)
		}
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	conf := config.Default()
	first, err := Run(zap.NewNop(), conf, baseInputs())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Run(zap.NewNop(), conf, baseInputs())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		for j := range first {
			if first[j].Explanation != again[j].Explanation || first[j].Flagged != again[j].Flagged {
				t.Fatalf("run %d diverged on row %d", i, j)
			}
		}
	}
}

func TestUnknownPolicyFails(t *testing.T) {
	conf := config.Default()
	conf.Policy = "nonexistent"

	if _, err := Run(zap.NewNop(), conf, baseInputs()); err == nil {
		t.Fatal("Run() succeeded with unknown policy, expected error")
	}
}

func TestIncomeDirectionInNarrative(t *testing.T) {
	results, err := Run(zap.NewNop(), config.Default(), baseInputs())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Application fees: income short of plan by $3,000 / 25 points.
	fees := testutil.FindResult(results, "4105")
	if fees == nil || !fees.Flagged {
		t.Fatal("application fees not flagged")
	}
	if !strings.Contains(fees.Explanation, "Unfavorable") {
		t.Errorf("explanation %q: income under plan must read unfavorable", fees.Explanation)
	}
	if !strings.Contains(fees.Explanation, "under budget") {
		t.Errorf("explanation %q missing under-budget direction", fees.Explanation)
	}
}
