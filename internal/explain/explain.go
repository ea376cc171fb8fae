// Package explain orchestrates one variance explanation run: normalization,
// materiality flagging, evidence aggregation, trend classification, narrative
// composition, and assembly of the final result table. A run either returns
// the full result set or fails atomically before any output exists.
package explain

import (
	"fmt"

	"github.com/cortlandlabs/variance-explainer/internal/config"
	"github.com/cortlandlabs/variance-explainer/internal/evidence"
	"github.com/cortlandlabs/variance-explainer/internal/materiality"
	"github.com/cortlandlabs/variance-explainer/internal/narrative"
	"github.com/cortlandlabs/variance-explainer/internal/normalize"
	"github.com/cortlandlabs/variance-explainer/internal/report"
	"github.com/cortlandlabs/variance-explainer/internal/trend"
	"go.uber.org/zap"
)

// Inputs carries one uploaded dataset in raw row form. Report and Chart are
// required; the secondary datasets are optional and may be nil. Each run
// owns its inputs end to end; nothing is shared between invocations.
type Inputs struct {
	Report   []normalize.ReportRow
	Chart    []normalize.ChartRow
	Journal  []normalize.JournalRow
	Invoices []normalize.InvoiceRow
	Trends   []normalize.TrendTable
	Context  report.MonthlyContext
}

// Run executes the full pipeline over one dataset under the configured
// policy and returns one result row per account in original report order.
func Run(logger *zap.Logger, conf *config.Configuration, in Inputs) ([]report.ExplanationResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = config.Default()
	}

	profile, err := conf.SelectedProfile()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve materiality policy: %w", err)
	}
	policy := materiality.PolicyFromProfile(profile, conf.Exclusions)

	normalizer := normalize.NewNormalizer(logger)
	items, err := normalizer.Report(in.Report)
	if err != nil {
		return nil, err
	}
	chart, err := normalizer.Chart(in.Chart)
	if err != nil {
		return nil, err
	}
	journal := normalizer.Journal(in.Journal)
	invoices := normalizer.Invoices(in.Invoices)
	snapshot := normalizer.Trends(in.Trends)

	flagger := materiality.NewFlagger(policy, logger)
	flags := flagger.Flag(items)

	flaggedCodes := make(map[string]bool)
	for i, item := range items {
		if flags[i] && item.GLCode != "" {
			flaggedCodes[item.GLCode] = true
		}
	}
	logger.Info("materiality gate applied",
		zap.String("op", "explain.Run"),
		zap.String("policy", policy.Name),
		zap.Int("accounts", len(items)),
		zap.Int("flagged", len(flaggedCodes)),
	)

	// Working-set reduction: only flagged accounts need journal detail.
	journalByCode := evidence.GroupJournal(journal, flaggedCodes)
	invoicesByCode := evidence.GroupInvoices(invoices)

	aggregator := evidence.NewAggregator(evidence.Options{
		VolumeCutoff: policy.VolumeCutoff,
		CleanMemos:   conf.MemoCleaning.Enabled,
		NoiseTokens:  conf.MemoCleaning.NoiseTokens,
	}, logger)
	matcher := trend.NewMatcher(conf.Topics, logger)
	composer := narrative.NewComposer(logger)

	major, delay, moveOut, staffing := conf.MonthlyContextNotes()
	notes := report.MonthlyContext{
		MajorEvent:   major,
		DelayNote:    delay,
		MoveOutNote:  moveOut,
		StaffingNote: staffing,
	}
	if in.Context != (report.MonthlyContext{}) {
		notes = in.Context
	}

	explanations := make([]string, len(items))
	for i, item := range items {
		if !flags[i] {
			continue
		}

		var chartEntry *report.ChartEntry
		if entry, found := chart[item.GLCode]; found {
			entryCopy := entry
			chartEntry = &entryCopy
		}

		journalBundle := aggregator.Journal(journalByCode[item.GLCode])
		invoiceBundle := aggregator.Invoices(invoicesByCode[item.GLCode])
		facts := narrative.Facts{
			Item:           item,
			Chart:          chartEntry,
			Journal:        journalBundle,
			Invoice:        invoiceBundle,
			PerUnit:        evidence.PerUnitCost(item, invoiceBundle, snapshot),
			Classification: trend.Classify(item),
			Snapshot:       snapshot,
			Topics:         matcher.Match(item, chartEntry),
			Context:        notes,
		}
		explanations[i] = composer.Compose(facts)
	}

	return report.Assemble(items, flags, explanations), nil
}
