// Package narrative deterministically assembles the explanation string for a
// flagged account. The composition is an ordered list of clause functions,
// each a pure function of the fact bundle returning a sentence and whether it
// fired; fired sentences are joined in fixed order so narratives stay
// diffable and each clause is testable for presence on its own.
package narrative

import (
	"fmt"
	"strings"

	"github.com/cortlandlabs/variance-explainer/internal/config"
	"github.com/cortlandlabs/variance-explainer/internal/evidence"
	"github.com/cortlandlabs/variance-explainer/internal/report"
	"github.com/cortlandlabs/variance-explainer/internal/trend"
	"github.com/cortlandlabs/variance-explainer/pkg/format"
	"github.com/cortlandlabs/variance-explainer/pkg/glcode"
	"go.uber.org/zap"
)

// Facts is the full derived-fact bundle for one flagged account. Every input
// arrives as an explicit argument; clauses never reach into ambient state.
type Facts struct {
	Item           report.AccountLineItem
	Chart          *report.ChartEntry
	Journal        evidence.JournalEvidence
	Invoice        evidence.InvoiceEvidence
	PerUnit        *float64
	Classification trend.Classification
	Snapshot       *report.TrendSnapshot
	Topics         []string
	Context        report.MonthlyContext
}

// Clause renders one optional sentence from the fact bundle.
type Clause func(Facts) (string, bool)

// Composer renders explanations through its fixed clause order.
type Composer struct {
	clauses []Clause
	logger  *zap.Logger
}

// NewComposer creates a new composer with the standard clause order.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewComposer(logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		clauses: []Clause{
			headerClause,
			ytdClause,
			topicTrendClause,
			journalActivityClause,
			journalPatternClause,
			reversalClause,
			memoClause,
			invoiceClause,
			perUnitClause,
			majorEventClause,
			delayClause,
			moveOutClause,
			staffingClause,
		},
		logger: logger,
	}
}

// Compose renders the explanation for one flagged account.
func (c *Composer) Compose(facts Facts) string {
	var sentences []string
	for _, clause := range c.clauses {
		if sentence, fired := clause(facts); fired {
			sentences = append(sentences, sentence)
		}
	}
	explanation := strings.Join(sentences, " ")
	c.logger.Debug("explanation composed",
		zap.String("op", "narrative.Compose"),
		zap.String("glCode", facts.Item.GLCode),
		zap.Int("clauses", len(sentences)),
	)
	return explanation
}

// Direction words for the header clause. Unfavorable means the variance
// moves the account away from plan in the direction that harms net operating
// income: positive for expense accounts, negative for income accounts.
func direction(item report.AccountLineItem) (word string, overUnder string) {
	variance := 0.0
	if item.DollarVariance != nil {
		variance = *item.DollarVariance
	}
	if variance > 0 {
		overUnder = "over"
	} else {
		overUnder = "under"
	}

	harmful := variance > 0
	if isIncomeAccount(item) {
		harmful = variance < 0
	}
	if harmful {
		return "Unfavorable", overUnder
	}
	return "Favorable", overUnder
}

func isIncomeAccount(item report.AccountLineItem) bool {
	if glcode.IsIncome(item.GLCode) {
		return true
	}
	lower := strings.ToLower(item.AccountLabel)
	for _, keyword := range []string{"income", "revenue", "rent"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// describe picks the best available account description, falling back the
// way the source report does.
func describe(facts Facts) string {
	if facts.Chart != nil {
		if facts.Chart.Description != "" {
			return facts.Chart.Description
		}
		if facts.Chart.Title != "" {
			return facts.Chart.Title
		}
	}
	if facts.Item.AccountLabel != "" {
		return facts.Item.AccountLabel
	}
	return "this account"
}

func headerClause(facts Facts) (string, bool) {
	word, overUnder := direction(facts.Item)
	var b strings.Builder
	fmt.Fprintf(&b, "%s variance in %s (GL %s)", word, describe(facts), facts.Item.GLCode)
	if facts.Item.Actual != nil && facts.Item.Budget != nil {
		fmt.Fprintf(&b, ": actual %s against a budget of %s", format.Currency(*facts.Item.Actual), format.Currency(*facts.Item.Budget))
	}
	if facts.Item.DollarVariance != nil {
		fmt.Fprintf(&b, ", %s %s budget", format.Currency(abs(*facts.Item.DollarVariance)), overUnder)
		if facts.Item.PercentVariance != nil {
			fmt.Fprintf(&b, " (%s)", format.Percent(abs(*facts.Item.PercentVariance)))
		}
	}
	b.WriteString(".")
	return b.String(), true
}

func ytdClause(facts Facts) (string, bool) {
	ytd := trend.YTDVariance(facts.Item)
	switch facts.Classification {
	case trend.Continuing:
		return fmt.Sprintf("The year-to-date variance of %s exceeds the monthly variance, indicating a continuing trend.", format.Currency(*ytd)), true
	case trend.Isolated:
		return "The variance appears isolated to the current period; year-to-date performance remains closer to plan.", true
	}
	return "", false
}

func topicTrendClause(facts Facts) (string, bool) {
	if facts.Snapshot == nil {
		return "", false
	}
	var parts []string
	if trend.Matched(facts.Topics, config.TopicLeasing) && facts.Snapshot.LeasingApplications != nil {
		pair := facts.Snapshot.LeasingApplications
		parts = append(parts, fmt.Sprintf("Leasing applications moved from %.0f to %.0f period over period.", pair.Prior, pair.Current))
	}
	if trend.Matched(facts.Topics, config.TopicTurnover) && facts.Snapshot.MoveOuts != nil {
		pair := facts.Snapshot.MoveOuts
		parts = append(parts, fmt.Sprintf("Move-outs moved from %.0f to %.0f period over period.", pair.Prior, pair.Current))
	}
	if trend.Matched(facts.Topics, config.TopicOccupancy) && facts.Snapshot.OccupancyActualPct != nil && facts.Snapshot.OccupancyBudgetPct != nil {
		parts = append(parts, fmt.Sprintf("Occupancy ran at %s against a budgeted %s.",
			format.Percent(*facts.Snapshot.OccupancyActualPct), format.Percent(*facts.Snapshot.OccupancyBudgetPct)))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func journalActivityClause(facts Facts) (string, bool) {
	if facts.Journal.EntryCount == 0 {
		return "", false
	}
	noun := "entries"
	if facts.Journal.EntryCount == 1 {
		noun = "entry"
	}
	return fmt.Sprintf("%s journal %s posted totaling %s.",
		format.Count(facts.Journal.EntryCount), noun, format.Currency(facts.Journal.TotalPosted)), true
}

func journalPatternClause(facts Facts) (string, bool) {
	if facts.Journal.Dominant {
		return fmt.Sprintf("A single posting of %s dominates the account activity (average posting %s).",
			format.Currency(facts.Journal.MaxPosted), format.Currency(facts.Journal.AvgPosted)), true
	}
	if facts.Journal.HighVolume {
		return fmt.Sprintf("Entry volume is elevated at %s entries with no single dominant posting.",
			format.Count(facts.Journal.EntryCount)), true
	}
	return "", false
}

func reversalClause(facts Facts) (string, bool) {
	if facts.Journal.ReversalCount == 0 {
		return "", false
	}
	noun := "entries"
	if facts.Journal.ReversalCount == 1 {
		noun = "entry"
	}
	return fmt.Sprintf("%d reversal %s detected.", facts.Journal.ReversalCount, noun), true
}

func memoClause(facts Facts) (string, bool) {
	if len(facts.Journal.TopMemos) == 0 {
		return "", false
	}
	quoted := make([]string, len(facts.Journal.TopMemos))
	for i, memo := range facts.Journal.TopMemos {
		quoted[i] = fmt.Sprintf("%q", memo)
	}
	sentence := fmt.Sprintf("Most frequent memos: %s.", strings.Join(quoted, ", "))
	if facts.Journal.RecurringMemo != "" {
		sentence += fmt.Sprintf(" %q recurred across %d phases.", facts.Journal.RecurringMemo, facts.Journal.RecurringPhases)
	}
	return sentence, true
}

func invoiceClause(facts Facts) (string, bool) {
	if facts.Invoice.NoActivity() {
		return "No recorded invoicing activity for this account.", true
	}
	if facts.Invoice.Outlier() {
		sentence := fmt.Sprintf("Invoice %s of %s is at least twice the average invoice of %s; the variance appears invoice-driven.",
			facts.Invoice.MaxInvoiceNumber, format.Currency(facts.Invoice.MaxInvoice), format.Currency(facts.Invoice.AvgInvoice))
		return sentence, true
	}
	return fmt.Sprintf("Total invoicing of %s recorded against this account.", format.Currency(facts.Invoice.TotalInvoiced)), true
}

func perUnitClause(facts Facts) (string, bool) {
	if facts.PerUnit == nil || facts.Snapshot == nil || facts.Snapshot.TotalUnits == nil {
		return "", false
	}
	return fmt.Sprintf("Per-unit cost is %s across %.0f units.", format.Currency(*facts.PerUnit), *facts.Snapshot.TotalUnits), true
}

// The operator notes are user-asserted facts. Major-event and delay notes
// are unconditional once supplied; the move-out and staffing notes are gated
// on the account matching the turnover and payroll topics respectively.

func majorEventClause(facts Facts) (string, bool) {
	if facts.Context.MajorEvent == "" {
		return "", false
	}
	return fmt.Sprintf("Operator note: %s.", facts.Context.MajorEvent), true
}

func delayClause(facts Facts) (string, bool) {
	if facts.Context.DelayNote == "" {
		return "", false
	}
	return fmt.Sprintf("Timing note: %s.", facts.Context.DelayNote), true
}

func moveOutClause(facts Facts) (string, bool) {
	if facts.Context.MoveOutNote == "" || !trend.Matched(facts.Topics, config.TopicTurnover) {
		return "", false
	}
	return fmt.Sprintf("Move-out note: %s.", facts.Context.MoveOutNote), true
}

func staffingClause(facts Facts) (string, bool) {
	if facts.Context.StaffingNote == "" || !trend.Matched(facts.Topics, config.TopicPayroll) {
		return "", false
	}
	return fmt.Sprintf("Staffing note: %s.", facts.Context.StaffingNote), true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
