// Package evidence derives the per-account statistics from journal-entry and
// invoice detail that back the narrative clauses: counts, sums, averages,
// dominant-posting and elevated-volume detection, memo ranking, reversal
// counting, and per-unit cost.
package evidence

import (
	"regexp"
	"strings"

	"github.com/cortlandlabs/variance-explainer/internal/report"
	"github.com/cortlandlabs/variance-explainer/pkg/constants"
	"go.uber.org/zap"
)

// JournalEvidence summarizes the posted activity behind one flagged account.
// The zero value means no journal data was available for the account.
type JournalEvidence struct {
	EntryCount      int
	TotalPosted     float64
	AvgPosted       float64 // zero when EntryCount is zero
	MaxPosted       float64
	Dominant        bool // one posting at or above twice the average
	HighVolume      bool // entry count above the policy cutoff, no dominant posting
	ReversalCount   int
	TopMemos        []string
	RecurringMemo   string // memo that recurred across phase-split line items
	RecurringPhases int
}

// InvoiceEvidence summarizes invoice activity behind one flagged account.
// Present distinguishes "no invoice dataset / no matching rows" from a
// legitimate zero total; both are reported as no recorded invoicing activity.
type InvoiceEvidence struct {
	Present          bool
	TotalInvoiced    float64
	AvgInvoice       float64
	MaxInvoice       float64
	MaxInvoiceNumber string
}

// Outlier reports whether a single invoice drives the account's invoicing.
func (e InvoiceEvidence) Outlier() bool {
	return e.Present && e.AvgInvoice > 0 && e.MaxInvoice >= constants.DominanceFactor*e.AvgInvoice
}

// NoActivity reports the zero/absent-invoicing condition, which is surfaced
// as its own fact rather than silently omitted.
func (e InvoiceEvidence) NoActivity() bool {
	return !e.Present || e.TotalInvoiced == 0
}

// Options tune the aggregation rules that vary by policy profile.
type Options struct {
	VolumeCutoff int      // entry count above which activity is elevated
	CleanMemos   bool     // strip phase suffixes and noise memos before ranking
	NoiseTokens  []string // memos containing any token are excluded from ranking
}

// Aggregator computes evidence bundles for flagged accounts.
type Aggregator struct {
	options Options
	logger  *zap.Logger
}

// NewAggregator creates a new aggregator with the given options and logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewAggregator(options Options, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.VolumeCutoff <= 0 {
		options.VolumeCutoff = constants.StandardVolumeCutoff
	}
	return &Aggregator{options: options, logger: logger}
}

// phaseSuffix matches a trailing " - Phase N" marker on phase-split memos.
var phaseSuffix = regexp.MustCompile(`(?i)\s*-\s*phase\s*(\d+)\s*$`)

// GroupJournal indexes journal entries by GL code, keeping only codes in the
// working set. The reduction only trims the working set; correctness does not
// depend on it.
func GroupJournal(entries []report.JournalEntry, keep map[string]bool) map[string][]report.JournalEntry {
	grouped := make(map[string][]report.JournalEntry)
	for _, entry := range entries {
		if entry.GLCode == "" || !keep[entry.GLCode] {
			continue
		}
		grouped[entry.GLCode] = append(grouped[entry.GLCode], entry)
	}
	return grouped
}

// GroupInvoices indexes invoice records by GL code.
func GroupInvoices(records []report.InvoiceRecord) map[string][]report.InvoiceRecord {
	grouped := make(map[string][]report.InvoiceRecord)
	for _, record := range records {
		if record.GLCode == "" {
			continue
		}
		grouped[record.GLCode] = append(grouped[record.GLCode], record)
	}
	return grouped
}

// Journal aggregates the journal entries matching one account. An empty or
// nil slice yields the zero bundle (the dataset may simply not have been
// supplied).
func (a *Aggregator) Journal(entries []report.JournalEntry) JournalEvidence {
	bundle := JournalEvidence{}
	if len(entries) == 0 {
		return bundle
	}

	for _, entry := range entries {
		bundle.EntryCount++
		bundle.TotalPosted += entry.PostedAmount
		if entry.PostedAmount > bundle.MaxPosted {
			bundle.MaxPosted = entry.PostedAmount
		}
		if isReversal(entry.Memo) {
			bundle.ReversalCount++
		}
	}
	bundle.AvgPosted = bundle.TotalPosted / float64(bundle.EntryCount)

	if bundle.AvgPosted > 0 && bundle.MaxPosted >= constants.DominanceFactor*bundle.AvgPosted {
		bundle.Dominant = true
	} else if bundle.EntryCount > a.options.VolumeCutoff {
		bundle.HighVolume = true
	}

	bundle.TopMemos, bundle.RecurringMemo, bundle.RecurringPhases = a.rankMemos(entries)

	a.logger.Debug("journal evidence aggregated",
		zap.String("op", "evidence.Journal"),
		zap.Int("entryCount", bundle.EntryCount),
		zap.Float64("totalPosted", bundle.TotalPosted),
		zap.Bool("dominant", bundle.Dominant),
	)
	return bundle
}

// Invoices aggregates the invoice records matching one account. The maximum
// invoice tie-break is first occurrence in file order.
func (a *Aggregator) Invoices(records []report.InvoiceRecord) InvoiceEvidence {
	bundle := InvoiceEvidence{}
	counted := 0
	for _, record := range records {
		if record.LineItemTotal == nil {
			continue
		}
		bundle.Present = true
		counted++
		bundle.TotalInvoiced += *record.LineItemTotal
		if *record.LineItemTotal > bundle.MaxInvoice {
			bundle.MaxInvoice = *record.LineItemTotal
			bundle.MaxInvoiceNumber = record.SupplierInvoiceNumber
		}
	}
	if counted > 0 {
		bundle.AvgInvoice = bundle.TotalInvoiced / float64(counted)
	}
	return bundle
}

// PerUnitCost computes the supplementary per-unit fact when the unit count
// is known. The account's actual is preferred; total invoiced serves when
// the actual failed coercion.
func PerUnitCost(item report.AccountLineItem, invoice InvoiceEvidence, snapshot *report.TrendSnapshot) *float64 {
	if snapshot == nil || snapshot.TotalUnits == nil || *snapshot.TotalUnits <= 0 {
		return nil
	}
	var base float64
	switch {
	case item.Actual != nil:
		base = *item.Actual
	case invoice.Present:
		base = invoice.TotalInvoiced
	default:
		return nil
	}
	perUnit := base / *snapshot.TotalUnits
	return &perUnit
}

// rankMemos ranks non-empty memos by descending frequency with first-seen
// tie-break and returns up to TopMemoLimit distinct memo strings. With
// cleaning enabled, phase suffixes are stripped and noise memos excluded
// first, and the memo recurring across the most phases is surfaced.
func (a *Aggregator) rankMemos(entries []report.JournalEntry) (top []string, recurring string, phases int) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	phaseSets := make(map[string]map[string]bool)
	order := 0

	for _, entry := range entries {
		memo := entry.Memo
		if memo == "" {
			continue
		}
		if a.options.CleanMemos {
			if a.isNoise(memo) {
				continue
			}
			if match := phaseSuffix.FindStringSubmatch(memo); match != nil {
				cleaned := phaseSuffix.ReplaceAllString(memo, "")
				if phaseSets[cleaned] == nil {
					phaseSets[cleaned] = make(map[string]bool)
				}
				phaseSets[cleaned][match[1]] = true
				memo = cleaned
			}
		}
		if _, seen := counts[memo]; !seen {
			firstSeen[memo] = order
			order++
		}
		counts[memo]++
	}

	for len(top) < constants.TopMemoLimit {
		best := ""
		for memo, count := range counts {
			if best == "" {
				best = memo
				continue
			}
			if count > counts[best] || (count == counts[best] && firstSeen[memo] < firstSeen[best]) {
				best = memo
			}
		}
		if best == "" {
			break
		}
		top = append(top, best)
		delete(counts, best)
	}

	if a.options.CleanMemos {
		for memo, set := range phaseSets {
			if len(set) < 2 {
				continue
			}
			if len(set) > phases || (len(set) == phases && firstSeen[memo] < firstSeen[recurring]) {
				recurring = memo
				phases = len(set)
			}
		}
	}
	return top, recurring, phases
}

func (a *Aggregator) isNoise(memo string) bool {
	lower := strings.ToLower(memo)
	for _, token := range a.options.NoiseTokens {
		if token != "" && strings.Contains(lower, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

// isReversal reports whether a memo marks a reversing entry.
func isReversal(memo string) bool {
	lower := strings.ToLower(memo)
	return strings.Contains(lower, "reversal") || strings.Contains(lower, "reverse")
}
