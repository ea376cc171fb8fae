// Package trend classifies a flagged account's variance against its
// year-to-date position and matches accounts to configured trend topics so
// the relevant occupancy/leasing/move-out deltas can be surfaced.
package trend

import (
	"math"
	"strings"

	"github.com/cortlandlabs/variance-explainer/internal/config"
	"github.com/cortlandlabs/variance-explainer/internal/report"
	"go.uber.org/zap"
)

// Classification labels a variance as sustained year-to-date or a
// single-period anomaly. Accounts without both YTD figures get no label.
type Classification string

const (
	// Unclassified means YTD figures were absent; neither label is defaulted.
	Unclassified Classification = ""

	// Continuing means the YTD variance exceeds the period variance in
	// magnitude.
	Continuing Classification = "continuing"

	// Isolated means the period variance is not exceeded year-to-date.
	Isolated Classification = "isolated"
)

// Classify compares the period variance to the year-to-date variance.
func Classify(item report.AccountLineItem) Classification {
	if item.YTDActual == nil || item.YTDBudget == nil {
		return Unclassified
	}
	ytdVariance := *item.YTDActual - *item.YTDBudget
	period := 0.0
	if item.DollarVariance != nil {
		period = *item.DollarVariance
	}
	if math.Abs(ytdVariance) > math.Abs(period) {
		return Continuing
	}
	return Isolated
}

// YTDVariance returns the year-to-date variance when both figures are
// present.
func YTDVariance(item report.AccountLineItem) *float64 {
	if item.YTDActual == nil || item.YTDBudget == nil {
		return nil
	}
	variance := *item.YTDActual - *item.YTDBudget
	return &variance
}

// Matcher resolves accounts to the configured trend topics by keyword.
type Matcher struct {
	topics []config.Topic
	logger *zap.Logger
}

// NewMatcher creates a new topic matcher with the given topic configuration
// and logger. If logger is nil, it will use a no-op logger to prevent panics.
func NewMatcher(topics []config.Topic, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{topics: topics, logger: logger}
}

// Match returns the names of every topic whose keywords appear in the
// account's label or chart metadata, in configured topic order.
func (m *Matcher) Match(item report.AccountLineItem, chart *report.ChartEntry) []string {
	haystack := strings.ToLower(item.AccountLabel)
	if chart != nil {
		haystack += " " + strings.ToLower(chart.Title) + " " + strings.ToLower(chart.Description)
	}

	var matched []string
	for _, topic := range m.topics {
		for _, keyword := range topic.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}
			if strings.Contains(haystack, keyword) {
				m.logger.Debug("trend topic matched",
					zap.String("op", "trend.Match"),
					zap.String("accountLabel", item.AccountLabel),
					zap.String("topic", topic.Name),
					zap.String("keyword", keyword),
				)
				matched = append(matched, topic.Name)
				break
			}
		}
	}
	return matched
}

// Matched reports whether a topic name is in the matched set.
func Matched(topics []string, name string) bool {
	for _, topic := range topics {
		if topic == name {
			return true
		}
	}
	return false
}
