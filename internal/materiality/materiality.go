// Package materiality applies the configured materiality gate and exclusion
// overlay to decide which accounts require an explanation.
package materiality

import (
	"strings"

	"github.com/cortlandlabs/variance-explainer/internal/config"
	"github.com/cortlandlabs/variance-explainer/internal/report"
	"github.com/cortlandlabs/variance-explainer/pkg/mathutil"
	"go.uber.org/zap"
)

// Policy is one resolved materiality rule variant plus the exclusion overlay.
type Policy struct {
	Name         string
	DollarMin    float64
	PercentMin   float64
	Disjunctive  bool
	VolumeCutoff int
	Exclusions   []string
}

// PolicyFromProfile resolves a configured profile and exclusion list into an
// engine policy.
func PolicyFromProfile(profile config.Profile, exclusions []string) Policy {
	return Policy{
		Name:         profile.Name,
		DollarMin:    profile.DollarMin,
		PercentMin:   profile.PercentMin,
		Disjunctive:  profile.Mode == config.ModeDisjunctive,
		VolumeCutoff: profile.VolumeCutoff,
		Exclusions:   exclusions,
	}
}

// Flagger decides per account whether the variance is material.
type Flagger struct {
	policy Policy
	logger *zap.Logger
}

// NewFlagger creates a new flagger with the given policy and logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewFlagger(policy Policy, logger *zap.Logger) *Flagger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flagger{policy: policy, logger: logger}
}

// Flag returns the flagged decision for every item in report order.
func (f *Flagger) Flag(items []report.AccountLineItem) []bool {
	flags := make([]bool, len(items))
	for i, item := range items {
		flags[i] = f.ShouldExplain(item)
	}
	return flags
}

// ShouldExplain applies the exclusion overlay and then the materiality gate.
// Absent variances compare as zero so an uncoercible value can never be
// fabricated into a material one.
func (f *Flagger) ShouldExplain(item report.AccountLineItem) bool {
	if item.GLCode == "" {
		return false
	}
	for _, prefix := range f.policy.Exclusions {
		if strings.HasPrefix(item.AccountLabel, prefix) {
			f.logger.Debug("account excluded by prefix",
				zap.String("op", "materiality.ShouldExplain"),
				zap.String("accountLabel", item.AccountLabel),
				zap.String("prefix", prefix),
			)
			return false
		}
	}

	dollarMaterial := mathutil.AbsOrZero(item.DollarVariance) >= f.policy.DollarMin
	percentMaterial := mathutil.AbsOrZero(item.PercentVariance) >= f.policy.PercentMin
	if f.policy.Disjunctive {
		return dollarMaterial || percentMaterial
	}
	return dollarMaterial && percentMaterial
}
