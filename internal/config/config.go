// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"strings"

	"github.com/cortlandlabs/variance-explainer/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for variance-explainer.
type Configuration struct {
	Policy       string        `yaml:"policy,omitempty"` // name of the materiality profile to apply
	Profiles     []Profile     `yaml:"profiles,omitempty"`
	Exclusions   []string      `yaml:"exclusions,omitempty"` // label prefixes never flagged
	MemoCleaning MemoCleaning  `yaml:"memoCleaning,omitempty"`
	Topics       []Topic       `yaml:"topics,omitempty"`
	Context      ContextNotes  `yaml:"context,omitempty"`
	Logging      LoggingConfig `yaml:"logging,omitempty"`
	Output       OutputConfig  `yaml:"output,omitempty"`
}

// Profile is one named materiality rule variant. Both published variants of
// the gate (conjunctive and disjunctive) are expressed through Mode rather
// than hybridized.
type Profile struct {
	Name         string  `yaml:"name"`
	DollarMin    float64 `yaml:"dollarMin"`
	PercentMin   float64 `yaml:"percentMin"` // in the units the report variant publishes
	Mode         string  `yaml:"mode,omitempty"` // conjunctive (default), disjunctive
	VolumeCutoff int     `yaml:"volumeCutoff,omitempty"`
}

// ModeConjunctive and ModeDisjunctive are the accepted Profile.Mode values.
const (
	ModeConjunctive = "conjunctive"
	ModeDisjunctive = "disjunctive"
)

// MemoCleaning controls the optional memo-cleaning step applied before memo
// frequency ranking.
type MemoCleaning struct {
	Enabled     bool     `yaml:"enabled,omitempty"`
	NoiseTokens []string `yaml:"noiseTokens,omitempty"` // memos containing any token are excluded
}

// Topic maps a trend topic to the keywords that select it from an account's
// title, description, or label.
type Topic struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Topic names with engine-side behavior attached (trend deltas, context-note
// gating). Additional topics may be configured but carry no built-in facts.
const (
	TopicLeasing   = "leasing"
	TopicTurnover  = "turnover"
	TopicOccupancy = "occupancy"
	TopicPayroll   = "payroll"
)

// ContextNotes holds the operator-supplied free-text notes for the period.
type ContextNotes struct {
	MajorEvent   string `yaml:"majorEvent,omitempty"`
	DelayNote    string `yaml:"delayNote,omitempty"`
	MoveOutNote  string `yaml:"moveOutNote,omitempty"`
	StaffingNote string `yaml:"staffingNote,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
	File   string `yaml:"file,omitempty"`   // csv destination, default variance_explanations.csv
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there, with built-in defaults applied for anything omitted.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// Default returns a Configuration with all built-in defaults applied, for
// callers running without a config file.
func Default() *Configuration {
	conf := &Configuration{}
	conf.ApplyDefaults()
	return conf
}

// DefaultExclusions is the built-in exclusion-prefix overlay: subtotal and
// rollup labels plus the GL ranges the report variants never explain.
func DefaultExclusions() []string {
	return []string{"Total", "Net", "Income", "4011", "4012", "6", "7", "8999"}
}

// DefaultProfiles returns the built-in materiality rule variants.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:         constants.ProfileStandard,
			DollarMin:    constants.StandardDollarMin,
			PercentMin:   constants.StandardPercentMin,
			Mode:         ModeConjunctive,
			VolumeCutoff: constants.StandardVolumeCutoff,
		},
		{
			Name:         constants.ProfileBroad,
			DollarMin:    constants.BroadDollarMin,
			PercentMin:   constants.BroadPercentMin,
			Mode:         ModeDisjunctive,
			VolumeCutoff: constants.BroadVolumeCutoff,
		},
	}
}

// DefaultTopics returns the built-in keyword-to-trend topic mapping.
func DefaultTopics() []Topic {
	return []Topic{
		{Name: TopicLeasing, Keywords: []string{"application", "leasing fee"}},
		{Name: TopicTurnover, Keywords: []string{"make ready", "make-ready", "turnover"}},
		{Name: TopicOccupancy, Keywords: []string{"occupancy", "vacancy", "rent"}},
		{Name: TopicPayroll, Keywords: []string{"payroll", "salaries", "wages", "staffing"}},
	}
}

// ApplyDefaults fills every omitted section with its built-in default so an
// empty configuration file still yields a runnable engine.
func (c *Configuration) ApplyDefaults() {
	if c.Policy == "" {
		c.Policy = constants.ProfileStandard
	}
	if len(c.Profiles) == 0 {
		c.Profiles = DefaultProfiles()
	}
	if len(c.Exclusions) == 0 {
		c.Exclusions = DefaultExclusions()
	}
	if len(c.Topics) == 0 {
		c.Topics = DefaultTopics()
	}
	for i := range c.Profiles {
		if c.Profiles[i].Mode == "" {
			c.Profiles[i].Mode = ModeConjunctive
		}
		if c.Profiles[i].VolumeCutoff == 0 {
			c.Profiles[i].VolumeCutoff = constants.StandardVolumeCutoff
		}
	}
}

// SelectedProfile resolves the configured policy name against the profile
// list.
func (c *Configuration) SelectedProfile() (Profile, error) {
	for _, profile := range c.Profiles {
		if profile.Name == c.Policy {
			return profile, nil
		}
	}
	return Profile{}, fmt.Errorf("no materiality profile named %q is configured", c.Policy)
}

// MonthlyContextNotes returns the operator notes in their engine-facing form.
func (c *Configuration) MonthlyContextNotes() (major, delay, moveOut, staffing string) {
	return c.Context.MajorEvent, c.Context.DelayNote, c.Context.MoveOutNote, c.Context.StaffingNote
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	seen := make(map[string]bool)
	for _, profile := range c.Profiles {
		if profile.Name == "" {
			warnings = append(warnings, "a materiality profile has no name and cannot be selected")
			continue
		}
		if seen[profile.Name] {
			warnings = append(warnings, fmt.Sprintf("materiality profile %q is defined more than once; the first definition wins", profile.Name))
		}
		seen[profile.Name] = true
		if profile.Mode != ModeConjunctive && profile.Mode != ModeDisjunctive {
			warnings = append(warnings, fmt.Sprintf("materiality profile %q has unknown mode %q; expected %s or %s", profile.Name, profile.Mode, ModeConjunctive, ModeDisjunctive))
		}
		if profile.DollarMin < 0 || profile.PercentMin < 0 {
			warnings = append(warnings, fmt.Sprintf("materiality profile %q has a negative threshold", profile.Name))
		}
		if profile.VolumeCutoff < 0 {
			warnings = append(warnings, fmt.Sprintf("materiality profile %q has a negative volume cutoff", profile.Name))
		}
	}
	if !seen[c.Policy] {
		warnings = append(warnings, fmt.Sprintf("selected policy %q does not match any configured profile", c.Policy))
	}

	for _, topic := range c.Topics {
		if topic.Name == "" {
			warnings = append(warnings, "a trend topic has no name")
		}
		if len(topic.Keywords) == 0 {
			warnings = append(warnings, fmt.Sprintf("trend topic %q has no keywords and will never match", topic.Name))
		}
		for _, keyword := range topic.Keywords {
			if strings.TrimSpace(keyword) == "" {
				warnings = append(warnings, fmt.Sprintf("trend topic %q contains a blank keyword", topic.Name))
			}
		}
	}

	if c.MemoCleaning.Enabled && len(c.MemoCleaning.NoiseTokens) == 0 {
		warnings = append(warnings, "memo cleaning is enabled with no noise tokens; only phase suffixes will be stripped")
	}

	return warnings
}
