// Package constants provides shared constants for the variance-explainer application.
package constants

// Materiality profile names
const (
	// ProfileStandard is the strict conjunctive materiality profile
	ProfileStandard = "standard"

	// ProfileBroad is the looser disjunctive materiality profile
	ProfileBroad = "broad"
)

// Materiality thresholds
const (
	// StandardDollarMin is the dollar-variance threshold for the standard profile
	StandardDollarMin = 2000.0

	// StandardPercentMin is the percent-variance threshold for the standard
	// profile, in percentage points
	StandardPercentMin = 10.0

	// StandardVolumeCutoff is the journal entry count above which activity is
	// considered elevated under the standard profile
	StandardVolumeCutoff = 5

	// BroadDollarMin is the dollar-variance threshold for the broad profile
	BroadDollarMin = 1000.0

	// BroadPercentMin is the percent-variance threshold for the broad profile,
	// expressed as a fraction per that report variant
	BroadPercentMin = 0.1

	// BroadVolumeCutoff is the elevated-activity entry count for the broad profile
	BroadVolumeCutoff = 3
)

// Evidence constants
const (
	// DominanceFactor is the multiple of the average posting (or invoice) at
	// which the maximum is considered to dominate the account's activity
	DominanceFactor = 2.0

	// TopMemoLimit is the number of most frequent distinct memos surfaced
	TopMemoLimit = 2
)

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// GL code constants
const (
	// GLCodeLength is the length of a canonical general-ledger account code
	GLCodeLength = 4

	// IncomeRangeLow and IncomeRangeHigh bound the GL codes treated as income
	// accounts for the favorable/unfavorable sign convention
	IncomeRangeLow  = 4000
	IncomeRangeHigh = 4999
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultResultsFile is the default name for the exported result table
	DefaultResultsFile = "variance_explanations.csv"
)

// Source names used in missing-source errors and log fields
const (
	SourceReport   = "budget-vs-actual report"
	SourceChart    = "chart of accounts"
	SourceJournal  = "journal entries"
	SourceInvoices = "invoices"
	SourceTrends   = "trends workbook"
)
