// Package glcode provides general-ledger account code utility functions.
package glcode

import (
	"regexp"
	"strings"

	"github.com/cortlandlabs/variance-explainer/pkg/constants"
)

// fourDigitRun matches the first run of exactly four consecutive digits.
var fourDigitRun = regexp.MustCompile(`(^|\D)(\d{4})(\D|$)`)

// Extract returns the first run of exactly four consecutive digits found
// anywhere in the given label, or "" when the label carries no GL code.
func Extract(label string) string {
	match := fourDigitRun.FindStringSubmatch(label)
	if match == nil {
		return ""
	}
	return match[2]
}

// Normalize canonicalizes a GL code identifier by trimming whitespace,
// dropping a trailing ".0" left over from numeric coercion, and zero-padding
// to four characters. Returns "" for values that are not numeric codes.
// Normalizing an already-canonical code returns it unchanged.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if dot := strings.IndexByte(code, '.'); dot >= 0 {
		code = code[:dot]
	}
	if code == "" || len(code) > constants.GLCodeLength {
		return ""
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return strings.Repeat("0", constants.GLCodeLength-len(code)) + code
}

// IsIncome reports whether a canonical GL code falls in the income account
// range used for the favorable/unfavorable sign convention.
func IsIncome(code string) bool {
	if len(code) != constants.GLCodeLength {
		return false
	}
	n := 0
	for _, r := range code {
		n = n*10 + int(r-'0')
	}
	return n >= constants.IncomeRangeLow && n <= constants.IncomeRangeHigh
}
