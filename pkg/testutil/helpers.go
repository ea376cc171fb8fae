// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/cortlandlabs/variance-explainer/internal/report"
)

// FindResult finds a result row by GL code in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []report.ExplanationResult, glCode string) *report.ExplanationResult {
	for i := range results {
		if results[i].GLCode == glCode {
			return &results[i]
		}
	}
	return nil
}

// FindResultByLabel finds a result row by its account label.
// Returns a pointer to the result if found, nil otherwise.
func FindResultByLabel(results []report.ExplanationResult, label string) *report.ExplanationResult {
	for i := range results {
		if results[i].AccountLabel == label {
			return &results[i]
		}
	}
	return nil
}
