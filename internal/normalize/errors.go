package normalize

import "fmt"

// MissingSourceError indicates a required sheet or section was absent from
// the uploaded dataset. It is fatal: the run aborts before any output is
// produced.
type MissingSourceError struct {
	Source string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("required source missing: %s", e.Source)
}
