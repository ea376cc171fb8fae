package mathutil

import "testing"

func TestRound(t *testing.T) {
	tests := []struct {
		value    float64
		expected float64
	}{
		{1.005, 1.0}, // floating representation of 1.005 sits just below
		{1.006, 1.01},
		{-2.344, -2.34},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round(tt.value); got != tt.expected {
			t.Errorf("Round(%v) = %v, expected %v", tt.value, got, tt.expected)
		}
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero(0.005) {
		t.Error("IsZero(0.005) = false, expected true")
	}
	if IsZero(0.02) {
		t.Error("IsZero(0.02) = true, expected false")
	}
}

func TestValueOrZero(t *testing.T) {
	if got := ValueOrZero(nil); got != 0 {
		t.Errorf("ValueOrZero(nil) = %v, expected 0", got)
	}
	if got := ValueOrZero(Ptr(42.5)); got != 42.5 {
		t.Errorf("ValueOrZero(42.5) = %v, expected 42.5", got)
	}
}

func TestAbsOrZero(t *testing.T) {
	tests := []struct {
		name     string
		value    *float64
		expected float64
	}{
		{
			name:     "Absent value compares as zero",
			value:    nil,
			expected: 0,
		},
		{
			name:     "Negative variance",
			value:    Ptr(-4000),
			expected: 4000,
		},
		{
			name:     "Positive variance",
			value:    Ptr(250.5),
			expected: 250.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AbsOrZero(tt.value); got != tt.expected {
				t.Errorf("AbsOrZero() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
