package parser

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
		ok       bool
	}{
		{"1/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"3/4/2024", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), true},
		{"2024-02-15T18:30:00Z", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), true},
		{"Jan 5, 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{" 12/01/2023 ", time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"not a date", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		result, ok := ParseDate(tt.input)
		if ok != tt.ok || !result.Equal(tt.expected) {
			t.Errorf("ParseDate(%q) = %v, %v, expected %v, %v", tt.input, result, ok, tt.expected, tt.ok)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"45", 45},
		{" 12.5 ", 12.5},
		{"-3", -3},
		{"1e2", 100},
		{"5,000", 5000},
		{"1,234,567.5", 1234567.5},
		{"12,34", 0},
		{"abc", 0},
		{"", 0},
		{"NaN", 0},
		{"Inf", 0},
	}

	for _, tt := range tests {
		result := ParseNumber(tt.input)
		if result != tt.expected {
			t.Errorf("ParseNumber(%q) = %v, expected %v", tt.input, result, tt.expected)
		}
	}
}
