package source

import (
	_ "embed"
)

//go:embed sample.csv
var sample string

// Sample returns the built-in sample dataset.
func Sample() string {
	return sample
}
