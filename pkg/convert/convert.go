// Copyright (c) 2026 Komira. All rights reserved.

// Package convert holds fault-tolerant string conversions for query
// parameter parsing. Failures collapse to a zero value or a caller
// default; use strconv directly where malformed input must be
// distinguishable from an absent one.
package convert

import "strconv"

// ToInt parses an integer, returning 0 for empty or malformed input.
func ToInt(s string) int {
	value, _ := strconv.Atoi(s)
	return value
}

// ToIntD parses an integer, returning def for empty or malformed input.
func ToIntD(s string, def int) int {
	if s == "" {
		return def
	}
	value, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return value
}

// ToBool parses a boolean ("true", "1", "false", "0"), returning false
// for empty or malformed input.
func ToBool(s string) bool {
	value, _ := strconv.ParseBool(s)
	return value
}

// ToFloat64 parses a float, returning 0 for empty or malformed input.
func ToFloat64(s string) float64 {
	value, _ := strconv.ParseFloat(s, 64)
	return value
}
