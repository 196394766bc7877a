// Copyright (c) 2026 Komira. All rights reserved.

// Package query parses repeated and comma-separated URL query values.
package query

import (
	"strconv"
	"strings"
)

// IntSlice converts repeated query values to ints, silently skipping
// anything that does not parse.
func IntSlice(values []string) []int {
	var out []int
	for _, raw := range values {
		if n, err := strconv.Atoi(raw); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// StringSlice splits a comma-separated query value into trimmed,
// non-empty parts. An empty input yields nil.
func StringSlice(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
