// Copyright (c) 2026 Komira. All rights reserved.

// Package slice carries the generic slice helpers the standard [slices]
// package stops short of, mainly projecting one element type onto another.
package slice

// Map applies fn to every element and returns the projected slice.
// A nil input yields nil.
func Map[T, U any](in []T, fn func(T) U) []U {
	if in == nil {
		return nil
	}
	out := make([]U, len(in))
	for i := range in {
		out[i] = fn(in[i])
	}
	return out
}

// Filter returns the elements for which keep reports true, preserving
// order. A nil input yields nil.
func Filter[T any](in []T, keep func(T) bool) []T {
	if in == nil {
		return nil
	}
	var out []T
	for _, element := range in {
		if keep(element) {
			out = append(out, element)
		}
	}
	return out
}
