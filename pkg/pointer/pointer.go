// Copyright (c) 2026 Komira. All rights reserved.

// Package pointer removes the boilerplate around optional values held as
// pointers: taking the address of a literal and dereferencing with a
// default when the pointer is nil.
package pointer

// To returns a pointer to value, so literals can feed pointer fields
// without an intermediate variable.
func To[T any](value T) *T {
	return &value
}

// Val dereferences p, returning the zero value of T when p is nil.
func Val[T any](p *T) T {
	var zero T
	return Fallback(p, zero)
}

// Fallback dereferences p, returning def when p is nil.
func Fallback[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
