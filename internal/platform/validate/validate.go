// Copyright (c) 2026 Komira. All rights reserved.

/*
Package validate provides a chainable input validator.

A handler builds one [Validator] per request, chains the rules that apply,
and calls Err once at the end. All failed rules are collected, so the
client sees every invalid field in a single VALIDATION_ERROR response
instead of fixing them one round-trip at a time.
*/
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/komira-app/komira/internal/platform/apperr"
)

var (
	// slugRegex accepts lowercase letters, digits, and inner hyphens.
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	// uuidRegex accepts the canonical dashed UUID form, any version.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator accumulates field-level failures across a rule chain. Not
// safe for concurrent use; build one per request.
type Validator struct {
	errs []apperr.FieldError
}

// add records one failed rule.
func (validator *Validator) add(field, message string) {
	validator.errs = append(validator.errs, apperr.FieldError{Field: field, Message: message})
}

// # Rules

// Required fails when the trimmed value is empty.
func (validator *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		validator.add(field, "This field is required")
	}
	return validator
}

// MaxLen fails when the value is longer than max runes.
func (validator *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		validator.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return validator
}

// MinLen fails when the value is shorter than min runes.
func (validator *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		validator.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return validator
}

// Range fails when the value falls outside [min, max].
func (validator *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		validator.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return validator
}

// Email fails when the value does not parse as an RFC 5322 address.
func (validator *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		validator.add(field, "Must be a valid email address")
	}
	return validator
}

// Slug fails when the value is not a URL slug: lowercase letters, digits,
// and hyphens, with no leading or trailing hyphen.
func (validator *Validator) Slug(field, value string) *Validator {
	if !slugRegex.MatchString(value) {
		validator.add(field, "Must be a valid URL slug (lowercase letters, digits, hyphens only)")
	}
	return validator
}

// UUID fails when the value is not a dashed UUID, case insensitive.
func (validator *Validator) UUID(field, value string) *Validator {
	if !uuidRegex.MatchString(strings.ToLower(value)) {
		validator.add(field, "Must be a valid UUID")
	}
	return validator
}

// OneOf fails when the value is not in the allowed set.
func (validator *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, candidate := range allowed {
		if value == candidate {
			return validator
		}
	}
	validator.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return validator
}

// Custom records a failure with the given message when failed is true.
// It covers rules the fixed set above cannot express, e.g.
//
//	validator.Custom("score", score < 1 || score > 10, "Must be between 1 and 10")
func (validator *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		validator.add(field, message)
	}
	return validator
}

// # Output

// Err returns a VALIDATION_ERROR carrying every failed rule, or nil when
// the chain passed. Call it once at the end of the chain.
func (validator *Validator) Err() error {
	if len(validator.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", validator.errs...)
}

// HasErrors reports whether any rule has failed so far.
func (validator *Validator) HasErrors() bool {
	return len(validator.errs) > 0
}

// RequiredError builds a single-field validation error without going
// through a chain.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
