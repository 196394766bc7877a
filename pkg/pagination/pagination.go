// Copyright (c) 2026 Komira. All rights reserved.

// Package pagination standardizes page-based list navigation: how the
// page and limit arrive in the query string, and how the count metadata
// goes back out in the response envelope.
package pagination

import (
	"net/http"

	"github.com/komira-app/komira/pkg/convert"
)

const (
	// DefaultLimit is the page size when the client does not ask for one.
	DefaultLimit = 20

	// MaxLimit caps the page size a client can request.
	MaxLimit = 100

	// DefaultPage is the first page; pages are 1-indexed.
	DefaultPage = 1
)

// Params is the parsed page and limit of a list request.
type Params struct {
	Page  int
	Limit int
}

// Offset converts the page number into a SQL OFFSET.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the count metadata attached to list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta derives the metadata block, rounding TotalPages up so a partial
// final page still counts.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// FromRequest parses the "page" and "limit" query parameters. Missing,
// malformed, or out-of-range values fall back to the defaults rather
// than erroring; a bad limit never becomes an unbounded query.
func FromRequest(r *http.Request) Params {
	page := convert.ToIntD(r.URL.Query().Get("page"), DefaultPage)
	limit := convert.ToIntD(r.URL.Query().Get("limit"), DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}
