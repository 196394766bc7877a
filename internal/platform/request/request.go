// Copyright (c) 2026 Komira. All rights reserved.

// Package request provides the read side of handler plumbing: body
// decoding, URL parameters, and the identity of the caller.
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/ctxutil"
	"github.com/komira-app/komira/internal/platform/sec"
	"github.com/komira-app/komira/internal/platform/validate"
)

// DecodeJSON decodes the request body into target. Any decode failure
// surfaces as the shared invalid-JSON validation error; clients get no
// parser internals.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param returns a named URL path parameter, empty when absent.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims returns the caller's auth claims, nil for anonymous requests.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims returns the caller's auth claims or 401 for anonymous
// requests. Handlers behind RequireAuth still call it to obtain the
// identity rather than assuming the middleware ran.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredUserID returns the caller's user ID or 401 for anonymous
// requests.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
