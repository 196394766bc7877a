// Copyright (c) 2026 Komira. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/ctxutil"
	"github.com/komira-app/komira/internal/platform/respond"
	"github.com/komira-app/komira/internal/platform/sec"
)

// # Authentication

// TokenVerifier verifies access tokens. Declared here rather than
// importing the JWT service so tests can inject a fake.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

/*
Authenticate resolves the Authorization header into auth claims.

Description: A missing header is not an error; the request proceeds as
anonymous and guarded routes reject it later. A present but malformed or
unverifiable bearer token fails immediately with 401, so a client with a
bad token never silently degrades to anonymous.

Parameters:
  - verifier: TokenVerifier

Returns:
  - func(http.Handler) http.Handler
*/
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Authorization Guards

// RequireAuth rejects anonymous requests. Mount after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if GetUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole rejects requests below the given role. It implies
// [RequireAuth]; anonymous requests get 401, authenticated but
// under-privileged ones get 403. Mount after [Authenticate].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := GetUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser returns the authenticated user's claims, nil for anonymous
// requests.
func GetUser(ctx context.Context) *sec.AuthClaims {
	return ctxutil.GetAuthUser(ctx)
}
