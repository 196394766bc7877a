// Copyright (c) 2026 Komira. All rights reserved.

/*
Package sec isolates the security primitives: RS256 access tokens, opaque
refresh tokens, password hashing, and the role lattice.

Domain packages never touch key material or hashing directly; they consume
this package through small interfaces such as the auth package's
TokenProvider.
*/
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the payload carried inside an access token.
//
// Identity and role travel in the token itself, so request authentication
// never touches the database. The custom claim names are abbreviated to
// keep the token small.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
}

// TokenService signs and verifies RS256 access tokens.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

/*
NewTokenService loads the RSA key pair from PEM files on disk.

Description: The private key signs, the public key verifies. Keeping them
in separate files lets read-only deployments ship without the private half.

Parameters:
  - privateKeyPath: string
  - publicKeyPath: string
  - issuer: string (stamped into every token's iss claim)

Returns:
  - *TokenService
  - error: Unreadable or unparseable key material.
*/
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}, nil
}

// GenerateAccessToken signs a token for the user, valid for timeToLive.
func (service *TokenService) GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(timeToLive)),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a token string, returning its claims.
// The allowed algorithm is pinned to RS256 so a forged token cannot
// downgrade to a weaker method.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return service.publicKey, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(service.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}
	return claims, nil
}
