// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

// Package auth provides bearer-token authentication for the Emotive API.
//
// Tokens are HMAC-SHA256 JWTs carrying the patient identity in the sub claim.
// The API never trusts a client-supplied patient ID on authenticated routes;
// the orchestrator receives the identity extracted here, which is what makes
// cross-patient session access impossible rather than merely forbidden.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoCredentials indicates the request carried no bearer token.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates the token failed signature or claim
	// validation.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates a well-formed but expired token.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Claims are the JWT claims Emotive issues and verifies. The patient
// identity travels in the registered Subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// PatientID returns the patient identity carried by the token.
func (c *Claims) PatientID() string {
	return c.Subject
}

// Manager creates and validates patient bearer tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewManager creates a token manager. The secret must be non-empty; HS256 is
// the only accepted algorithm.
func NewManager(secret, issuer string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required but was empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// GenerateToken creates a signed token for the given patient.
func (m *Manager) GenerateToken(patientID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   patientID,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the token signature, algorithm, expiry, and issuer,
// and returns the claims. Algorithm confusion is rejected by accepting only
// HMAC signing methods.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidCredentials)
	}
	return claims, nil
}
