package authsdk

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// This is used internally for parsing HTTP error responses.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// TokenResponse represents the OAuth2 token endpoint response per RFC 6749,
// plus the OIDC id_token and Keycloak refresh_expires_in.
type TokenResponse struct {
	// AccessToken is the compact JWT sent to resource servers.
	AccessToken string `json:"access_token"`

	// RefreshToken is absent when the authority does not issue one.
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the OIDC identity token, when the openid scope was granted.
	IDToken string `json:"id_token,omitempty"`

	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// RefreshExpiresIn is the lifetime in seconds of the refresh token; 0
	// when unknown.
	RefreshExpiresIn int `json:"refresh_expires_in,omitempty"`

	Scope string `json:"scope,omitempty"`
}

// AccessExpiry returns the access token expiry relative to receivedAt.
func (t *TokenResponse) AccessExpiry(receivedAt time.Time) time.Time {
	return receivedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// RefreshExpiry returns the refresh token expiry relative to receivedAt, or
// the zero time when unknown.
func (t *TokenResponse) RefreshExpiry(receivedAt time.Time) time.Time {
	if t.RefreshExpiresIn <= 0 {
		return time.Time{}
	}
	return receivedAt.Add(time.Duration(t.RefreshExpiresIn) * time.Second)
}

func tokenResponseFrom(tok *oauth2.Token) (*TokenResponse, error) {
	expiresIn, ok := intExtra(tok.Extra("expires_in"))
	if !ok {
		switch {
		case tok.ExpiresIn > 0:
			expiresIn = int(tok.ExpiresIn)
		case !tok.Expiry.IsZero():
			expiresIn = int(time.Until(tok.Expiry).Round(time.Second).Seconds())
		}
	}
	if expiresIn <= 0 {
		return nil, fmt.Errorf("%w: missing or non-positive expires_in", ErrMalformedResponse)
	}

	resp := &TokenResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		ExpiresIn:    expiresIn,
	}
	if s, ok := tok.Extra("id_token").(string); ok {
		resp.IDToken = s
	}
	if s, ok := tok.Extra("scope").(string); ok {
		resp.Scope = s
	}
	if n, ok := intExtra(tok.Extra("refresh_expires_in")); ok {
		resp.RefreshExpiresIn = n
	}
	return resp, nil
}

// intExtra reads a numeric token response field, which arrives as float64
// from JSON bodies and as a string from form-encoded ones.
func intExtra(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}
