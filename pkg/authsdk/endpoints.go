package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Endpoints are the authority URLs the client needs.
type Endpoints struct {
	Issuer        string `json:"issuer"`
	AuthURL       string `json:"authorization_endpoint"`
	TokenURL      string `json:"token_endpoint"`
	EndSessionURL string `json:"end_session_endpoint,omitempty"`
	RevocationURL string `json:"revocation_endpoint,omitempty"`
	JWKSURL       string `json:"jwks_uri,omitempty"`
}

// ErrIssuerMismatch is returned by Discover when the document names a
// different issuer than the one requested.
var ErrIssuerMismatch = errors.New("authsdk: discovery issuer mismatch")

// KeycloakEndpoints derives the endpoints of a Keycloak realm without a
// discovery round trip.
func KeycloakEndpoints(baseURL, realm string) Endpoints {
	issuer := strings.TrimSuffix(baseURL, "/") + "/realms/" + realm
	oidc := issuer + "/protocol/openid-connect"
	return Endpoints{
		Issuer:        issuer,
		AuthURL:       oidc + "/auth",
		TokenURL:      oidc + "/token",
		EndSessionURL: oidc + "/logout",
		RevocationURL: oidc + "/revoke",
		JWKSURL:       oidc + "/certs",
	}
}

// Discover fetches the OpenID Provider metadata for issuer.
func Discover(ctx context.Context, hc *http.Client, issuer string) (Endpoints, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	issuer = strings.TrimSuffix(issuer, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuer+"/.well-known/openid-configuration", nil)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := parseErrorResponse(resp, body); err != nil {
		return Endpoints{}, err
	}

	var ep Endpoints
	if err := json.Unmarshal(body, &ep); err != nil {
		return Endpoints{}, fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if strings.TrimSuffix(ep.Issuer, "/") != issuer {
		return Endpoints{}, fmt.Errorf("%w: got %q, want %q", ErrIssuerMismatch, ep.Issuer, issuer)
	}
	if ep.AuthURL == "" || ep.TokenURL == "" {
		return Endpoints{}, fmt.Errorf("%w: discovery document lacks authorization or token endpoint", ErrMalformedResponse)
	}
	return ep, nil
}
