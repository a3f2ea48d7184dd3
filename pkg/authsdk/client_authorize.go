package authsdk

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
	"golang.org/x/oauth2"
)

// PKCEChallenge holds the PKCE verifier and challenge pair.
// The verifier is kept secret by the client, and the challenge is sent to the authorization endpoint.
type PKCEChallenge struct {
	// Verifier is the high-entropy cryptographic random string (kept secret)
	Verifier string

	// Challenge is the base64url-encoded SHA256 hash of the verifier (sent to server)
	Challenge string

	// Method is always "S256" for SHA256
	Method string
}

// GeneratePKCEChallenge creates a new PKCE code verifier and challenge pair.
// Uses cryptox.TokenSize256 (256 bits of entropy) and SHA256 hashing per RFC 7636.
func GeneratePKCEChallenge() (*PKCEChallenge, error) {
	verifier, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}

	hash := sha256.Sum256([]byte(verifier))
	return &PKCEChallenge{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(hash[:]),
		Method:    "S256",
	}, nil
}

// GenerateState returns an unguessable value binding a callback to the
// redirect that started it.
func GenerateState() (string, error) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return state, nil
}

// BuildAuthorizeURL constructs the authorization code flow redirect carrying
// client_id, redirect_uri, scope, state and (when pkce is set) the S256
// challenge.
func (c *Client) BuildAuthorizeURL(state string, pkce *PKCEChallenge) string {
	var opts []oauth2.AuthCodeOption
	if pkce != nil {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", pkce.Challenge),
			oauth2.SetAuthURLParam("code_challenge_method", pkce.Method),
		)
	}
	return c.oauth.AuthCodeURL(state, opts...)
}

// Callback is a successful authorization response.
type Callback struct {
	Code  string
	State string
}

// ParseCallbackQuery reads the authorization response parameters. An error
// response from the authority is returned as *OAuth2Error; the state is
// still reported so the caller can correlate it.
func ParseCallbackQuery(q url.Values) (Callback, error) {
	cb := Callback{Code: q.Get("code"), State: q.Get("state")}

	if errorCode := q.Get("error"); errorCode != "" {
		return cb, &OAuth2Error{
			StatusCode:  http.StatusBadRequest,
			Code:        errorCode,
			Description: q.Get("error_description"),
		}
	}
	if cb.Code == "" {
		return cb, fmt.Errorf("%w: callback missing authorization code", ErrMalformedResponse)
	}
	return cb, nil
}

// ParseAuthorizationCallback parses the full callback URL of an
// authorization redirect.
//
// Example:
//
//	cb, err := authsdk.ParseAuthorizationCallback("http://localhost:5173/callback?code=xyz&state=abc")
//	if err != nil {
//	    // user denied authorization, or the response is malformed
//	}
//	// compare cb.State with the value sent, then exchange cb.Code
func ParseAuthorizationCallback(callbackURL string) (Callback, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return Callback{}, fmt.Errorf("failed to parse callback URL: %w", err)
	}
	return ParseCallbackQuery(u.Query())
}

// ExchangeCode trades an authorization code for tokens. codeVerifier is the
// PKCE verifier generated alongside the redirect.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (_ *TokenResponse, err error) {
	ctx, span := c.startSpan(ctx, "authsdk.ExchangeCode")
	defer func() { endSpan(span, err) }()

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}

	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code, opts...)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return tokenResponseFrom(tok)
}

// BuildEndSessionURL returns the RP-initiated logout redirect. It returns ""
// when the authority has no end-session endpoint.
func (c *Client) BuildEndSessionURL(idTokenHint, postLogoutRedirect string) string {
	if c.cfg.Endpoints.EndSessionURL == "" {
		return ""
	}
	params := url.Values{}
	params.Set("client_id", c.cfg.ClientID)
	if postLogoutRedirect != "" {
		params.Set("post_logout_redirect_uri", postLogoutRedirect)
	}
	if idTokenHint != "" {
		params.Set("id_token_hint", idTokenHint)
	}
	return c.cfg.Endpoints.EndSessionURL + "?" + params.Encode()
}
