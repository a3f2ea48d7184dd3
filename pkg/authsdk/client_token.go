package authsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// RefreshGrant requests new tokens using a refresh token.
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (_ *TokenResponse, err error) {
	ctx, span := c.startSpan(ctx, "authsdk.RefreshGrant")
	defer func() { endSpan(span, err) }()

	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", ErrInvalidGrant)
	}

	// An empty access token makes the source refresh immediately.
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, mapTokenError(err)
	}
	return tokenResponseFrom(tok)
}

// RevokeToken revokes a token at the RFC 7009 revocation endpoint. hint is
// the token_type_hint ("refresh_token" or "access_token"), optional.
func (c *Client) RevokeToken(ctx context.Context, token, hint string) (err error) {
	ctx, span := c.startSpan(ctx, "authsdk.RevokeToken")
	defer func() { endSpan(span, err) }()

	if c.cfg.Endpoints.RevocationURL == "" {
		return ErrRevocationUnsupported
	}

	data := url.Values{
		"token":     {token},
		"client_id": {c.cfg.ClientID},
	}
	if hint != "" {
		data.Set("token_type_hint", hint)
	}
	if c.cfg.ClientSecret != "" {
		data.Set("client_secret", c.cfg.ClientSecret)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.Endpoints.RevocationURL,
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return parseErrorResponse(resp, body)
}

// mapTokenError converts x/oauth2 failures into *OAuth2Error where the
// authority answered, leaving transport errors untouched.
func mapTokenError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return err
	}

	status := http.StatusBadRequest
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	code := re.ErrorCode
	if code == "" {
		code = ErrorCodeServerError
		if status < http.StatusInternalServerError && status != http.StatusTooManyRequests {
			code = ErrorCodeInvalidRequest
		}
	}
	desc := re.ErrorDescription
	if desc == "" {
		desc = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}

	return &OAuth2Error{StatusCode: status, Code: code, Description: desc}
}
