package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
)

// ============================================================================
// OAuth2 Error Codes (RFC 6749)
// ============================================================================

const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeInvalidClient          = "invalid_client"
	ErrorCodeInvalidGrant           = "invalid_grant"
	ErrorCodeUnauthorizedClient     = "unauthorized_client"
	ErrorCodeInvalidScope           = "invalid_scope"
	ErrorCodeServerError            = "server_error"
	ErrorCodeTemporarilyUnavailable = "temporarily_unavailable"
	ErrorCodeInvalidToken           = "invalid_token"
	ErrorCodeAccessDenied           = "access_denied"
	ErrorCodeLoginRequired          = "login_required"
	ErrorCodeUnsupportedTokenType   = "unsupported_token_type"
)

// OAuth2Error represents a standard OAuth2 error response per RFC 6749.
// It implements the error interface and can be used both by HTTP handlers
// (to write responses) and by the client (to represent authority errors).
type OAuth2Error struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *OAuth2Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches any *OAuth2Error with the same code, so wrapped predefined
// errors compare by code rather than identity.
func (e *OAuth2Error) Is(target error) bool {
	t, ok := target.(*OAuth2Error)
	return ok && t.Code == e.Code
}

// WriteError writes this OAuth2Error to an HTTP response writer.
func (e *OAuth2Error) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

var (
	// ErrInvalidRequest is returned when the request is malformed or missing parameters.
	ErrInvalidRequest = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidGrant is returned when the authorization code or refresh
	// token is invalid, expired, revoked, or was issued to another client.
	ErrInvalidGrant = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidGrant,
		Description: "invalid grant",
	}

	// ErrAccessDenied is returned when the resource owner denied the request.
	ErrAccessDenied = &OAuth2Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	// ErrServerError is returned when the authority failed unexpectedly.
	ErrServerError = &OAuth2Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

var (
	// ErrMalformedResponse marks an authority response missing mandatory fields.
	ErrMalformedResponse = errors.New("authsdk: malformed authority response")

	// ErrRevocationUnsupported is returned when no revocation endpoint is known.
	ErrRevocationUnsupported = errors.New("authsdk: revocation endpoint not configured")
)

// IsTransient reports whether err is worth retrying: network failures,
// 5xx and 429 answers. Context cancellation and protocol rejections are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var oe *OAuth2Error
	if errors.As(err, &oe) {
		return oe.StatusCode >= http.StatusInternalServerError ||
			oe.StatusCode == http.StatusTooManyRequests ||
			oe.Code == ErrorCodeTemporarilyUnavailable
	}

	var ne net.Error
	return errors.As(err, &ne)
}

// parseErrorResponse turns a non-2xx authority response into *OAuth2Error.
// Returns nil for 2xx.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &OAuth2Error{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &OAuth2Error{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
