package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
)

// ErrorResponse is the JSON error body. It follows the OAuth2 error shape.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// writeUnavailable reports a session manager that could not answer:
// stopped, not started, or the request was abandoned.
func writeUnavailable(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		// Client went away; nobody reads the body.
		w.WriteHeader(499)
		return
	}
	httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable", err.Error())
}
