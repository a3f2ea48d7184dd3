package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
)

type SessionHandler struct {
	Sessions *session.Manager
}

// ActivityRequest reports one user interaction.
type ActivityRequest struct {
	Kind string `json:"kind" example:"pointer"`
}

// HandleSnapshot returns the session state without tokens.
//
//	@Summary		Current session
//	@Description	Returns the session snapshot: state, profile, roles, access expiry, activity deadline and
//	@Description	the reason for the last transition. Tokens are never included. Reading it does not
//	@Description	acknowledge the logout notice; the home page does.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	session.Snapshot	"Session snapshot"
//	@Router			/session [get].
func (h *SessionHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Sessions.Snapshot())
}

// HandleActivity records a user interaction against the inactivity timeout.
//
//	@Summary		Record activity
//	@Description	Pushes the inactivity deadline forward. Only pointer, key, scroll and touch count.
//	@Tags			Session
//	@Accept			json
//	@Param			request	body	ActivityRequest	true	"Interaction kind"
//	@Success		204		"Activity recorded"
//	@Failure		400		{object}	ErrorResponse	"Unknown interaction kind"
//	@Failure		409		{object}	ErrorResponse	"No authenticated session"
//	@Router			/session/activity [post].
func (h *SessionHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	var req ActivityRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	kind, ok := session.ParseEventKind(req.Kind)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown interaction kind")
		return
	}

	if !h.Sessions.RecordActivity(kind) {
		httpx.WriteError(w, http.StatusConflict, "no_session", "no authenticated session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
