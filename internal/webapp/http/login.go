package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

type LoginHandler struct {
	Sessions *session.Manager
}

// HandleLogin starts the authorization code flow.
//
//	@Summary		Start login
//	@Description	Creates a PKCE verifier and state and redirects the browser to the authority.
//	@Description	An authenticated session is kept and the browser goes straight to return_to.
//	@Tags			Session
//	@Param			return_to	query	string	false	"Same-origin path to return to after login"
//	@Success		302			"Redirect to the authority authorize endpoint, or to return_to when already logged in"
//	@Failure		503			{object}	ErrorResponse	"Session manager unavailable"
//	@Router			/login [get].
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	authorizeURL, err := h.Sessions.Login(r.Context(), r.URL.Query().Get("return_to"))
	if err != nil {
		log.Error("failed to start login", "error", err)
		writeUnavailable(w, err)
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// HandleCallback completes the authorization code flow.
//
//	@Summary		Login callback
//	@Description	Redirect target registered at the authority. Validates state, exchanges the code and
//	@Description	redirects to the path given to /login. A failed login redirects to / where the notice is shown.
//	@Tags			Session
//	@Param			code				query	string	false	"Authorization code"
//	@Param			state				query	string	true	"State issued by /login"
//	@Param			error				query	string	false	"Authority error code"
//	@Param			error_description	query	string	false	"Authority error description"
//	@Success		303					"Redirect to the return path"
//	@Failure		503					{object}	ErrorResponse	"Session manager unavailable"
//	@Router			/callback [get].
func (h *LoginHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	returnTo, err := h.Sessions.CompleteLogin(r.Context(), r.URL.Query())
	var failure *session.AuthorizationFailure
	switch {
	case errors.As(err, &failure):
		log.Warn("login failed", "reason", failure.Reason, "error", failure.Err)
		returnTo = "/"
	case err != nil:
		log.Error("failed to complete login", "error", err)
		writeUnavailable(w, err)
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

// HandleLogout ends the session.
//
//	@Summary		Logout
//	@Description	Ends the session, revokes the refresh token in the background and redirects to the
//	@Description	authority end-session endpoint (or / when there is none).
//	@Tags			Session
//	@Success		303	"Redirect to the authority end-session endpoint"
//	@Failure		403	{object}	ErrorResponse	"Posted from another site"
//	@Failure		503	{object}	ErrorResponse	"Session manager unavailable"
//	@Router			/logout [post].
func (h *LoginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	endSessionURL, err := h.Sessions.Logout(r.Context())
	if err != nil {
		log.Error("failed to log out", "error", err)
		writeUnavailable(w, err)
		return
	}
	if endSessionURL == "" {
		endSessionURL = "/"
	}

	httpx.NoCache(w)
	http.Redirect(w, r, endSessionURL, http.StatusSeeOther)
}
