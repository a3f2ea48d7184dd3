package http

import (
	"net/http"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
)

// HelloResponse is the greeting body.
type HelloResponse struct {
	Data string `json:"data"`
}

// HandleHello greets the caller by preferred username, or subject when the
// token carries none.
func HandleHello(w http.ResponseWriter, r *http.Request) {
	profile, _ := httpx.ProfileFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, HelloResponse{Data: "Hello " + profile.Username()})
}

func HandleAdminHello(w http.ResponseWriter, r *http.Request) {
	profile, _ := httpx.ProfileFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, HelloResponse{Data: "Hello admin " + profile.Username()})
}
