package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabsession/internal/store"
	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
)

const probeTimeout = 2 * time.Second

// HealthResponse is the body of the probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"dev"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the dependencies /readyz looked at.
type HealthChecks struct {
	Store   string `json:"store" example:"ok"`
	Session string `json:"session" example:"ok"`
}

type probe struct {
	startTime time.Time
	version   string
	store     store.Pinger
	sessions  *session.Manager
}

func (p *probe) response(status string, checks *HealthChecks) HealthResponse {
	return HealthResponse{
		Status:  status,
		Uptime:  time.Since(p.startTime).Round(time.Second).String(),
		Version: p.version,
		Checks:  checks,
	}
}

// handleLivez godoc
//
//	@Summary		Liveness probe
//	@Description	Answers 200 while the process serves HTTP.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (p *probe) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, p.response("ok", nil))
}

// handleReadyz godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the session store and checks that the session manager is running.
//	@Description	Never touches the session itself, so a probe cannot acknowledge a user notice.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"every check ok"
//	@Failure		503	{object}	HealthResponse	"at least one check failed"
//	@Router			/readyz [get].
func (p *probe) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	checks := &HealthChecks{
		Store:   checkResult(p.store.Ping(ctx)),
		Session: checkResult(p.sessions.Running()),
	}

	if checks.Store != "ok" || checks.Session != "ok" {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, p.response("degraded", checks))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p.response("ok", checks))
}

func checkResult(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
