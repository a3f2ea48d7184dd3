package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

const tracerName = "github.com/aussiebroadwan/tabsession/internal/webapp/http"

// maxResourceBody caps what is relayed from the resource server.
const maxResourceBody = 1 << 20

// ResourceClient calls the protected resource server with a bearer token.
type ResourceClient struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// ResourceResponse is what the resource server answered.
type ResourceResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// NewResourceClient targets baseURL. A nil hc uses a 10 second timeout.
func NewResourceClient(baseURL string, hc *http.Client) *ResourceClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &ResourceClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    hc,
		tracer:  otel.Tracer(tracerName),
	}
}

// Get fetches path with the access token.
func (c *ResourceClient) Get(ctx context.Context, path, accessToken string) (_ *ResourceResponse, err error) {
	ctx, span := c.tracer.Start(ctx, "resource.Get", trace.WithAttributes(
		attribute.String("http.path", path),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resource request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read resource response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	return &ResourceResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

type ResourceHandler struct {
	Sessions *session.Manager
	Resource *ResourceClient
}

// HelloResponse is the resource server greeting.
type HelloResponse struct {
	Data string `json:"data" example:"Hello alice"`
}

// HandleHello proxies the resource server greeting.
//
//	@Summary		Hello API
//	@Description	Calls the resource server's /api/hello with the session's access token, refreshing it
//	@Description	first when it is inside the refresh margin.
//	@Tags			Resource
//	@Produce		json
//	@Success		200	{object}	HelloResponse	"Greeting"
//	@Failure		401	{object}	ErrorResponse	"No valid session; log in again"
//	@Failure		502	{object}	ErrorResponse	"Resource server unreachable"
//	@Router			/api/hello [get].
func (h *ResourceHandler) HandleHello(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token, err := h.Sessions.AccessToken(ctx)
	switch {
	case errors.Is(err, session.ErrAuthRequired):
		httpx.WriteError(w, http.StatusUnauthorized, "login_required", "no valid session")
		return
	case err != nil:
		writeUnavailable(w, err)
		return
	}

	resp, err := h.Resource.Get(ctx, "/api/hello", token)
	if err != nil {
		log.Warn("resource server call failed", "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "bad_gateway", "resource server unreachable")
		return
	}
	if resp.Status == http.StatusUnauthorized {
		log.Warn("resource server rejected the access token")
	}

	httpx.NoCache(w)
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}
