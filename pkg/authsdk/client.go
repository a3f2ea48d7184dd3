package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const tracerName = "github.com/aussiebroadwan/tabsession/pkg/authsdk"

// Config describes one public (or confidential) client registered at the
// authority.
type Config struct {
	Endpoints Endpoints

	ClientID string
	// ClientSecret is empty for public clients.
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// HTTPClient is used for every call to the authority. Nil uses a client
	// with a 10 second timeout.
	HTTPClient *http.Client
}

// Client talks to the authority's authorize, token, revocation and
// end-session endpoints.
type Client struct {
	cfg    Config
	oauth  *oauth2.Config
	http   *http.Client
	tracer trace.Tracer
}

// NewClient creates an authority client.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid"}
	}

	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.Endpoints.AuthURL,
				TokenURL: cfg.Endpoints.TokenURL,
				// client_id travels in the form body as public clients require.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		http:   hc,
		tracer: otel.Tracer(tracerName),
	}
}

// ClientID returns the registered client id.
func (c *Client) ClientID() string { return c.cfg.ClientID }

// Endpoints returns the resolved authority endpoints.
func (c *Client) Endpoints() Endpoints { return c.cfg.Endpoints }

// Scope returns the requested scopes as a space-delimited string.
func (c *Client) Scope() string { return strings.Join(c.cfg.Scopes, " ") }

// oauthContext makes x/oauth2 use the configured HTTP client.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
