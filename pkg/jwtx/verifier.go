package jwtx

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Decoder turns a compact-serialized token into its payload.
type Decoder interface {
	Decode(token string) (Payload, error)
}

// VerifyOptions captures the expectations a verifying decoder enforces.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Audience the token must contain (claims.aud). Empty means "don't care".
	Audience string

	// Leeway allows small clock skew when validating exp/nbf/iat.
	Leeway time.Duration

	// Algorithms accepted in the token header. Empty accepts RS256 and ES256.
	Algorithms []string
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// UnverifiedDecoder reads the payload without checking the signature. The
// session client uses it for tokens it received directly from the authority
// over TLS, whose validity the authority already asserts.
type UnverifiedDecoder struct{}

func (UnverifiedDecoder) Decode(token string) (Payload, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return Payload(claims), nil
}

// KeyfuncDecoder verifies the signature and registered claims before
// returning the payload.
type KeyfuncDecoder struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	jwks    *keyfunc.JWKS
}

// NewKeyfuncDecoder builds a verifying decoder around an arbitrary key lookup.
func NewKeyfuncDecoder(kf jwt.Keyfunc, opts VerifyOptions) *KeyfuncDecoder {
	algs := opts.Algorithms
	if len(algs) == 0 {
		algs = []string{"RS256", "ES256"}
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(algs),
		jwt.WithLeeway(opts.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}

	return &KeyfuncDecoder{
		keyfunc: kf,
		parser:  jwt.NewParser(parserOpts...),
	}
}

// NewJWKSDecoder fetches the authority's JWK Set and keeps it refreshed in
// the background. Call Close to stop the refresh goroutine.
func NewJWKSDecoder(jwksURL string, opts VerifyOptions, logger *slog.Logger) (*KeyfuncDecoder, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Warn("jwks background refresh failed", "url", jwksURL, "error", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWK set from %s: %w", jwksURL, err)
	}

	d := NewKeyfuncDecoder(jwks.Keyfunc, opts)
	d.jwks = jwks
	return d, nil
}

func (d *KeyfuncDecoder) Decode(token string) (Payload, error) {
	claims := jwt.MapClaims{}
	if _, err := d.parser.ParseWithClaims(token, claims, d.keyfunc); err != nil {
		return nil, mapParseError(err)
	}
	return Payload(claims), nil
}

// Close stops the background JWK Set refresh, if any.
func (d *KeyfuncDecoder) Close() {
	if d.jwks != nil {
		d.jwks.EndBackground()
	}
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %w", ErrNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %w", ErrIssuer, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %w", ErrAudience, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
}
