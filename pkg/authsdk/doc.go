/*
Package authsdk is the client side of the OAuth2/OIDC authorization code flow
against an external authority such as Keycloak.

# Endpoints

Endpoints come from OIDC discovery or are derived from a Keycloak realm:

	ep, err := authsdk.Discover(ctx, http.DefaultClient, "https://sso.example.com/realms/tab")
	// or
	ep := authsdk.KeycloakEndpoints("https://sso.example.com", "tab")

	client := authsdk.NewClient(authsdk.Config{
		Endpoints:   ep,
		ClientID:    "tab-web",
		RedirectURL: "http://localhost:5173/callback",
		Scopes:      []string{"openid", "profile", "email"},
	})

# Authorization Code Flow with PKCE

	pkce, _ := authsdk.GeneratePKCEChallenge()
	state, _ := authsdk.GenerateState()
	redirect := client.BuildAuthorizeURL(state, pkce)
	// ... browser returns to the redirect URL ...
	cb, err := authsdk.ParseCallbackQuery(r.URL.Query())
	// compare cb.State with state
	tokens, err := client.ExchangeCode(ctx, cb.Code, pkce.Verifier)

Token and refresh grants are performed by golang.org/x/oauth2 with client_id
in the form body; every call is traced with OpenTelemetry.

# Refresh, Revocation and Logout

	tokens, err = client.RefreshGrant(ctx, tokens.RefreshToken)
	_ = client.RevokeToken(ctx, tokens.RefreshToken, "refresh_token")
	logoutURL := client.BuildEndSessionURL(tokens.IDToken, "http://localhost:5173/")

# Errors

Authority rejections are returned as *OAuth2Error and compare with errors.Is
by code:

	if errors.Is(err, authsdk.ErrInvalidGrant) {
		// refresh token revoked or expired
	}

IsTransient reports network failures and 5xx/429 answers that are worth a
bounded retry.
*/
package authsdk
