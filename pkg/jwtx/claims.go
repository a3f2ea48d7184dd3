package jwtx

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Claim names read from access and ID token payloads. The role claims follow
// the Keycloak layout used by the authority.
const (
	ClaimSubject           = "sub"
	ClaimPreferredUsername = "preferred_username"
	ClaimEmail             = "email"
	ClaimName              = "name"
	ClaimRealmAccess       = "realm_access"
	ClaimResourceAccess    = "resource_access"
	ClaimRoles             = "roles"
)

// Payload is a decoded token payload. Values keep whatever JSON type the
// authority sent, so every read is type checked.
type Payload map[string]any

// Profile is the user identity derived from a token payload.
type Profile struct {
	Subject           string `json:"sub"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	DisplayName       string `json:"name,omitempty"`
}

// Name resolves the label shown to the user: display name, then preferred
// username, then subject.
func (p Profile) Name() string {
	switch {
	case p.DisplayName != "":
		return p.DisplayName
	case p.PreferredUsername != "":
		return p.PreferredUsername
	default:
		return p.Subject
	}
}

// Username returns the preferred username, falling back to the subject.
func (p Profile) Username() string {
	if p.PreferredUsername != "" {
		return p.PreferredUsername
	}
	return p.Subject
}

// RoleSet is an unordered set of role names.
type RoleSet map[string]struct{}

// NewRoleSet builds a set from names, collapsing duplicates and dropping
// empty strings.
func NewRoleSet(names ...string) RoleSet {
	rs := make(RoleSet, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		rs[n] = struct{}{}
	}
	return rs
}

// Has reports whether role is in the set.
func (rs RoleSet) Has(role string) bool {
	_, ok := rs[role]
	return ok
}

// HasAll reports whether every role is in the set.
func (rs RoleSet) HasAll(roles ...string) bool {
	for _, r := range roles {
		if !rs.Has(r) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one role is in the set.
func (rs RoleSet) HasAny(roles ...string) bool {
	return slices.ContainsFunc(roles, rs.Has)
}

// Sorted returns the roles in lexical order.
func (rs RoleSet) Sorted() []string {
	out := make([]string, 0, len(rs))
	for r := range rs {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (rs RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.Sorted())
}

// MalformedTokenError reports a payload missing a mandatory claim.
type MalformedTokenError struct {
	Claim  string
	Reason string
}

func (e *MalformedTokenError) Error() string {
	return fmt.Sprintf("jwtx: malformed token: claim %q %s", e.Claim, e.Reason)
}

// Extract derives the profile and role set from a payload. clientID selects
// the entry under resource_access whose roles are merged with the realm
// roles. Only a missing or non-string subject is an error; every other
// claim is optional and ignored when it has the wrong shape.
func Extract(p Payload, clientID string) (Profile, RoleSet, error) {
	raw, ok := p[ClaimSubject]
	if !ok {
		return Profile{}, RoleSet{}, &MalformedTokenError{Claim: ClaimSubject, Reason: "is missing"}
	}
	sub, ok := raw.(string)
	if !ok || strings.TrimSpace(sub) == "" {
		return Profile{}, RoleSet{}, &MalformedTokenError{Claim: ClaimSubject, Reason: "is not a non-empty string"}
	}

	profile := Profile{
		Subject:           sub,
		PreferredUsername: optionalString(p, ClaimPreferredUsername),
		Email:             optionalString(p, ClaimEmail),
		DisplayName:       optionalString(p, ClaimName),
	}

	roles := NewRoleSet(realmRoles(p)...)
	for _, r := range clientRoles(p, clientID) {
		if r != "" {
			roles[r] = struct{}{}
		}
	}

	return profile, roles, nil
}

func optionalString(p Payload, name string) string {
	s, _ := p[name].(string)
	return s
}

// realmRoles reads realm_access.roles.
func realmRoles(p Payload) []string {
	access, ok := p[ClaimRealmAccess].(map[string]any)
	if !ok {
		return nil
	}
	return stringSlice(access[ClaimRoles])
}

// clientRoles reads resource_access.<clientID>.roles.
func clientRoles(p Payload, clientID string) []string {
	if clientID == "" {
		return nil
	}
	resources, ok := p[ClaimResourceAccess].(map[string]any)
	if !ok {
		return nil
	}
	entry, ok := resources[clientID].(map[string]any)
	if !ok {
		return nil
	}
	return stringSlice(entry[ClaimRoles])
}

// stringSlice accepts []any (JSON decoding) and []string (hand-built
// payloads); non-string elements are skipped.
func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
