// Package auth mints and validates the bearer JWTs that guard
// pkg/api's management endpoints.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the caller of a management API request: either an
// operator (IsAdmin true, entitled to POST endpoints) or a peer
// checking their own standing (IsAdmin false, read-only).
type Claims struct {
	jwt.RegisteredClaims

	// Subject duplicates RegisteredClaims.Subject as a named field so
	// handlers don't need to reach into the embedded struct.
	Subject string `json:"sub_name"`

	// IsAdmin grants access to the group-assignment and config-reload
	// endpoints. A non-admin token never passes RequireAdmin.
	IsAdmin bool `json:"is_admin"`
}

// HasAdmin returns true if the token carries operator privileges.
func (c *Claims) HasAdmin() bool {
	return c.IsAdmin
}
