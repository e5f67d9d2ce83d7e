// internal/pkg/auth/claims.go
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity the external identity service signed into the
// access token. This service never issues tokens; it only verifies them.
type Claims struct {
	UserID int64    `json:"user_id"`
	OrgID  int64    `json:"org_id"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole checks if the claims contain a specific role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
