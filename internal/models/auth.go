package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are carried by access tokens. Roles are copied from the
// account at login.
type TokenClaims struct {
	AccountID string   `json:"account_id"`
	Login     string   `json:"login"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token grants role.
func (c *TokenClaims) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if Role(r) == role {
			return true
		}
	}
	return false
}
