package auth

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the role claim required by the admin read surface.
const RoleAdmin = "admin"

// AccessTokenClaims are the claims carried by dashboard access tokens.
type AccessTokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token grants the admin role.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
