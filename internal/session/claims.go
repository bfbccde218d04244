package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the access token fields the portal reads. The signature is
// not verified here; the backend remains the authority.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
	Roles     []string
}

type accessClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the payload of an access token without verifying it.
func ParseClaims(token string) (*TokenClaims, error) {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	out := &TokenClaims{Subject: claims.Subject, Roles: claims.Roles}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Expired reports whether the token has an expiry that lies before now.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
