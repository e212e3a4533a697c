package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the part of an access token shown by the status command.
type Claims struct {
	Subject   string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token carried an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// TokenClaims decodes token without verifying its signature. The server is
// the only judge of validity; this is for display.
func TokenClaims(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("session.TokenClaims: %w", err)
	}
	c := Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		t := rc.IssuedAt.Time
		c.IssuedAt = &t
	}
	if rc.ExpiresAt != nil {
		t := rc.ExpiresAt.Time
		c.ExpiresAt = &t
	}
	return c, nil
}
