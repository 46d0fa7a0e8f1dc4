package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the API's user_id claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ParseClaims decodes a bearer token without verifying its signature. The
// client never holds the signing key; the result is used only for display
// and for skipping a round trip when the token has plainly expired.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}

// Expired reports whether the exp claim is set and not after now.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.Time.After(now)
}
