package auth

import (
	"fmt"
	"time"

	"github.com/fedutinova/yanews/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const audience = "yanews"

type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TTL returns how long the token stays valid from now.
func (c *Claims) TTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return time.Until(c.ExpiresAt.Time)
}

func NewToken(secret, issuer, subject, username string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	cl := Claims{
		UserID:   subject,
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{audience},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature, expiry, issuer and audience.
func ParseToken(secret, issuer, tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	cl := &Claims{}
	_, err := parser.ParseWithClaims(tokenStr, cl, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if cl.ID == "" {
		return nil, fmt.Errorf("%w: missing token id", common.ErrInvalidToken)
	}
	return cl, nil
}
