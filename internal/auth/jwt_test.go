package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/fedutinova/yanews/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestNewToken_ContainsClaims(t *testing.T) {
	secret := "test-secret"
	issuer := "yanews-test"
	subject := uuid.New().String()
	roles := []string{"user", "admin"}

	ttl := 2 * time.Minute
	tokenStr, err := NewToken(secret, issuer, subject, "Автор", roles, ttl)
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	_, err = parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("ParseWithClaims error: %v", err)
	}

	if claims.Issuer != issuer {
		t.Fatalf("expected issuer %q, got %q", issuer, claims.Issuer)
	}
	if claims.UserID != subject || claims.Subject != subject {
		t.Fatalf("expected user_id and sub %q, got %q and %q", subject, claims.UserID, claims.Subject)
	}
	if claims.Username != "Автор" {
		t.Fatalf("expected username %q, got %q", "Автор", claims.Username)
	}
	if len(claims.Roles) != len(roles) {
		t.Fatalf("expected %d roles, got %d", len(roles), len(claims.Roles))
	}
	for i := range roles {
		if claims.Roles[i] != roles[i] {
			t.Fatalf("expected roles[%d]=%q, got %q", i, roles[i], claims.Roles[i])
		}
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("expected jti to be a uuid, got %q", claims.ID)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatalf("expected iat/exp to be set")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		t.Fatalf("expected exp after iat")
	}
}

func TestNewToken_UniqueIDs(t *testing.T) {
	a, _ := NewToken("s", "i", "sub", "u", nil, time.Minute)
	b, _ := NewToken("s", "i", "sub", "u", nil, time.Minute)

	ca, err := ParseToken("s", "i", a)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	cb, err := ParseToken("s", "i", b)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if ca.ID == cb.ID {
		t.Fatalf("expected distinct token ids, both are %q", ca.ID)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	good, err := NewToken("secret", "yanews", "sub", "u", []string{"user"}, time.Minute)
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	expired, err := NewToken("secret", "yanews", "sub", "u", []string{"user"}, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	tests := []struct {
		name   string
		secret string
		issuer string
		token  string
	}{
		{"wrong secret", "other", "yanews", good},
		{"wrong issuer", "secret", "someone-else", good},
		{"expired", "secret", "yanews", expired},
		{"garbage", "secret", "yanews", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.issuer, tt.token)
			if !errors.Is(err, common.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}

	cl, err := ParseToken("secret", "yanews", good)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if ttl := cl.TTL(); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestHasPerm(t *testing.T) {
	if !HasPerm([]string{"user"}, PermCommentWrite) {
		t.Fatal("user must be able to comment")
	}
	if HasPerm([]string{"user"}, PermNewsPublish) {
		t.Fatal("user must not publish news")
	}
	if !HasPerm([]string{"admin"}, PermNewsPublish) {
		t.Fatal("admin must publish news")
	}
	if !HasPerm([]string{"admin"}, "anything:else") {
		t.Fatal("admin:* must grant every permission")
	}
	if HasPerm(nil, PermCommentWrite) {
		t.Fatal("no roles must grant nothing")
	}
}
