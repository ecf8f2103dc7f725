package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/models"
	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxKeyClaims ctxKey = "claims"
)

func FromContext(ctx context.Context) (*Claims, bool) {
	cl, ok := ctx.Value(ctxKeyClaims).(*Claims)
	return cl, ok
}

func WithClaims(ctx context.Context, cl *Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, cl)
}

// UserLookup finds the account a token was issued to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticator resolves session tokens from the Authorization header or the
// session cookie. With Users set, tokens of deleted accounts are rejected.
type Authenticator struct {
	Secret    string
	Issuer    string
	Cookie    string
	Blacklist Blacklist
	Users     UserLookup
}

// TokenFromRequest returns the raw token, preferring a bearer header.
func (a *Authenticator) TokenFromRequest(r *http.Request) string {
	if raw := r.Header.Get("Authorization"); strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimPrefix(raw, "Bearer ")
	}
	if a.Cookie == "" {
		return ""
	}
	if c, err := r.Cookie(a.Cookie); err == nil {
		return c.Value
	}
	return ""
}

// Resolve parses tokenStr and rejects revoked tokens.
func (a *Authenticator) Resolve(ctx context.Context, tokenStr string) (*Claims, error) {
	cl, err := ParseToken(a.Secret, a.Issuer, tokenStr)
	if err != nil {
		return nil, err
	}
	if a.Blacklist != nil {
		revoked, err := a.Blacklist.IsTokenBlacklisted(ctx, cl.ID)
		if err != nil {
			return nil, common.WrapInternal("check blacklist", err)
		}
		if revoked {
			return nil, common.ErrTokenRevoked
		}
	}
	if a.Users != nil {
		id, err := uuid.Parse(cl.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed user id", common.ErrInvalidToken)
		}
		if _, err := a.Users.GetUserByID(ctx, id); err != nil {
			if common.IsNotFound(err) {
				return nil, fmt.Errorf("%w: user no longer exists", common.ErrInvalidToken)
			}
			return nil, common.WrapInternal("look up token user", err)
		}
	}
	return cl, nil
}

// Middleware attaches claims to the request context when a valid token is
// present. Requests without one pass through as anonymous.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := a.TokenFromRequest(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}
		cl, err := a.Resolve(r.Context(), tokenStr)
		if err != nil {
			slog.Debug("session token rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), cl)))
	})
}

// LoginURL builds loginPath?next=target, escaping target except for slashes.
func LoginURL(loginPath, target string) string {
	next := strings.ReplaceAll(url.QueryEscape(target), "%2F", "/")
	return loginPath + "?next=" + next
}

// RequireLogin redirects anonymous callers to the login page.
func RequireLogin(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				http.Redirect(w, r, LoginURL(loginPath, r.URL.RequestURI()), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireBearer rejects anonymous API calls with 401.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			WriteError(w, fmt.Errorf("%w: missing or invalid bearer token", common.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequirePerm(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cl, ok := FromContext(r.Context())
			if !ok {
				WriteError(w, fmt.Errorf("%w: no auth context", common.ErrUnauthorized))
				return
			}
			if !HasPerm(cl.Roles, required) {
				WriteError(w, fmt.Errorf("%w: %s required", common.ErrForbidden, required))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError answers an API call rejected for an auth reason: 401 for
// common.ErrUnauthorized, 403 for common.ErrForbidden. It reports whether err
// was one of those.
func WriteError(w http.ResponseWriter, err error) bool {
	var status int
	switch {
	case common.IsForbidden(err):
		status = http.StatusForbidden
	case common.IsUnauthorized(err):
		status = http.StatusUnauthorized
		w.Header().Set("WWW-Authenticate", `Bearer realm="yanews"`)
	default:
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	return true
}
