package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fedutinova/yanews/internal/auth"
	"github.com/fedutinova/yanews/internal/config"
	"github.com/fedutinova/yanews/internal/repository"
	"github.com/fedutinova/yanews/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
)

const (
	LoginPath  = "/auth/login/"
	LogoutPath = "/auth/logout/"
	SignupPath = "/auth/signup/"
)

// Pinger is a dependency the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	News   *usecase.NewsUseCase
	Auth   *usecase.AuthUseCase
	Authn  *auth.Authenticator
	Store  repository.Store
	Redis  Pinger
	Pages  *Pages
	Config config.Config
}

func (h *Handlers) Routers(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	authLimit := httprate.LimitByIP(h.Config.AuthRateLimit, time.Minute)

	r.Group(func(r chi.Router) {
		r.Use(h.Authn.Middleware)

		r.Get("/", h.home)
		r.Get("/news/{id}/", h.newsDetail)
		r.With(auth.RequireLogin(LoginPath)).Post("/news/{id}/", h.addComment)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireLogin(LoginPath))

			r.Get("/edit_comment/{id}/", h.editCommentPage)
			r.Post("/edit_comment/{id}/", h.editComment)
			r.Get("/delete_comment/{id}/", h.deleteCommentPage)
			r.Post("/delete_comment/{id}/", h.deleteComment)
			r.Delete("/delete_comment/{id}/", h.deleteComment)
		})

		r.Get(LoginPath, h.loginPage)
		r.With(authLimit).Post(LoginPath, h.login)
		r.Get(LogoutPath, h.logout)
		r.Post(LogoutPath, h.logout)
		r.Get(SignupPath, h.signupPage)
		r.With(authLimit).Post(SignupPath, h.signup)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.Authn.Middleware)

		r.With(authLimit).Post("/auth/login", h.apiLogin)
		r.Get("/news", h.apiListNews)
		r.Get("/news/{id}", h.apiGetNews)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireBearer)

			r.Post("/auth/logout", h.apiLogout)
			r.With(auth.RequirePerm(auth.PermNewsPublish)).Post("/news", h.apiCreateNews)
			r.With(auth.RequirePerm(auth.PermCommentWrite)).Post("/news/{id}/comments", h.apiCreateComment)
			r.Patch("/comments/{id}", h.apiUpdateComment)
			r.Delete("/comments/{id}", h.apiDeleteComment)
		})
	})
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// currentUser returns the caller's claims and user id, if authenticated.
func currentUser(r *http.Request) (*auth.Claims, uuid.UUID, bool) {
	cl, ok := auth.FromContext(r.Context())
	if !ok {
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(cl.UserID)
	if err != nil {
		slog.Warn("token with malformed user id", "user_id", cl.UserID)
		return nil, uuid.Nil, false
	}
	return cl, id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "err", err)
	}
}
