package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fedutinova/yanews/internal/auth"
	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/validation"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var errs common.ValidationErrors
	switch {
	case errors.As(err, &errs):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation failed",
			"details": errs,
		})
	case common.IsBadRequest(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	case common.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, common.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	case common.IsUnauthorized(err), common.IsForbidden(err):
		auth.WriteError(w, err)
	case common.IsConflict(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		slog.Error("api request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeAPIError(w, r, fmt.Errorf("%w: %v", common.ErrBadRequest, err))
		return false
	}
	return true
}

func (h *Handlers) apiLogin(w http.ResponseWriter, r *http.Request) {
	var form validation.LoginForm
	if !decodeBody(w, r, &form) {
		return
	}

	token, _, err := h.Auth.Login(r.Context(), form)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.Auth.TTL().Seconds()),
	})
}

func (h *Handlers) apiLogout(w http.ResponseWriter, r *http.Request) {
	cl, ok := auth.FromContext(r.Context())
	if !ok {
		writeAPIError(w, r, common.ErrUnauthorized)
		return
	}
	if err := h.Auth.Logout(r.Context(), cl); err != nil {
		writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) apiListNews(w http.ResponseWriter, r *http.Request) {
	news, err := h.News.Home(r.Context())
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, news)
}

func (h *Handlers) apiGetNews(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeAPIError(w, r, common.ErrNewsNotFound)
		return
	}

	detail, err := h.News.Detail(r.Context(), id)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handlers) apiCreateNews(w http.ResponseWriter, r *http.Request) {
	var form validation.NewsForm
	if !decodeBody(w, r, &form) {
		return
	}

	news, err := h.News.PublishNews(r.Context(), form)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, news)
}

func (h *Handlers) apiCreateComment(w http.ResponseWriter, r *http.Request) {
	newsID, ok := parseID(r)
	if !ok {
		writeAPIError(w, r, common.ErrNewsNotFound)
		return
	}
	_, userID, ok := currentUser(r)
	if !ok {
		writeAPIError(w, r, common.ErrInvalidToken)
		return
	}

	var form validation.CommentForm
	if !decodeBody(w, r, &form) {
		return
	}

	comment, err := h.News.AddComment(r.Context(), newsID, userID, form)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handlers) apiUpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(r)
	if !ok {
		writeAPIError(w, r, common.ErrCommentNotFound)
		return
	}
	_, userID, ok := currentUser(r)
	if !ok {
		writeAPIError(w, r, common.ErrInvalidToken)
		return
	}

	var form validation.CommentForm
	if !decodeBody(w, r, &form) {
		return
	}

	comment, err := h.News.EditComment(r.Context(), commentID, userID, form)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *Handlers) apiDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(r)
	if !ok {
		writeAPIError(w, r, common.ErrCommentNotFound)
		return
	}
	_, userID, ok := currentUser(r)
	if !ok {
		writeAPIError(w, r, common.ErrInvalidToken)
		return
	}

	if _, err := h.News.DeleteComment(r.Context(), commentID, userID); err != nil {
		writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
