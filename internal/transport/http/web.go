package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/fedutinova/yanews/internal/auth"
	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/validation"
)

const (
	msgInvalidLogin  = "Пожалуйста, введите правильные имя пользователя и пароль. Оба поля могут быть чувствительны к регистру."
	msgUsernameTaken = "Пользователь с таким именем уже существует."
)

func commentsURL(newsID int64) string {
	return fmt.Sprintf("/news/%d/#comments", newsID)
}

// safeNext accepts only local paths as a post-login redirect target.
// Browsers drop tabs and newlines from URLs, so "/\t/host" would turn into a
// protocol-relative link; control bytes are rejected outright.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if strings.IndexFunc(next, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0 {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	cl, _ := auth.FromContext(r.Context())
	h.Pages.Render(w, http.StatusNotFound, "error.html", viewData{
		User:    cl,
		Status:  http.StatusNotFound,
		Message: "Страница не найдена.",
	})
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "path", r.URL.Path, "error", err)
	h.Pages.Render(w, http.StatusInternalServerError, "error.html", viewData{
		Status:  http.StatusInternalServerError,
		Message: "Внутренняя ошибка сервера.",
	})
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if common.IsNotFound(err) {
		h.notFound(w, r)
		return
	}
	h.serverError(w, r, err)
}

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	news, err := h.News.Home(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	cl, _ := auth.FromContext(r.Context())
	h.Pages.Render(w, http.StatusOK, "home.html", viewData{User: cl, News: news})
}

func (h *Handlers) newsDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	h.renderDetail(w, r, id, nil, nil)
}

func (h *Handlers) renderDetail(w http.ResponseWriter, r *http.Request, newsID int64, form map[string]string, errs common.ValidationErrors) {
	detail, err := h.News.Detail(r.Context(), newsID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cl, _ := auth.FromContext(r.Context())
	h.Pages.Render(w, http.StatusOK, "detail.html", viewData{
		User:     cl,
		Item:     detail.News,
		Comments: detail.Comments,
		Form:     form,
		Errors:   errs,
	})
}

func (h *Handlers) addComment(w http.ResponseWriter, r *http.Request) {
	newsID, ok := parseID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	_, userID, ok := currentUser(r)
	if !ok {
		http.Redirect(w, r, auth.LoginURL(LoginPath, r.URL.RequestURI()), http.StatusFound)
		return
	}

	form := validation.CommentForm{Text: r.PostFormValue("text")}
	_, err := h.News.AddComment(r.Context(), newsID, userID, form)
	var errs common.ValidationErrors
	switch {
	case errors.As(err, &errs):
		h.renderDetail(w, r, newsID, map[string]string{"text": form.Text}, errs)
	case err != nil:
		h.fail(w, r, err)
	default:
		http.Redirect(w, r, commentsURL(newsID), http.StatusFound)
	}
}

func (h *Handlers) editCommentPage(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	cl, userID, ok := currentUser(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	comment, err := h.News.CommentForAuthor(r.Context(), commentID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Pages.Render(w, http.StatusOK, "comment_edit.html", viewData{
		User:    cl,
		Comment: comment,
		Form:    map[string]string{"text": comment.Text},
	})
}

func (h *Handlers) editComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	cl, userID, ok := currentUser(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	form := validation.CommentForm{Text: r.PostFormValue("text")}
	comment, err := h.News.EditComment(r.Context(), commentID, userID, form)
	var errs common.ValidationErrors
	switch {
	case errors.As(err, &errs):
		h.Pages.Render(w, http.StatusOK, "comment_edit.html", viewData{
			User:    cl,
			Comment: comment,
			Form:    map[string]string{"text": form.Text},
			Errors:  errs,
		})
	case err != nil:
		h.fail(w, r, err)
	default:
		http.Redirect(w, r, commentsURL(comment.NewsID), http.StatusFound)
	}
}

func (h *Handlers) deleteCommentPage(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	cl, userID, ok := currentUser(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	comment, err := h.News.CommentForAuthor(r.Context(), commentID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Pages.Render(w, http.StatusOK, "comment_delete.html", viewData{User: cl, Comment: comment})
}

func (h *Handlers) deleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	_, userID, ok := currentUser(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	comment, err := h.News.DeleteComment(r.Context(), commentID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, commentsURL(comment.NewsID), http.StatusFound)
}

func (h *Handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	cl, _ := auth.FromContext(r.Context())
	h.Pages.Render(w, http.StatusOK, "login.html", viewData{
		User: cl,
		Next: r.URL.Query().Get("next"),
	})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	form := validation.LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	next := r.PostFormValue("next")

	token, _, err := h.Auth.Login(r.Context(), form)
	if err != nil {
		data := viewData{
			Form: map[string]string{"username": strings.TrimSpace(form.Username)},
			Next: next,
		}
		switch {
		case errors.As(err, &data.Errors):
		case errors.Is(err, common.ErrInvalidCredentials):
			data.NonFieldError = msgInvalidLogin
		default:
			h.serverError(w, r, err)
			return
		}
		h.Pages.Render(w, http.StatusOK, "login.html", data)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Config.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Auth.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.Config.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, safeNext(next), http.StatusFound)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if cl, ok := auth.FromContext(r.Context()); ok {
		if err := h.Auth.Logout(r.Context(), cl); err != nil {
			h.serverError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Config.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Config.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.Pages.Render(w, http.StatusOK, "logout.html", viewData{})
}

func (h *Handlers) signupPage(w http.ResponseWriter, r *http.Request) {
	cl, _ := auth.FromContext(r.Context())
	h.Pages.Render(w, http.StatusOK, "signup.html", viewData{User: cl})
}

func (h *Handlers) signup(w http.ResponseWriter, r *http.Request) {
	form := validation.SignupForm{
		Username:  r.PostFormValue("username"),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}

	_, err := h.Auth.Signup(r.Context(), form)
	if err != nil {
		data := viewData{Form: map[string]string{"username": strings.TrimSpace(form.Username)}}
		switch {
		case errors.As(err, &data.Errors):
		case common.IsConflict(err):
			data.Errors = common.ValidationErrors{{Field: "username", Message: msgUsernameTaken}}
		default:
			h.serverError(w, r, err)
			return
		}
		h.Pages.Render(w, http.StatusOK, "signup.html", data)
		return
	}

	http.Redirect(w, r, LoginPath, http.StatusFound)
}
