package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/fedutinova/yanews/internal/auth"
	"github.com/fedutinova/yanews/internal/common"
	"github.com/fedutinova/yanews/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home.html",
	"detail.html",
	"comment_edit.html",
	"comment_delete.html",
	"login.html",
	"logout.html",
	"signup.html",
	"error.html",
}

var sanitizer = bluemonday.UGCPolicy()

// Markdown converts news text to HTML and strips anything unsafe from it.
func Markdown(text string) template.HTML {
	unsafe := blackfriday.Run([]byte(text))
	return template.HTML(sanitizer.SanitizeBytes(unsafe))
}

var funcMap = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("02.01.2006")
	},
	"formatTime": func(t time.Time) string {
		return t.Local().Format("02.01.2006 15:04")
	},
	"markdown": Markdown,
	"isAuthor": func(cl *auth.Claims, c models.Comment) bool {
		return cl != nil && cl.UserID == c.AuthorID.String()
	},
}

// viewData is what every page template receives.
type viewData struct {
	User          *auth.Claims
	News          []models.News
	Item          *models.News
	Comments      []models.Comment
	Comment       *models.Comment
	Form          map[string]string
	Errors        common.ValidationErrors
	NonFieldError string
	Next          string
	Status        int
	Message       string
}

// Pages holds the parsed page templates, one set per page.
type Pages struct {
	templates map[string]*template.Template
}

func NewPages() (*Pages, error) {
	p := &Pages{templates: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		p.templates[name] = t
	}
	return p, nil
}

// Render writes the page with the given status. The page is executed into a
// buffer first so a template error never leaves a half-written response.
func (p *Pages) Render(w http.ResponseWriter, status int, name string, data viewData) {
	t, ok := p.templates[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		slog.Error("failed to render template", "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("write page", "name", name, "err", err)
	}
}
