package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*
var templatesFS embed.FS

// renderer handles template rendering and markdown conversion.
type renderer struct {
	tmpl      *template.Template
	config    *Config
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// newRenderer parses the embedded templates and builds the markdown
// pipeline. Message content is untrusted, so everything goldmark emits is
// run through bluemonday before it reaches a page.
func newRenderer(cfg *Config) (*renderer, error) {
	r := &renderer{
		config: cfg,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}

	tmpl := template.New("ui").Funcs(template.FuncMap{
		"markdown":      r.renderMarkdown,
		"formatTokens":  formatTokens,
		"formatTime":    formatTime,
		"formatTimeAgo": formatTimeAgo,
	})

	tmpl, err := tmpl.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r.tmpl = tmpl
	return r, nil
}

// PageData contains common data for all pages.
type PageData struct {
	Title           string
	BasePath        string
	ReadOnly        bool
	RefreshInterval int // in seconds
	Data            any
}

// render renders a page template wrapped in the base layout.
func (r *renderer) render(w http.ResponseWriter, name, title string, data any) error {
	pageData := PageData{
		Title:           title,
		BasePath:        r.config.BasePath,
		ReadOnly:        r.config.ReadOnly,
		RefreshInterval: int(r.config.RefreshInterval.Seconds()),
		Data:            data,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return r.tmpl.ExecuteTemplate(w, name, pageData)
}

// renderMarkdown converts untrusted markdown to sanitized HTML.
func (r *renderer) renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes()))
}

// Template helper functions

func formatTokens(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
