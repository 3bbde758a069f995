// Package web serves the single-page HTML form for summarizing an article.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"

	"article-digest/internal/handler/http/digest"
	"article-digest/internal/handler/http/respond"
	"article-digest/internal/observability/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTitle = "Article Extractor and Summarizer"

var pageTemplate = template.Must(
	template.New("index.html").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/index.html"))

// Page is the data rendered into the form template.
type Page struct {
	Title  string
	URL    string
	Error  string
	Digest *digest.DTO
}

// Handler serves GET / with an empty form and POST / with the form plus
// the digest of the submitted URL.
type Handler struct {
	Svc     digest.Runner
	Store   digest.Store
	Timeout time.Duration
}

// Register adds the form routes to mux.
func Register(mux *http.ServeMux, h Handler, guard func(http.Handler) http.Handler) {
	var post http.Handler = http.HandlerFunc(h.Submit)
	if guard != nil {
		post = guard(post)
	}
	mux.HandleFunc("GET /{$}", h.Form)
	mux.Handle("POST /{$}", post)
}

// Form renders the empty form.
func (h Handler) Form(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, Page{Title: pageTitle})
}

// Submit runs the pipeline for the posted URL. Failures are shown inline.
func (h Handler) Submit(w http.ResponseWriter, r *http.Request) {
	page := Page{Title: pageTitle}
	if err := r.ParseForm(); err != nil {
		page.Error = "could not read the submitted form"
		render(w, r, http.StatusBadRequest, page)
		return
	}

	page.URL = strings.TrimSpace(r.PostFormValue("url"))
	if page.URL == "" {
		page.Error = "url is required"
		render(w, r, http.StatusBadRequest, page)
		return
	}

	d, err := digest.Run(r.Context(), h.Svc, h.Store, page.URL, h.Timeout, nil)
	if err != nil {
		appErr := digest.AppErrorFor(err)
		logging.FromContext(r.Context()).Warn("digest failed",
			slog.String("stage", appErr.Stage),
			slog.String("error", appErr.UserMsg))
		page.Error = appErr.UserMsg
		render(w, r, appErr.Code, page)
		return
	}

	dto := digest.ToDTO(d)
	page.Digest = &dto
	render(w, r, http.StatusOK, page)
}

func render(w http.ResponseWriter, r *http.Request, code int, page Page) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		logging.FromContext(r.Context()).Error("failed to render page", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
