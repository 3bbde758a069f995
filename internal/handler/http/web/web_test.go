package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-digest/internal/domain/entity"
	"article-digest/internal/infra/cache"
	digestUC "article-digest/internal/usecase/digest"
)

type stubRunner struct {
	err    error
	called bool
}

func (s *stubRunner) Run(_ context.Context, rawURL string, _ digestUC.ProgressReporter) (*entity.Digest, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	article := entity.NewArticle(rawURL, "Pets", []string{"A cat sleeps <quietly>.", "A dog barks."})
	return &entity.Digest{
		URL:       rawURL,
		Article:   article,
		Chunks:    []entity.Chunk{{Text: article.Text, Words: 7}},
		Summaries: []string{"A cat sleeps."},
		Summary:   "A cat sleeps.",
		Compression: entity.Compression{
			Ratio:    300.0 / 7,
			Label:    entity.LabelExcessive,
			Severity: entity.SeverityWarning,
			Message:  "43% Compression may be excessive.\nThe summary could be too brief and miss important details.",
		},
		PDF:      []byte("%PDF"),
		Duration: 2500 * time.Millisecond,
	}, nil
}

func newMux(t *testing.T, runner *stubRunner) *http.ServeMux {
	t.Helper()
	store, err := cache.NewDigestCache(2)
	require.NoError(t, err)

	mux := http.NewServeMux()
	Register(mux, Handler{Svc: runner, Store: store, Timeout: time.Minute}, nil)
	return mux
}

func submit(mux http.Handler, rawURL string) *httptest.ResponseRecorder {
	form := url.Values{"url": {rawURL}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestForm(t *testing.T) {
	mux := newMux(t, &stubRunner{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Article Extractor and Summarizer</title>")
	assert.Contains(t, body, "Share an article URL:")
	assert.NotContains(t, body, "Summarized Article Content")
}

func TestForm_UnknownPath(t *testing.T) {
	mux := newMux(t, &stubRunner{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmit_Success(t *testing.T) {
	runner := &stubRunner{}
	mux := newMux(t, runner)

	rec := submit(mux, "https://example.com/post")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, runner.called)
	body := rec.Body.String()
	assert.Contains(t, body, `value="https://example.com/post"`)
	assert.Contains(t, body, "A cat sleeps &lt;quietly&gt;. A dog barks.")
	assert.Contains(t, body, "<strong>Article Length:</strong> 36 characters")
	assert.Contains(t, body, "<strong>Summary Length:</strong> 13 characters")
	assert.Contains(t, body, `class="notice warning"`)
	assert.Contains(t, body, "43% Compression may be excessive.<br>The summary could be too brief")
	assert.Contains(t, body, "/pdf\" download>Download Summary as PDF</a>")
	assert.Contains(t, body, "1 chunk summarized in 2.50 seconds")
	assert.Contains(t, body, "Possibly Excessive")
}

func TestSubmit_MissingURL(t *testing.T) {
	runner := &stubRunner{}
	mux := newMux(t, runner)

	rec := submit(mux, "  ")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: url is required")
	assert.False(t, runner.called)
}

func TestSubmit_PipelineError(t *testing.T) {
	runner := &stubRunner{err: &digestUC.StageError{Stage: digestUC.StageExtract, Err: digestUC.ErrNoContent}}
	mux := newMux(t, runner)

	rec := submit(mux, "https://example.com/empty")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="notice warning">Error: extract stage failed: page has no extractable text`)
	assert.NotContains(t, body, "Summarized Article Content")
}
