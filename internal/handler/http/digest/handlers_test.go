package digest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-digest/internal/domain/entity"
	"article-digest/internal/handler/http/digest"
	"article-digest/internal/infra/cache"
	digestUC "article-digest/internal/usecase/digest"
)

/* ───────── stubs ───────── */

type stubRunner struct {
	digest   *entity.Digest
	err      error
	steps    []digestUC.Progress // reported before returning
	gotURL   string
	deadline bool
}

func (s *stubRunner) Run(ctx context.Context, url string, progress digestUC.ProgressReporter) (*entity.Digest, error) {
	s.gotURL = url
	_, s.deadline = ctx.Deadline()
	if progress != nil {
		for _, p := range s.steps {
			progress.ChunkSummarized(p)
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	d := *s.digest
	return &d, nil
}

func sampleDigest() *entity.Digest {
	article := entity.NewArticle("https://example.com/post", "Pets", []string{"A cat sleeps.", "A dog barks."})
	return &entity.Digest{
		URL:       "https://example.com/post",
		Article:   article,
		Chunks:    []entity.Chunk{{Index: 0, Text: article.Text, Words: 6}},
		Summaries: []string{"A cat."},
		Summary:   "A cat.",
		Compression: entity.Compression{
			Ratio:    100.0 * 2 / 6,
			Label:    entity.LabelBalanced,
			Severity: entity.SeverityInfo,
			Message:  "33% Well-Balanced",
		},
		PDF:       []byte("%PDF-1.3 fake"),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
	}
}

func newServer(t *testing.T, runner *stubRunner) (*http.ServeMux, *cache.DigestCache) {
	t.Helper()
	store, err := cache.NewDigestCache(4)
	require.NoError(t, err)

	mux := http.NewServeMux()
	digest.Register(mux, runner, store, time.Minute, nil)
	return mux, store
}

func post(mux http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/digests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

/* ───────── POST /digests ───────── */

func TestCreate_Success(t *testing.T) {
	runner := &stubRunner{digest: sampleDigest()}
	mux, store := newServer(t, runner)

	rec := post(mux, `{"url":"https://example.com/post"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got digest.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	_, err := uuid.Parse(got.ID)
	require.NoError(t, err)
	assert.Equal(t, "/digests/"+got.ID, rec.Header().Get("Location"))
	assert.Equal(t, "https://example.com/post", runner.gotURL)
	assert.True(t, runner.deadline)

	assert.Equal(t, "Pets", got.Title)
	assert.Equal(t, "A cat sleeps. A dog barks.", got.Article)
	assert.Equal(t, 26, got.ArticleLength)
	assert.Equal(t, 6, got.ArticleWords)
	assert.Equal(t, "A cat.", got.Summary)
	assert.Equal(t, 6, got.SummaryLength)
	assert.Equal(t, 2, got.SummaryWords)
	assert.Equal(t, 1, got.Chunks)
	assert.Equal(t, []string{"A cat."}, got.ChunkSummaries)
	assert.Equal(t, entity.LabelBalanced, got.Compression.Label)
	assert.Equal(t, "info", got.Compression.Severity)
	assert.Equal(t, "/digests/"+got.ID+"/pdf", got.PDFURL)
	assert.EqualValues(t, 1500, got.DurationMS)

	cached, err := store.Get(got.ID)
	require.NoError(t, err)
	assert.Equal(t, "A cat.", cached.Summary)
}

func TestCreate_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"url":`, "invalid request body"},
		{"missing url", `{}`, "url is required"},
		{"blank url", `{"url":"   "}`, "url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{digest: sampleDigest()}
			mux, _ := newServer(t, runner)

			rec := post(mux, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Empty(t, runner.gotURL)
		})
	}
}

func TestCreate_StageErrors(t *testing.T) {
	stageErr := func(stage digestUC.Stage, err error) error {
		return &digestUC.StageError{Stage: stage, Err: err}
	}

	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantStage string
	}{
		{"invalid url", stageErr(digestUC.StageFetch, &entity.ValidationError{Field: "url", Message: "URL must use http or https scheme"}), http.StatusBadRequest, "fetch"},
		{"private ip", stageErr(digestUC.StageFetch, fmt.Errorf("%w: 10.0.0.1", digestUC.ErrPrivateIP)), http.StatusBadRequest, "fetch"},
		{"fetch failed", stageErr(digestUC.StageFetch, digestUC.ErrTimeout), http.StatusBadGateway, "fetch"},
		{"no content", stageErr(digestUC.StageExtract, digestUC.ErrNoContent), http.StatusUnprocessableEntity, "extract"},
		{"summarize failed", stageErr(digestUC.StageSummarize, digestUC.ErrSummarizationFailed), http.StatusBadGateway, "summarize"},
		{"render failed", stageErr(digestUC.StageRender, digestUC.ErrRenderFailed), http.StatusInternalServerError, "render"},
		{"deadline", stageErr(digestUC.StageSummarize, context.DeadlineExceeded), http.StatusGatewayTimeout, "summarize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, store := newServer(t, &stubRunner{err: tt.err})

			rec := post(mux, `{"url":"https://example.com/post"}`)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStage, body["stage"])
			assert.Equal(t, tt.err.Error(), body["error"])
			assert.Zero(t, store.Len())
		})
	}
}

func TestCreate_MasksSecretsInErrors(t *testing.T) {
	err := &digestUC.StageError{Stage: digestUC.StageSummarize, Err: errors.New("401 for token hf_AbCdEfGhIjKlMnOp")}
	mux, _ := newServer(t, &stubRunner{err: err})

	rec := post(mux, `{"url":"https://example.com/post"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "AbCdEfGhIjKlMnOp")
	assert.Contains(t, rec.Body.String(), "hf_****")
}

func TestRegister_Guard(t *testing.T) {
	store, err := cache.NewDigestCache(1)
	require.NoError(t, err)

	guarded := false
	mux := http.NewServeMux()
	digest.Register(mux, &stubRunner{digest: sampleDigest()}, store, 0, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guarded = true
			http.Error(w, "slow down", http.StatusTooManyRequests)
		})
	})

	rec := post(mux, `{"url":"https://example.com/post"}`)
	assert.True(t, guarded)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	guarded = false
	rec = postStream(mux, `{"url":"https://example.com/post"}`)
	assert.True(t, guarded, "stream route must be guarded too")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

/* ───────── GET /digests/{id} ───────── */

func TestGet(t *testing.T) {
	mux, store := newServer(t, &stubRunner{})
	id := store.Put(sampleDigest())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/digests/"+id, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got digest.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "A cat.", got.Summary)
}

func TestGet_Errors(t *testing.T) {
	mux, _ := newServer(t, &stubRunner{})

	tests := []struct {
		path string
		want int
	}{
		{"/digests/not-a-uuid", http.StatusBadRequest},
		{"/digests/" + uuid.NewString(), http.StatusNotFound},
		{"/digests/" + uuid.NewString() + "/pdf", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, tt.path)
	}
}

/* ───────── GET /digests/{id}/pdf ───────── */

func TestPDF(t *testing.T) {
	mux, store := newServer(t, &stubRunner{})
	id := store.Put(sampleDigest())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/digests/"+id+"/pdf", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="summarized_article.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-1.3 fake", rec.Body.String())
}

/* ───────── StatusFor ───────── */

func TestStatusFor_UntaggedError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, digest.StatusFor(errors.New("boom")))
	assert.Empty(t, digest.AppErrorFor(errors.New("boom")).Stage)
}

/* ───────── POST /digests/stream ───────── */

type sseEvent struct {
	name string
	data string
}

func parseEvents(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			if name, ok := strings.CutPrefix(line, "event: "); ok {
				ev.name = name
			}
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				ev.data = data
			}
		}
		events = append(events, ev)
	}
	return events
}

func postStream(mux http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/digests/stream", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestStream_ProgressThenDigest(t *testing.T) {
	runner := &stubRunner{
		digest: sampleDigest(),
		steps: []digestUC.Progress{
			{Completed: 1, Total: 2, Percent: 50, Remaining: 1500 * time.Millisecond},
			{Completed: 2, Total: 2, Percent: 100},
		},
	}
	mux, store := newServer(t, runner)

	rec := postStream(mux, `{"url":"https://example.com/post"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, rec.Flushed)

	events := parseEvents(t, rec.Body.String())
	require.Len(t, events, 3)

	assert.Equal(t, digest.EventProgress, events[0].name)
	var first digest.ProgressDTO
	require.NoError(t, json.Unmarshal([]byte(events[0].data), &first))
	assert.Equal(t, digest.ProgressDTO{Completed: 1, Total: 2, Percent: 50, RemainingSeconds: 1.5}, first)

	assert.Equal(t, digest.EventProgress, events[1].name)

	assert.Equal(t, digest.EventDigest, events[2].name)
	var got digest.DTO
	require.NoError(t, json.Unmarshal([]byte(events[2].data), &got))
	assert.Equal(t, "A cat.", got.Summary)

	_, err := store.Get(got.ID)
	assert.NoError(t, err, "streamed digest must be cached for the PDF link")
}

func TestStream_ErrorEvent(t *testing.T) {
	runner := &stubRunner{
		err:   &digestUC.StageError{Stage: digestUC.StageSummarize, Err: digestUC.ErrSummarizationFailed},
		steps: []digestUC.Progress{{Completed: 1, Total: 3, Percent: 100.0 / 3}},
	}
	mux, store := newServer(t, runner)

	rec := postStream(mux, `{"url":"https://example.com/post"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	events := parseEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, digest.EventProgress, events[0].name)
	assert.Equal(t, digest.EventError, events[1].name)

	var got digest.StreamErrorDTO
	require.NoError(t, json.Unmarshal([]byte(events[1].data), &got))
	assert.Equal(t, "summarize", got.Stage)
	assert.Equal(t, http.StatusBadGateway, got.Status)
	assert.Zero(t, store.Len())
}

func TestStream_BadRequest(t *testing.T) {
	runner := &stubRunner{digest: sampleDigest()}
	mux, _ := newServer(t, runner)

	rec := postStream(mux, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "url is required")
	assert.Empty(t, runner.gotURL)
}
