package digest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"article-digest/internal/domain/entity"
	"article-digest/internal/handler/http/respond"
	"article-digest/internal/observability/logging"
	digestUC "article-digest/internal/usecase/digest"
)

// Runner runs the pipeline for one URL.
type Runner interface {
	Run(ctx context.Context, url string, progress digestUC.ProgressReporter) (*entity.Digest, error)
}

// Store keeps finished digests for later retrieval.
type Store interface {
	Put(d *entity.Digest) string
	Get(id string) (*entity.Digest, error)
}

// CreateRequest is the body of POST /digests.
type CreateRequest struct {
	URL string `json:"url" example:"https://example.com/post"`
}

// CreateHandler runs the pipeline synchronously and returns the digest.
type CreateHandler struct {
	Svc     Runner
	Store   Store
	Timeout time.Duration
}

// ServeHTTP creates a digest.
// @Summary      Create digest
// @Description  Fetches the page, summarizes it chunk by chunk and renders a PDF
// @Tags         digests
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Article URL"
// @Success      201 {object} DTO
// @Failure      400 {object} respond.ErrorBody "Invalid URL"
// @Failure      422 {object} respond.ErrorBody "No extractable text"
// @Failure      502 {object} respond.ErrorBody "Fetch or summarization failed"
// @Router       /digests [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCreateRequest(w, r)
	if !ok {
		return
	}

	d, err := Run(r.Context(), h.Svc, h.Store, req.URL, h.Timeout, nil)
	if err != nil {
		respond.HandleError(w, http.StatusInternalServerError, AppErrorFor(err))
		return
	}

	w.Header().Set("Location", "/digests/"+d.ID)
	respond.JSON(w, http.StatusCreated, ToDTO(d))
}

// decodeCreateRequest reads the request body and answers 400 or 413 itself
// when it is unusable.
func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (CreateRequest, bool) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.SafeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
			return req, false
		}
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body: expected {\"url\": \"...\"}"))
		return req, false
	}
	if strings.TrimSpace(req.URL) == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("url is required"))
		return req, false
	}
	return req, true
}

// Run executes the pipeline under timeout and caches the result. It is
// shared by the JSON API, the event stream and the web form; progress may
// be nil.
func Run(ctx context.Context, svc Runner, store Store, url string, timeout time.Duration, progress digestUC.ProgressReporter) (*entity.Digest, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	d, err := svc.Run(ctx, url, progress)
	if err != nil {
		return nil, err
	}

	id := store.Put(d)
	logging.FromContext(ctx).Info("digest cached", slog.String("digest_id", id))
	return d, nil
}
