package digest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"article-digest/internal/observability/logging"
	digestUC "article-digest/internal/usecase/digest"
)

// Server-sent event names.
const (
	EventProgress = "progress"
	EventDigest   = "digest"
	EventError    = "error"
)

// ProgressDTO is the payload of a progress event.
type ProgressDTO struct {
	Completed        int     `json:"completed" example:"3"`
	Total            int     `json:"total" example:"8"`
	Percent          float64 `json:"percent" example:"37.5"`
	RemainingSeconds float64 `json:"remaining_seconds" example:"12.4"`
}

// StreamErrorDTO is the payload of an error event. Status is the code the
// non-streaming endpoint would have answered with.
type StreamErrorDTO struct {
	Error  string `json:"error"`
	Stage  string `json:"stage,omitempty"`
	Status int    `json:"status"`
}

// StreamHandler runs the pipeline like CreateHandler but answers with
// server-sent events: one progress event per summarized chunk, then a single
// digest or error event.
type StreamHandler struct {
	Svc     Runner
	Store   Store
	Timeout time.Duration
}

// ServeHTTP streams a digest run.
// @Summary      Create digest with progress
// @Description  Same as POST /digests, reported as text/event-stream
// @Tags         digests
// @Accept       json
// @Produce      text/event-stream
// @Param        request body CreateRequest true "Article URL"
// @Success      200 {string} string "progress events, then a digest or error event"
// @Failure      400 {object} respond.ErrorBody "Invalid request body"
// @Router       /digests/stream [post]
func (h StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCreateRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	logger := logging.FromContext(r.Context())
	events := &eventWriter{w: w, rc: http.NewResponseController(w)}
	events.flush()

	progress := digestUC.ProgressFunc(func(p digestUC.Progress) {
		events.send(EventProgress, ProgressDTO{
			Completed:        p.Completed,
			Total:            p.Total,
			Percent:          p.Percent,
			RemainingSeconds: p.Remaining.Seconds(),
		})
	})

	d, err := Run(r.Context(), h.Svc, h.Store, req.URL, h.Timeout, progress)
	if err != nil {
		appErr := AppErrorFor(err)
		logger.Warn("streamed digest failed",
			slog.Int("code", appErr.Code),
			slog.String("stage", appErr.Stage),
			slog.String("user_message", appErr.UserMsg))
		events.send(EventError, StreamErrorDTO{Error: appErr.UserMsg, Stage: appErr.Stage, Status: appErr.Code})
		return
	}
	events.send(EventDigest, ToDTO(d))

	if events.err != nil {
		logger.Debug("event stream closed early", slog.Any("error", events.err))
	}
}

// eventWriter writes server-sent events and stops at the first write error,
// which usually means the client went away.
type eventWriter struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	err error
}

func (e *eventWriter) send(event string, v any) {
	if e.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		e.err = err
		return
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		e.err = err
		return
	}
	e.flush()
}

func (e *eventWriter) flush() {
	if err := e.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		e.err = err
	}
}
