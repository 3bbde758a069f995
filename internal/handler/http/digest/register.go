package digest

import (
	"net/http"
	"time"
)

// Register adds the digest routes to mux. guard, when non-nil, wraps the
// route that starts a pipeline run.
func Register(mux *http.ServeMux, svc Runner, store Store, timeout time.Duration, guard func(http.Handler) http.Handler) {
	var create http.Handler = CreateHandler{Svc: svc, Store: store, Timeout: timeout}
	var stream http.Handler = StreamHandler{Svc: svc, Store: store, Timeout: timeout}
	if guard != nil {
		create = guard(create)
		stream = guard(stream)
	}

	mux.Handle("POST /digests", create)
	mux.Handle("POST /digests/stream", stream)
	mux.Handle("GET /digests/{id}", GetHandler{Store: store})
	mux.Handle("GET /digests/{id}/pdf", PDFHandler{Store: store})
}
