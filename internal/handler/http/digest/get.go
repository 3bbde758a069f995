package digest

import (
	"errors"
	"net/http"
	"strconv"

	"article-digest/internal/domain/entity"
	"article-digest/internal/handler/http/pathutil"
	"article-digest/internal/handler/http/respond"
)

// PDFFilename is offered to browsers downloading a digest.
const PDFFilename = "summarized_article.pdf"

// GetHandler returns a cached digest.
type GetHandler struct{ Store Store }

// ServeHTTP returns a digest by id.
// @Summary      Get digest
// @Tags         digests
// @Produce      json
// @Param        id path string true "Digest ID"
// @Success      200 {object} DTO
// @Failure      400 {object} respond.ErrorBody "Invalid id"
// @Failure      404 {object} respond.ErrorBody "Unknown or evicted"
// @Router       /digests/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d, ok := lookup(w, r, h.Store)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, ToDTO(d))
}

// PDFHandler serves the rendered PDF of a cached digest.
type PDFHandler struct{ Store Store }

// ServeHTTP downloads the digest PDF.
// @Summary      Download digest PDF
// @Tags         digests
// @Produce      application/pdf
// @Param        id path string true "Digest ID"
// @Success      200 {file} file
// @Failure      404 {object} respond.ErrorBody "Unknown or evicted"
// @Router       /digests/{id}/pdf [get]
func (h PDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d, ok := lookup(w, r, h.Store)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+PDFFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(d.PDF)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.PDF)
}

func lookup(w http.ResponseWriter, r *http.Request, store Store) (*entity.Digest, bool) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid digest id"))
		return nil, false
	}

	d, err := store.Get(id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return nil, false
	}
	return d, true
}
