// Package digest implements the article digest pipeline: fetch a page, extract
// its headings and paragraphs, split the text into sentence-aligned chunks,
// summarize each chunk, aggregate the summaries, grade the compression and
// render the result as a PDF.
package digest

import (
	"errors"
	"fmt"
)

// Stage names one step of the pipeline. Every pipeline failure is attributed
// to exactly one stage.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageChunk     Stage = "chunk"
	StageSummarize Stage = "summarize"
	StageAggregate Stage = "aggregate"
	StageRender    Stage = "render"
)

// Sentinel errors for pipeline operations.
var (
	// ErrNoContent indicates the page yielded no words after extraction.
	// This is a precondition failure: nothing is sent to the summarizer.
	ErrNoContent = errors.New("page has no extractable text")

	// ErrEmptyArticle indicates a compression ratio was requested for an
	// article with zero words, where the ratio is undefined.
	ErrEmptyArticle = errors.New("article has no words, compression ratio is undefined")

	// ErrSummarizationFailed indicates the summarizer failed for a chunk.
	ErrSummarizationFailed = errors.New("failed to summarize chunk")

	// ErrRenderFailed indicates the PDF could not be produced.
	ErrRenderFailed = errors.New("failed to render summary")
)

// Sentinel errors for page fetching. Fetcher implementations wrap these so
// callers can tell client mistakes from remote failures.
var (
	// ErrInvalidURL indicates the URL format is invalid or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private, loopback or link-local address.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrExtractionFailed indicates the HTML could not be parsed.
	ErrExtractionFailed = errors.New("content extraction failed")
)

// StageError tags an error with the pipeline stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf reports the stage an error is attributed to, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
