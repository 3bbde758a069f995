package digest

import (
	"context"
	"errors"
	"net/http"

	"article-digest/internal/domain/entity"
	"article-digest/internal/handler/http/respond"
	digestUC "article-digest/internal/usecase/digest"
)

// AppErrorFor maps a pipeline error to its HTTP status. The user message
// names the failing stage and the cause with secrets masked.
func AppErrorFor(err error) *respond.AppError {
	stage, _ := digestUC.StageOf(err)
	return &respond.AppError{
		Code:    StatusFor(err),
		UserMsg: respond.SanitizeError(err),
		Stage:   string(stage),
		Err:     err,
	}
}

// StatusFor returns the HTTP status for a pipeline error.
//
//	invalid or forbidden URL   400
//	fetch                      502
//	extract, no content        422
//	summarize                  502
//	render                     500
//	run deadline exceeded      504
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, digestUC.ErrInvalidURL),
		errors.Is(err, digestUC.ErrPrivateIP):
		return http.StatusBadRequest
	}

	stage, _ := digestUC.StageOf(err)
	switch stage {
	case digestUC.StageFetch, digestUC.StageSummarize:
		return http.StatusBadGateway
	case digestUC.StageExtract, digestUC.StageAggregate:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
