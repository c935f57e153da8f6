package respbuilder

import (
	"context"
	"net/http"
)

// Error builds error body and its http status.
// For ErrUnhandled the err message is never exposed since it may leak internal state (query, host, etc),
// the caller must log it instead.
func Error(ctx context.Context, reasonKind ErrKind, err error) (int, HTTPError) {
	meta := MetaFromContext(ctx)

	reason, ok := ReasonMap[reasonKind]
	if !ok {
		return http.StatusInternalServerError, HTTPError{
			Message: "unknown error kind",
			Code:    "XX",
			TraceID: meta.TraceID,
		}
	}

	msg := reason.Message
	if err != nil && reasonKind != ErrUnhandled {
		msg = err.Error()
	}

	return reason.HTTPStatus, HTTPError{
		Message: msg,
		Code:    reason.Code,
		TraceID: meta.TraceID,
	}
}
