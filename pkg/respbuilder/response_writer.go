package respbuilder

import (
	"net/http"

	"github.com/segmentio/encoding/json"
)

func WriteJSON(httpStatus int, rw http.ResponseWriter, r *http.Request, data interface{}) {
	meta := MetaFromContext(r.Context())

	b, err := json.Marshal(data)
	if err != nil {
		reason := ReasonMap[ErrUnhandled]
		httpStatus = reason.HTTPStatus
		b, _ = json.Marshal(HTTPError{
			Message: reason.Message,
			Code:    reason.Code,
			TraceID: meta.TraceID,
		})
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Tracer-ID", meta.TraceID)
	rw.WriteHeader(httpStatus)
	_, _ = rw.Write(b)
}

// WriteError writes error body using the status code defined by reasonKind.
func WriteError(rw http.ResponseWriter, r *http.Request, reasonKind ErrKind, err error) {
	status, body := Error(r.Context(), reasonKind, err)
	WriteJSON(status, rw, r, body)
}
