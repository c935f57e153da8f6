package respbuilder

import "net/http"

type ErrKind int64

const (
	ErrUnhandled ErrKind = iota + 1
	ErrValidation
	ErrDuplicateEntries
	ErrResourceNotFound
	ErrUnauthorized
	ErrForbidden
	ErrTooManyRequests
	ErrPayloadTooLarge
)

type Reason struct {
	Code       string
	Message    string
	HTTPStatus int
}

var ReasonMap = map[ErrKind]Reason{
	ErrUnhandled:        {Code: "01", Message: "internal server error", HTTPStatus: http.StatusInternalServerError},
	ErrValidation:       {Code: "02", Message: "error validation", HTTPStatus: http.StatusBadRequest},
	ErrDuplicateEntries: {Code: "03", Message: "duplicate entries", HTTPStatus: http.StatusConflict},
	ErrResourceNotFound: {Code: "04", Message: "resource not found", HTTPStatus: http.StatusNotFound},
	ErrUnauthorized:     {Code: "05", Message: "unauthorized", HTTPStatus: http.StatusUnauthorized},
	ErrForbidden:        {Code: "06", Message: "forbidden", HTTPStatus: http.StatusForbidden},
	ErrTooManyRequests:  {Code: "07", Message: "too many requests", HTTPStatus: http.StatusTooManyRequests},
	ErrPayloadTooLarge:  {Code: "08", Message: "request body too large", HTTPStatus: http.StatusRequestEntityTooLarge},
}

// HTTPError is the body of every failed response.
// The front end only reads the "error" key, the rest is for debugging.
type HTTPError struct {
	Message string `json:"error"`
	Code    string `json:"error_code"`
	TraceID string `json:"trace_id,omitempty"`
}

func (e HTTPError) Error() string {
	return e.Message
}

// Message is a generic body for operation without resource to return, i.e: delete.
type Message struct {
	Message string `json:"message"`
}
