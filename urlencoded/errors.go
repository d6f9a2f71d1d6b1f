package urlencoded

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomasbasham/enumform"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrRead                 = errors.New("failed to read request body")
)

// StatusCode maps an error returned by [Extractor.Extract] to the response
// status of a failed guard.
func StatusCode(err error) int {
	var unsupported *enumform.UnsupportedTypeError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, enumform.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, enumform.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.As(err, &unsupported):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// errorCode returns a stable identifier for err, used in error response bodies.
func errorCode(err error) string {
	switch {
	case errors.Is(err, enumform.ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, enumform.ErrMalformedEncoding):
		return "malformed_encoding"
	case errors.Is(err, enumform.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrUnsupportedMediaType):
		return "unsupported_media_type"
	default:
		return "bad_request"
	}
}
