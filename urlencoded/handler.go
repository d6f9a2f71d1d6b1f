package urlencoded

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/elnormous/contenttype"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomasbasham/enumform"
)

// HandlerFunc is a route handler receiving the decoded body.
type HandlerFunc[T any] func(rw http.ResponseWriter, req *http.Request, data T)

// Handler guards next with ex: next only runs once the body decoded
// successfully. Failures are passed to the extractor's [ErrorHandler].
func Handler[T any](ex *Extractor[T], next HandlerFunc[T]) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		data, err := ex.Extract(req)
		if err != nil {
			ex.o.errorHandler(rw, req, err)

			return
		}

		next(rw, req, data)
	})
}

var supportedMediaTypes = []contenttype.MediaType{
	contenttype.NewMediaType("text/plain"),
	contenttype.NewMediaType("application/json"),
}

type errorMessage struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// DefaultErrorHandler responds with [StatusCode] of err and a body in the
// format the client accepts, plain text unless JSON is preferred.
func DefaultErrorHandler(rw http.ResponseWriter, req *http.Request, err error) {
	code := StatusCode(err)

	mt, body, ferr := format(req, err)
	if ferr != nil {
		zerolog.Ctx(req.Context()).Warn().Err(ferr).Msg("Response format negotiation failed. No body is sent")
	}

	if len(body) != 0 {
		rw.Header().Set("Content-Type", mt.String())
		rw.Header().Set("X-Content-Type-Options", "nosniff")
	}

	rw.WriteHeader(code)

	if len(body) != 0 {
		rw.Write(body) //nolint:errcheck
	}
}

func format(req *http.Request, err error) (contenttype.MediaType, []byte, error) {
	// Without an Accept header every type is acceptable and the first one wins.
	mediaType, _, ferr := contenttype.GetAcceptableMediaType(req, supportedMediaTypes)
	if ferr != nil {
		return supportedMediaTypes[0], []byte(err.Error()), nil
	}

	switch mediaType.Subtype {
	case "json":
		msg := errorMessage{Code: errorCode(err), Message: err.Error()}

		var decodeErr *enumform.DecodeError
		if errors.As(err, &decodeErr) {
			msg.Path = decodeErr.Path
		}

		res, merr := json.Marshal(msg)
		if merr != nil {
			return mediaType, nil, fmt.Errorf("encoding error body: %w", merr)
		}

		return mediaType, res, nil
	default:
		return supportedMediaTypes[0], []byte(err.Error()), nil
	}
}
