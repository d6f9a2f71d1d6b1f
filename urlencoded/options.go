package urlencoded

import (
	"net/http"

	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog"

	"github.com/tomasbasham/enumform/config"
)

// Option configures an [Extractor].
type Option func(*opts)

type opts struct {
	limit        bytesize.ByteSize
	logger       zerolog.Logger
	validate     bool
	errorHandler ErrorHandler
}

// ErrorHandler writes the response for a request whose guard failed.
type ErrorHandler func(rw http.ResponseWriter, req *http.Request, err error)

func defaultOptions() opts {
	return opts{
		limit:        config.DefaultFormLimit,
		logger:       zerolog.Nop(),
		errorHandler: DefaultErrorHandler,
	}
}

// WithLimit sets the maximum body size. Zero keeps the current limit.
func WithLimit(limit bytesize.ByteSize) Option {
	return func(o *opts) {
		if limit != 0 {
			o.limit = limit
		}
	}
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *opts) {
		o.logger = logger
	}
}

// WithValidation checks decoded structs against their `validate` tags.
func WithValidation() Option {
	return func(o *opts) {
		o.validate = true
	}
}

// WithErrorHandler replaces [DefaultErrorHandler] in [Handler]. A nil handler
// is ignored.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(o *opts) {
		if handler != nil {
			o.errorHandler = handler
		}
	}
}
