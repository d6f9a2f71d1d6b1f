// Package urlencoded exposes the enumform decoder as a net/http data guard for
// application/x-www-form-urlencoded request bodies.
package urlencoded

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/elnormous/contenttype"
	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog"

	"github.com/tomasbasham/enumform"
	"github.com/tomasbasham/enumform/config"
)

var formMediaType = contenttype.NewMediaType("application/x-www-form-urlencoded")

// Extractor decodes request bodies into values of type T. It holds no per
// request state and is safe for concurrent use.
type Extractor[T any] struct {
	dec enumform.Deserializer[T]
	o   opts
}

// New returns an [Extractor] decoding with dec, typically an
// [enumform.Codec] or an [enumform.Union].
func New[T any](dec enumform.Deserializer[T], options ...Option) *Extractor[T] {
	ex := &Extractor[T]{dec: dec, o: defaultOptions()}

	for _, opt := range options {
		opt(&ex.o)
	}

	return ex
}

// FromConfig returns an [Extractor] limited to the configured form size.
// Further options are applied afterwards and may override it.
func FromConfig[T any](dec enumform.Deserializer[T], conf config.Configuration, options ...Option) *Extractor[T] {
	return New(dec, append([]Option{WithLimit(conf.Limits.Form)}, options...)...)
}

// Limit returns the maximum accepted body size.
func (e *Extractor[T]) Limit() bytesize.ByteSize {
	return e.o.limit
}

// Extract consumes the body of req and decodes it into a T. Errors match
// [ErrUnsupportedMediaType], [ErrRead], [enumform.ErrPayloadTooLarge],
// [enumform.ErrMalformedEncoding] or [enumform.ErrSchemaMismatch]; if the
// request is cancelled while the body is read, the context error is returned
// and nothing is decoded.
func (e *Extractor[T]) Extract(req *http.Request) (T, error) {
	var zero T

	logger := e.logger(req)

	// Wildcards such as */* describe what a client accepts, never what it sent.
	ctype, err := contenttype.GetMediaType(req)
	if err != nil || !ctype.EqualsMIME(formMediaType) {
		return zero, fmt.Errorf("%w: expected %s, got %q",
			ErrUnsupportedMediaType, formMediaType.String(), req.Header.Get("Content-Type"))
	}

	body, err := e.read(req)
	if err != nil {
		logger.Debug().Err(err).Msg("Reading form body failed")

		return zero, err
	}

	tree, err := enumform.ParseTree(body)
	if err != nil {
		logger.Error().Err(err).Msg("Parsing form body failed")

		return zero, err
	}

	value, err := e.decode(tree)
	if err != nil {
		logger.Error().Err(err).Msg("Decoding form body failed")

		return zero, err
	}

	return value, nil
}

// FromValue decodes a single field value that itself holds form-urlencoded
// data, such as a hidden input carrying a nested form.
func (e *Extractor[T]) FromValue(value string) (T, error) {
	var zero T

	if int64(len(value)) > e.maxBytes() {
		return zero, &enumform.DecodeError{
			Kind:    enumform.ErrPayloadTooLarge,
			Message: fmt.Sprintf("value exceeds limit of %s", e.o.limit),
		}
	}

	tree, err := enumform.ParseTree([]byte(value))
	if err != nil {
		return zero, err
	}

	return e.decode(tree)
}

func (e *Extractor[T]) read(req *http.Request) ([]byte, error) {
	limit := e.maxBytes()

	// Known oversized bodies are rejected without reading them.
	if req.ContentLength > limit {
		return nil, &enumform.DecodeError{
			Kind:    enumform.ErrPayloadTooLarge,
			Message: fmt.Sprintf("content length %d exceeds limit of %s", req.ContentLength, e.o.limit),
		}
	}

	if req.Body == nil {
		return []byte{}, nil
	}
	defer req.Body.Close()

	body, err := enumform.ReadLimited(req.Body, limit)
	if ctxErr := req.Context().Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var decodeErr *enumform.DecodeError
	if err != nil && !errors.As(err, &decodeErr) {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	return body, err
}

// maxBytes is the limit as a byte count; limits beyond the range of int64
// saturate.
func (e *Extractor[T]) maxBytes() int64 {
	if e.o.limit > bytesize.ByteSize(math.MaxInt64) {
		return math.MaxInt64
	}

	return int64(e.o.limit)
}

func (e *Extractor[T]) decode(tree enumform.Tree) (T, error) {
	value, err := e.dec.Deserialize(tree)
	if err != nil {
		var zero T

		return zero, err
	}

	if e.o.validate {
		if err := validateValue(value); err != nil {
			var zero T

			return zero, err
		}
	}

	return value, nil
}

func (e *Extractor[T]) logger(req *http.Request) *zerolog.Logger {
	if logger := zerolog.Ctx(req.Context()); logger.GetLevel() != zerolog.Disabled {
		return logger
	}

	return &e.o.logger
}
