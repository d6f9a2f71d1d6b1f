package enumform

import (
	"errors"
	"reflect"
)

// Error kinds reported by the decoder. Every [DecodeError] matches exactly one
// of them with [errors.Is].
var (
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrMalformedEncoding = errors.New("malformed encoding")
	ErrSchemaMismatch    = errors.New("schema mismatch")
)

// DecodeError describes form data that could not be decoded. Path is the
// dotted location of the offending value within the target type, for example
// "address.city" or "items[2]", and is empty for errors concerning the body as
// a whole.
type DecodeError struct {
	Kind    error
	Path    string
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	msg := "form: " + e.Kind.Error()
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func (e *DecodeError) Is(target error) bool {
	return target == e.Kind
}

// InvalidUnmarshalError describes an invalid argument passed to [Unmarshal].
// (The argument to [Unmarshal] must be a non-nil pointer.)
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "form: Unmarshal(nil)"
	}

	if e.Type.Kind() != reflect.Pointer {
		return "form: Unmarshal(non-pointer " + e.Type.String() + ")"
	}
	return "form: Unmarshal(nil " + e.Type.String() + ")"
}

// UnsupportedTypeError is returned when a Go type has no form representation,
// such as channels, functions, complex numbers, or maps without string keys.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "form: unsupported type: " + e.Type.String()
}

func malformed(msg string, cause error) error {
	return &DecodeError{Kind: ErrMalformedEncoding, Message: msg, Cause: cause}
}

func mismatch(path, msg string, cause error) error {
	return &DecodeError{Kind: ErrSchemaMismatch, Path: path, Message: msg, Cause: cause}
}
