package enumform

import (
	"fmt"
	"io"
	"math"
)

// ReadLimited reads all of r, failing with [ErrPayloadTooLarge] as soon as
// more than limit bytes are available. A limit of zero or less disables the
// check.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 || limit == math.MaxInt64 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("form: failed to read body: %w", err)
		}
		return body, nil
	}

	// Read one byte past the limit to tell a body of exactly limit bytes apart
	// from a longer one.
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("form: failed to read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, &DecodeError{
			Kind:    ErrPayloadTooLarge,
			Message: fmt.Sprintf("body exceeds limit of %d bytes", limit),
		}
	}
	return body, nil
}

// Decoder reads form-urlencoded data from an [io.Reader] and decodes it into a
// Go value.
type Decoder struct {
	r     io.Reader
	limit int64
}

// NewDecoder creates a new [Decoder] that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Limit caps the number of bytes the decoder reads. Longer input fails with
// [ErrPayloadTooLarge].
func (d *Decoder) Limit(n int64) *Decoder {
	d.limit = n
	return d
}

// Decode reads the form-urlencoded data from the underlying [io.Reader] and
// decodes it into v.
func (d *Decoder) Decode(v interface{}) error {
	body, err := ReadLimited(d.r, d.limit)
	if err != nil {
		return err
	}

	return Unmarshal(body, v)
}

// Encoder writes form-urlencoded data to an [io.Writer].
type Encoder struct {
	w io.Writer
}

// NewEncoder creates a new [Encoder] that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode encodes v as form-urlencoded data and writes it to the underlying
// [io.Writer].
func (e *Encoder) Encode(v interface{}) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}

	_, err = e.w.Write(data)
	return err
}
