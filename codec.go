package enumform

import (
	"errors"
	"reflect"
)

// Option configures a [Codec] or a [Union].
type Option func(*options)

type options struct {
	unions       map[reflect.Type]TaggedUnion
	allowUnknown bool
}

// WithUnion registers a tagged union so that struct fields, map values and
// slice elements of its interface type are decoded by discriminant. Unions
// registered on u are registered as well.
func WithUnion(u TaggedUnion) Option {
	return func(o *options) {
		o.addUnion(u)
	}
}

// AllowUnknownFields makes the decoder skip form keys that do not correspond to
// any field of the target struct. By default such keys are reported as
// [ErrSchemaMismatch].
func AllowUnknownFields() Option {
	return func(o *options) {
		o.allowUnknown = true
	}
}

func (o *options) addUnion(u TaggedUnion) {
	if o.unions == nil {
		o.unions = make(map[reflect.Type]TaggedUnion)
	}
	if _, ok := o.unions[u.unionType()]; ok {
		return
	}
	o.unions[u.unionType()] = u
	for _, nested := range u.nested() {
		o.addUnion(nested)
	}
}

func (o *options) decoder() *decodeState {
	return &decodeState{unions: o.unions, allowUnknown: o.allowUnknown}
}

func (o *options) encoder() *encodeState {
	return &encodeState{unions: o.unions}
}

// checkTopLevel reports whether t can be the root of a form document: a
// struct, a string-keyed map or a registered union, possibly behind pointers.
func (o *options) checkTopLevel(t reflect.Type) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if _, ok := o.unions[t]; ok {
		return nil
	}
	switch {
	case t.Kind() == reflect.Map && t.Key().Kind() != reflect.String:
		return errors.New("form: map keys must be strings")
	case t.Kind() != reflect.Struct && t.Kind() != reflect.Map:
		return errors.New("form: top-level value must be struct or map")
	}
	return nil
}

// Codec decodes and encodes values of type T. It is safe for concurrent use
// once constructed.
type Codec[T any] struct {
	opts options
}

// For returns a [Codec] for T, which must be a struct, a string-keyed map, or
// an interface registered with [WithUnion].
func For[T any](opts ...Option) *Codec[T] {
	c := &Codec[T]{}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Deserialize decodes a parsed tree into a new value of T.
func (c *Codec[T]) Deserialize(tree Tree) (T, error) {
	var out T

	rv := reflect.ValueOf(&out).Elem()
	if err := c.opts.checkTopLevel(rv.Type()); err != nil {
		return out, err
	}
	if err := c.opts.decoder().value(map[string]any(tree), rv, ""); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Unmarshal parses data and decodes it into a new value of T.
func (c *Codec[T]) Unmarshal(data []byte) (T, error) {
	tree, err := ParseTree(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Deserialize(tree)
}

// Marshal returns the form encoding of v, including the discriminant of every
// union value it contains.
func (c *Codec[T]) Marshal(v T) ([]byte, error) {
	rv := reflect.ValueOf(&v).Elem()
	if err := c.opts.checkTopLevel(rv.Type()); err != nil {
		return nil, err
	}
	return c.opts.encoder().marshal(rv)
}

// FromBytes decodes data into a new value of T.
func FromBytes[T any](data []byte, opts ...Option) (T, error) {
	return For[T](opts...).Unmarshal(data)
}

// FromString decodes s into a new value of T.
func FromString[T any](s string, opts ...Option) (T, error) {
	return For[T](opts...).Unmarshal([]byte(s))
}
