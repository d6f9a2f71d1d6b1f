package enumform

import (
	"net/url"
	"reflect"
	"strconv"
)

// Marshaler is the interface implemented by types that can marshal themselves
// into a form description.
type Marshaler interface {
	MarshalForm() (string, error)
}

// Serializer is implemented by anything that can encode a value of type T as
// form data. [Codec] and [Union] are the implementations provided by this
// package.
type Serializer[T any] interface {
	Marshal(T) ([]byte, error)
}

// EncodeToString is a convenience function that returns the form encoding of v
// as a string.
func EncodeToString(v interface{}) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Marshal returns the form encoding of v. Keys are sorted, so equal values
// always produce equal output.
func Marshal(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte{}, nil
	}

	// Dereference pointer if needed.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return []byte{}, nil
		}
		rv = rv.Elem()
	}

	var opts options
	if err := opts.checkTopLevel(rv.Type()); err != nil {
		return nil, err
	}
	return opts.encoder().marshal(rv)
}

type encodeState struct {
	unions map[reflect.Type]TaggedUnion
}

func (e *encodeState) marshal(v reflect.Value) ([]byte, error) {
	values := url.Values{}
	if err := e.value(values, nil, v); err != nil {
		return nil, err
	}
	return []byte(values.Encode()), nil
}

func (e *encodeState) value(out url.Values, path []string, v reflect.Value) error {
	// Handle nil pointers early to avoid dereferencing them.
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	// Handle custom Marshaler first. A Marshaler yields a single value, which
	// needs a key to sit under.
	if m, ok := asMarshaler(v); ok {
		if len(path) == 0 {
			return &UnsupportedTypeError{v.Type()}
		}
		return marshaler(out, path, m)
	}

	// Dispatch based on the kind of the value.
	switch v.Kind() {
	case reflect.Struct:
		return e.object(out, path, v)
	case reflect.Map:
		return e.mapValue(out, path, v)
	case reflect.Slice, reflect.Array:
		return e.list(out, path, v)
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		if u, ok := e.unions[v.Type()]; ok {
			tag, name, err := u.encodeVariant(v.Elem())
			if err != nil {
				return err
			}
			out.Add(renderPath(append(path, tag)), name)
		}
		return e.value(out, path, v.Elem())
	default:
		return marshalScalar(out, path, v)
	}
}

func marshaler(out url.Values, path []string, m Marshaler) error {
	s, err := m.MarshalForm()
	if err != nil {
		return err
	}
	out.Add(renderPath(path), s)
	return nil
}

func (e *encodeState) object(out url.Values, path []string, v reflect.Value) error {
	tags := tags(v)
	for i := 0; i < v.NumField(); i++ {
		tag := tags[i]
		if tag.Ignore {
			continue
		}
		fv := v.Field(i)
		if tag.Omit && isEmptyValue(fv) {
			continue
		}
		if tag.Name == "" {
			continue
		}
		if err := e.value(out, append(path, tag.Name), fv); err != nil {
			return err
		}
	}
	return nil
}

func (e *encodeState) mapValue(out url.Values, path []string, v reflect.Value) error {
	if v.Type().Key().Kind() != reflect.String {
		return &UnsupportedTypeError{v.Type()}
	}
	for _, k := range v.MapKeys() {
		mv := v.MapIndex(k)
		if !mv.IsValid() || (mv.Kind() == reflect.Interface && mv.IsNil()) {
			continue
		}
		if err := e.value(out, append(path, k.String()), mv); err != nil {
			return err
		}
	}
	return nil
}

func (e *encodeState) list(out url.Values, path []string, v reflect.Value) error {
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
		out.Add(renderPath(path), string(v.Bytes()))
		return nil
	}
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if !elem.IsValid() || (elem.Kind() == reflect.Interface && elem.IsNil()) {
			continue
		}
		// Elements with fields of their own are indexed so that each field
		// lands in the same element when decoded.
		key := ""
		if composite(elem) {
			key = strconv.Itoa(i)
		}
		if err := e.value(out, append(path, key), elem); err != nil {
			return err
		}
	}
	return nil
}

func composite(v reflect.Value) bool {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	if _, ok := asMarshaler(v); ok {
		return false
	}
	return v.Kind() == reflect.Struct || v.Kind() == reflect.Map
}

func marshalScalar(out url.Values, path []string, v reflect.Value) error {
	s, err := getScalar(v)
	if err != nil {
		return err
	}
	out.Add(renderPath(path), s)
	return nil
}

func asMarshaler(v reflect.Value) (Marshaler, bool) {
	if v.CanAddr() {
		if m, ok := v.Addr().Interface().(Marshaler); ok {
			return m, true
		}
	}
	if v.Kind() == reflect.Interface || !v.CanInterface() {
		return nil, false
	}
	if m, ok := v.Interface().(Marshaler); ok {
		return m, true
	}
	return nil, false
}

func getScalar(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, v.Type().Bits()), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	default:
		return "", &UnsupportedTypeError{v.Type()}
	}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
