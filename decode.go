package enumform

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strconv"
)

// Unmarshaler is the interface implemented by types that can unmarshal a form
// description of themselves. The input can be assumed to be a valid encoding of
// a form value. [Unmarshaler.UnmarshalForm] must copy the form data if it
// wishes to retain the data after returning.
type Unmarshaler interface {
	UnmarshalForm(string) error
}

// Deserializer is implemented by anything that can turn a parsed [Tree] into a
// value of type T. [Codec] and [Union] are the implementations provided by
// this package.
type Deserializer[T any] interface {
	Deserialize(Tree) (T, error)
}

// DecodeString is a convenience function that parses the form data in the
// string and stores the result in the value pointed to by v. If v is nil or not
// a pointer, DecodeString returns an [InvalidUnmarshalError].
func DecodeString(data string, v interface{}) error {
	return Unmarshal([]byte(data), v)
}

// Unmarshal parses the form data and stores the result in the value pointed to
// by v. If v is nil or not a pointer, Unmarshal returns an
// [InvalidUnmarshalError]. Interfaces are only decoded when they are empty;
// use [For] with [WithUnion] to decode tagged unions.
func Unmarshal(data []byte, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidUnmarshalError{reflect.TypeOf(v)}
	}

	rv = rv.Elem()
	var opts options
	if err := opts.checkTopLevel(rv.Type()); err != nil {
		return err
	}

	tree, err := ParseTree(data)
	if err != nil {
		return err
	}
	return opts.decoder().value(map[string]any(tree), rv, "")
}

type decodeState struct {
	unions       map[reflect.Type]TaggedUnion
	allowUnknown bool
}

// value decodes node into v. path locates v within the top-level value and is
// only used for error reporting.
func (d *decodeState) value(node any, v reflect.Value, path string) error {
	v = deref(v)

	if u, ok := asUnmarshaler(v); ok {
		s, err := scalar(node, path)
		if err != nil {
			return err
		}
		if err := u.UnmarshalForm(s); err != nil {
			return mismatch(path, "", err)
		}
		return nil
	}

	if u, ok := d.unions[v.Type()]; ok {
		m, ok := node.(map[string]any)
		if !ok {
			return mismatch(path, "expected fields of "+v.Type().String(), nil)
		}
		variant, err := u.decodeVariant(d, m, path)
		if err != nil {
			return err
		}
		v.Set(variant)
		return nil
	}

	// Dispatch based on the kind of the value.
	switch v.Kind() {
	case reflect.Struct:
		m, ok := node.(map[string]any)
		if !ok {
			return mismatch(path, "expected fields of "+v.Type().String(), nil)
		}
		return d.object(m, v, path, "")
	case reflect.Map:
		return d.mapValue(node, v, path)
	case reflect.Slice, reflect.Array:
		return d.list(node, v, path)
	case reflect.Interface:
		if v.NumMethod() != 0 {
			return &UnsupportedTypeError{v.Type()}
		}
		// When no type information is available the tree node is kept as is:
		// strings, []any and map[string]any.
		v.Set(reflect.ValueOf(node))
		return nil
	default:
		s, err := scalar(node, path)
		if err != nil {
			return err
		}
		return setScalar(v, s, path)
	}
}

// object decodes the fields of m into the struct v. The key named by skip is
// the discriminant of an enclosing union and is not treated as unknown.
func (d *decodeState) object(m map[string]any, v reflect.Value, path, skip string) error {
	tags := tags(v)
	known := make(map[string]struct{}, len(tags))
	for i, tag := range tags {
		if tag.Ignore {
			continue
		}
		known[tag.Name] = struct{}{}

		node, ok := m[tag.Name]
		if !ok {
			if tag.Required {
				return mismatch(fieldPath(path, tag.Name), "missing field", nil)
			}
			continue
		}
		if err := d.value(node, v.Field(i), fieldPath(path, tag.Name)); err != nil {
			return err
		}
	}

	if d.allowUnknown {
		return nil
	}
	for _, key := range sortedKeys(m) {
		if _, ok := known[key]; ok || key == skip {
			continue
		}
		return mismatch(fieldPath(path, key), fmt.Sprintf("unknown field in %v", v.Type()), nil)
	}
	return nil
}

func (d *decodeState) mapValue(node any, v reflect.Value, path string) error {
	t := v.Type()
	if t.Key().Kind() != reflect.String {
		return &UnsupportedTypeError{t}
	}

	m, ok := node.(map[string]any)
	if !ok {
		return mismatch(path, "expected nested fields", nil)
	}

	if v.IsNil() {
		v.Set(reflect.MakeMapWithSize(t, len(m)))
	}
	for _, key := range sortedKeys(m) {
		elem := reflect.New(t.Elem()).Elem()
		if err := d.value(m[key], elem, fieldPath(path, key)); err != nil {
			return err
		}
		v.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
	}
	return nil
}

// list decodes a slice or array. A single value decodes to one element, and a
// map whose keys are all indices ("items[0]", "items[1]") decodes in index
// order.
func (d *decodeState) list(node any, v reflect.Value, path string) error {
	t := v.Type()
	if s, ok := node.(string); ok && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		v.SetBytes([]byte(s))
		return nil
	}

	var items []any
	switch n := node.(type) {
	case string:
		items = []any{n}
	case []any:
		items = n
	case map[string]any:
		var err error
		if items, err = indexed(n, path); err != nil {
			return err
		}
	}

	if t.Kind() == reflect.Array {
		if len(items) > v.Len() {
			return mismatch(path, fmt.Sprintf("too many values for %v", t), nil)
		}
		for i, item := range items {
			if err := d.value(item, v.Index(i), indexPath(path, i)); err != nil {
				return err
			}
		}
		return nil
	}

	slice := reflect.MakeSlice(t, 0, len(items))
	for i, item := range items {
		elem := reflect.New(t.Elem()).Elem()
		if err := d.value(item, elem, indexPath(path, i)); err != nil {
			return err
		}
		slice = reflect.Append(slice, elem)
	}
	v.Set(slice)
	return nil
}

func indexed(m map[string]any, path string) ([]any, error) {
	indices := make([]int, 0, len(m))
	byIndex := make(map[int]any, len(m))
	for key, node := range m {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 {
			return nil, mismatch(fieldPath(path, key), "expected a list index", nil)
		}
		indices = append(indices, i)
		byIndex[i] = node
	}
	sort.Ints(indices)

	items := make([]any, 0, len(indices))
	for _, i := range indices {
		items = append(items, byIndex[i])
	}
	return items, nil
}

// scalar returns the leaf string held by node. Repeated keys hold a list of
// values, of which the last one wins.
func scalar(node any, path string) (string, error) {
	switch n := node.(type) {
	case string:
		return n, nil
	case []any:
		if len(n) > 0 {
			if s, ok := n[len(n)-1].(string); ok {
				return s, nil
			}
		}
	}
	return "", mismatch(path, "expected a single value", nil)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// dereference a pointer value, allocating a new value if needed.
func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	return v
}

func asUnmarshaler(v reflect.Value) (Unmarshaler, bool) {
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(Unmarshaler); ok {
			return u, true
		}
	}
	if v.Kind() == reflect.Interface {
		return nil, false
	}
	if u, ok := v.Interface().(Unmarshaler); ok {
		return u, true
	}
	return nil, false
}

func setScalar(v reflect.Value, val, path string) error {
	var err error
	switch v.Kind() {
	case reflect.String:
		v.SetString(val)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		err = setInt(v, val)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		err = setUint(v, val)
	case reflect.Float32, reflect.Float64:
		err = setFloat(v, val)
	case reflect.Bool:
		err = setBool(v, val)
	default:
		return &UnsupportedTypeError{v.Type()}
	}
	if err != nil {
		return mismatch(path, "", err)
	}
	return nil
}

func setInt(v reflect.Value, s string) error {
	if s == "" {
		v.SetInt(0)
		return nil
	}
	i, err := strconv.ParseInt(s, 10, v.Type().Bits())
	if err != nil {
		return err
	}
	v.SetInt(i)
	return nil
}

func setUint(v reflect.Value, s string) error {
	if s == "" {
		v.SetUint(0)
		return nil
	}
	i, err := strconv.ParseUint(s, 10, v.Type().Bits())
	if err != nil {
		return err
	}
	v.SetUint(i)
	return nil
}

func setFloat(v reflect.Value, s string) error {
	if s == "" {
		v.SetFloat(0)
		return nil
	}
	f, err := strconv.ParseFloat(s, v.Type().Bits())
	if err != nil {
		return err
	}
	v.SetFloat(f)
	return nil
}

func setBool(v reflect.Value, s string) error {
	if s == "" {
		v.SetBool(false)
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	v.SetBool(b)
	return nil
}
