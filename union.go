package enumform

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// TaggedUnion is implemented by [Union] for every interface type. It exists so
// that unions of different types can be registered with [WithUnion].
type TaggedUnion interface {
	unionType() reflect.Type
	nested() []TaggedUnion
	decodeVariant(d *decodeState, m map[string]any, path string) (reflect.Value, error)
	encodeVariant(v reflect.Value) (tag, name string, err error)
}

// Union describes an interface type T whose concrete type is selected by a
// discriminant field. The discriminant sits next to the variant's own fields,
// so with a tag of "type" the body
//
//	type=variant_one&content_one=hello
//
// decodes to the variant registered as "variant_one". Variants must be structs
// or pointers to structs.
type Union[T any] struct {
	tag      string
	typ      reflect.Type
	variants map[string]func() T
	names    map[reflect.Type]string
	opts     options
}

// NewUnion returns a [Union] for the interface type T using tag as the name of
// the discriminant field. It panics if T is not an interface type.
func NewUnion[T any](tag string, opts ...Option) *Union[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Interface {
		panic("enumform: union type " + typ.String() + " is not an interface")
	}

	u := &Union[T]{
		tag:      tag,
		typ:      typ,
		variants: make(map[string]func() T),
		names:    make(map[reflect.Type]string),
	}
	for _, opt := range opts {
		opt(&u.opts)
	}

	// Variants may refer back to the union itself.
	u.opts.addUnion(u)
	return u
}

// Variant registers the variant selected by the discriminant value name.
// newVariant returns a fresh value to decode into, usually a pointer to a
// zero struct.
func (u *Union[T]) Variant(name string, newVariant func() T) *Union[T] {
	sample := reflect.ValueOf(newVariant())
	if !sample.IsValid() {
		panic("enumform: variant " + name + " of " + u.typ.String() + " is nil")
	}

	u.variants[name] = newVariant
	u.names[sample.Type()] = name
	if sample.Kind() == reflect.Pointer {
		u.names[sample.Type().Elem()] = name
	} else {
		u.names[reflect.PointerTo(sample.Type())] = name
	}
	return u
}

// Tag returns the name of the discriminant field.
func (u *Union[T]) Tag() string {
	return u.tag
}

// Deserialize decodes a parsed tree into the variant named by its
// discriminant.
func (u *Union[T]) Deserialize(tree Tree) (T, error) {
	v, err := u.decodeVariant(u.opts.decoder(), map[string]any(tree), "")
	if err != nil {
		var zero T
		return zero, err
	}
	return v.Interface().(T), nil
}

// Unmarshal parses data and decodes it into the variant named by its
// discriminant.
func (u *Union[T]) Unmarshal(data []byte) (T, error) {
	tree, err := ParseTree(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return u.Deserialize(tree)
}

// Marshal returns the form encoding of v with its discriminant.
func (u *Union[T]) Marshal(v T) ([]byte, error) {
	return u.opts.encoder().marshal(reflect.ValueOf(&v).Elem())
}

func (u *Union[T]) unionType() reflect.Type {
	return u.typ
}

func (u *Union[T]) nested() []TaggedUnion {
	nested := make([]TaggedUnion, 0, len(u.opts.unions))
	for _, n := range u.opts.unions {
		nested = append(nested, n)
	}
	return nested
}

func (u *Union[T]) decodeVariant(d *decodeState, m map[string]any, path string) (reflect.Value, error) {
	tagPath := fieldPath(path, u.tag)

	raw, ok := m[u.tag]
	if !ok {
		return reflect.Value{}, mismatch(tagPath, "missing discriminant", nil)
	}
	name, err := scalar(raw, tagPath)
	if err != nil {
		return reflect.Value{}, err
	}

	newVariant, ok := u.variants[name]
	if !ok {
		return reflect.Value{}, mismatch(tagPath,
			fmt.Sprintf("unknown variant %q, expected one of %s", name, u.expected()), nil)
	}

	variant := reflect.ValueOf(newVariant())
	var target reflect.Value
	if variant.Kind() == reflect.Pointer {
		if variant.IsNil() {
			variant = reflect.New(variant.Type().Elem())
		}
		target = variant.Elem()
	} else {
		// Copy into an addressable value so the fields can be set.
		tmp := reflect.New(variant.Type()).Elem()
		tmp.Set(variant)
		variant, target = tmp, tmp
	}
	if target.Kind() != reflect.Struct {
		return reflect.Value{}, &UnsupportedTypeError{target.Type()}
	}

	if err := d.object(m, target, path, u.tag); err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(u.typ).Elem()
	out.Set(variant)
	return out, nil
}

func (u *Union[T]) encodeVariant(v reflect.Value) (string, string, error) {
	name, ok := u.names[v.Type()]
	if !ok {
		return "", "", fmt.Errorf("form: %v is not a registered variant of %v", v.Type(), u.typ)
	}
	return u.tag, name, nil
}

func (u *Union[T]) expected() string {
	names := make([]string, 0, len(u.variants))
	for name := range u.variants {
		names = append(names, strconv.Quote(name))
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
