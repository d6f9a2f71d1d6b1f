package enumform

import (
	"bytes"
	"fmt"
	"net/url"
)

// Tree is the intermediate representation of decoded form data. Every value in
// a Tree is a string, a []any or a map[string]any. A key that appears more
// than once without brackets collects its values into a []any in body order.
type Tree map[string]any

// ParseTree decodes percent-encoded key=value pairs into a [Tree]. Bracketed
// keys such as "address[city]" and "tags[]" build nested maps and slices.
// Invalid percent-encoding, unbalanced brackets and keys used both as a leaf
// and as a container are reported as [ErrMalformedEncoding].
func ParseTree(data []byte) (Tree, error) {
	tree := Tree{}
	for _, pair := range bytes.Split(data, []byte{'&'}) {
		if len(pair) == 0 {
			continue
		}

		rawKey, rawVal, _ := bytes.Cut(pair, []byte{'='})
		key, err := url.QueryUnescape(string(rawKey))
		if err != nil {
			return nil, malformed(fmt.Sprintf("invalid key %q", rawKey), err)
		}
		val, err := url.QueryUnescape(string(rawVal))
		if err != nil {
			return nil, malformed(fmt.Sprintf("invalid value for key %q", key), err)
		}

		// Pairs without a name, such as "=x", carry nothing addressable.
		if key == "" {
			continue
		}

		path, err := parseKey(key)
		if err != nil {
			return nil, err
		}
		if _, err := insert(map[string]any(tree), path, val); err != nil {
			return nil, malformed(fmt.Sprintf("key %q", key), err)
		}
	}
	return tree, nil
}

// insert places val at path below node and returns the updated node. Maps are
// updated in place; slices and leaves are returned as new values.
func insert(node any, path []pathSegment, val string) (any, error) {
	// Leaf node.
	if len(path) == 0 {
		switch n := node.(type) {
		case nil:
			return val, nil
		case string:
			return []any{n, val}, nil
		case []any:
			return append(n, val), nil
		default:
			return nil, fmt.Errorf("value conflicts with nested fields")
		}
	}

	seg := path[0]

	// If the segment is an index, every occurrence appends a new element.
	if seg.Index {
		var list []any
		switch n := node.(type) {
		case nil:
		case string:
			list = []any{n}
		case []any:
			list = n
		default:
			return nil, fmt.Errorf("list conflicts with nested fields")
		}

		elem, err := insert(nil, path[1:], val)
		if err != nil {
			return nil, err
		}
		return append(list, elem), nil
	}

	// Otherwise it's a map element. Unlike slices, we need to explicitly
	// instantiate the map if it doesn't exist.
	var m map[string]any
	switch n := node.(type) {
	case nil:
		m = make(map[string]any)
	case map[string]any:
		m = n
	default:
		return nil, fmt.Errorf("nested field %q conflicts with value", seg.Key)
	}

	child, err := insert(m[seg.Key], path[1:], val)
	if err != nil {
		return nil, err
	}
	m[seg.Key] = child
	return m, nil
}
