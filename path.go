package enumform

import (
	"fmt"
	"strconv"
	"strings"
)

type pathSegment struct {
	Key   string
	Index bool // true for []
}

func parseKey(key string) ([]pathSegment, error) {
	var path []pathSegment
	for len(key) > 0 {
		i := strings.IndexByte(key, '[')
		if i == -1 {
			path = append(path, pathSegment{Key: key})
			break
		}

		if i > 0 {
			path = append(path, pathSegment{Key: key[:i]})
		}

		key = key[i+1:]
		j := strings.IndexByte(key, ']')
		if j == -1 {
			return nil, malformed(fmt.Sprintf("unterminated bracket in key %q", key), nil)
		}

		part := key[:j]
		if part == "" {
			path = append(path, pathSegment{Index: true})
		} else {
			path = append(path, pathSegment{Key: part})
		}
		key = key[j+1:]
	}
	return path, nil
}

// fieldPath renders locations within the target type for error messages.
func fieldPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

func renderPath(path []string) string {
	var b strings.Builder
	b.WriteString(path[0])
	for _, p := range path[1:] {
		if p == "" {
			b.WriteString("[]")
		} else {
			b.WriteString("[")
			b.WriteString(p)
			b.WriteString("]")
		}
	}
	return b.String()
}
