package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key is the structural identity of one unit of cached remote data:
// a namespace, an operation and its parameters, e.g. {"comments", "post", 5}.
//
// Two keys are equal when every component has the same canonical JSON
// encoding. Struct fields encode in declaration order and map keys are sorted,
// so equality never depends on pointer identity or map iteration order.
type Key []any

func encodePart(part any) string {
	b, err := json.Marshal(part)
	if err != nil {
		return fmt.Sprintf("%#v", part)
	}

	return string(b)
}

func (k Key) encodedParts() []string {
	parts := make([]string, len(k))
	for i, part := range k {
		parts[i] = encodePart(part)
	}

	return parts
}

// String returns the canonical encoding of the key.
func (k Key) String() string {
	return "[" + strings.Join(k.encodedParts(), ",") + "]"
}

// Equal reports whether k and other are structurally equal.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// HasPrefix reports whether the first len(prefix) components of k equal prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}

	for i := range prefix {
		if encodePart(k[i]) != encodePart(prefix[i]) {
			return false
		}
	}

	return true
}

// Namespace returns the first component when it is a string.
func (k Key) Namespace() string {
	if len(k) == 0 {
		return ""
	}

	ns, _ := k[0].(string)

	return ns
}

// Matcher selects cache entries by key.
type Matcher func(Key) bool

// Prefix matches prefix itself and every key nested under it.
func Prefix(prefix Key) Matcher {
	return func(k Key) bool {
		return k.HasPrefix(prefix)
	}
}

// Exact matches only key.
func Exact(key Key) Matcher {
	return func(k Key) bool {
		return k.Equal(key)
	}
}

// AnyOf matches keys matched by at least one of ms.
func AnyOf(ms ...Matcher) Matcher {
	return func(k Key) bool {
		for _, m := range ms {
			if m(k) {
				return true
			}
		}

		return false
	}
}
