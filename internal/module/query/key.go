package query

import (
	"encoding/json"
	"strings"
)

// Key identifies a query. Keys are compared element by element, so
// ["quote", "a", "b", "1"] and ["quote", "a", "b", "10"] never collide.
type Key []string

func NewKey(parts ...string) Key {
	return Key(parts)
}

// String is the canonical encoding, also used as the redis key suffix.
func (k Key) String() string {
	b, _ := json.Marshal([]string(k))
	return string(b)
}

// Name is the first element, used as a metric label.
func (k Key) Name() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// storePrefix matches the encoding of every strictly longer key starting
// with k, e.g. `["quote",` for ["quote"].
func (k Key) storePrefix() string {
	return strings.TrimSuffix(k.String(), "]") + ","
}

func ParseKey(s string) (Key, error) {
	var parts []string
	if err := json.Unmarshal([]byte(s), &parts); err != nil {
		return nil, err
	}
	return Key(parts), nil
}
