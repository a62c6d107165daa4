// Package tag implements a single Nostr tag: an ordered list of strings
// whose first element is conventionally a one-letter key (e.g. "p" for a
// referenced pubkey, "e" for a referenced event id).
package tag

import "encoding/json"

// Field position meanings, so callers don't index by raw int.
const (
	Key = iota
	Value
	Relay
)

// T is an ordered list of strings. Not a set: repeats are allowed.
type T struct {
	field []string
}

// New builds a tag from its fields in order.
func New(fields ...string) *T { return &T{field: append([]string(nil), fields...)} }

// NewWithCap preallocates a tag with no fields yet.
func NewWithCap(c int) *T { return &T{field: make([]string, 0, c)} }

// Len returns the number of fields.
func (t *T) Len() int {
	if t == nil {
		return 0
	}
	return len(t.field)
}

// S returns field i, or "" if out of range.
func (t *T) S(i int) string {
	if t == nil || i < 0 || i >= t.Len() {
		return ""
	}
	return t.field[i]
}

// Append adds fields to the end of the tag, returning the (possibly new)
// tag so callers can chain on a nil receiver.
func (t *T) Append(fields ...string) *T {
	if t == nil {
		t = &T{}
	}
	t.field = append(t.field, fields...)
	return t
}

// Clone makes an independent copy.
func (t *T) Clone() *T {
	if t == nil {
		return nil
	}
	return &T{field: append([]string(nil), t.field...)}
}

// ToStringSlice renders the tag as a plain []string.
func (t *T) ToStringSlice() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.field...)
}

// Key returns the tag's first field, conventionally its type letter.
func (t *T) Key() string { return t.S(Key) }

// Value returns the tag's second field.
func (t *T) Value() string { return t.S(Value) }

// Relay returns the tag's third field, used by e/p tags to carry a relay
// hint.
func (t *T) Relay() string {
	if t.Key() != "e" && t.Key() != "p" {
		return ""
	}
	return t.S(Relay)
}

// Contains reports whether s appears anywhere in the tag's fields.
func (t *T) Contains(s string) bool {
	if t == nil {
		return false
	}
	for _, f := range t.field {
		if f == s {
			return true
		}
	}
	return false
}

// Equal reports whether two tags have identical fields in the same order.
func (t *T) Equal(o *T) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.field) != len(o.field) {
		return false
	}
	for i := range t.field {
		if t.field[i] != o.field[i] {
			return false
		}
	}
	return true
}

// MarshalJSON renders the tag as a JSON array of strings.
func (t *T) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.field)
}

// UnmarshalJSON parses a JSON array of strings into the tag.
func (t *T) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &t.field)
}
