// Package tags is an ordered list of tag.T, the Tags field of an event.
package tags

import (
	"encoding/json"

	"go.nostrconnect.dev/core/tag"
)

// T is a list of tags. Not a set: repeats and any ordering are allowed.
type T struct {
	t []*tag.T
}

// New builds a tags list from already-constructed tag.T values.
func New(fields ...*tag.T) *T {
	t := &T{}
	t.t = append(t.t, fields...)
	return t
}

// NewWithCap preallocates an empty tags list.
func NewWithCap(c int) *T { return &T{t: make([]*tag.T, 0, c)} }

// F returns the underlying []*tag.T.
func (t *T) F() []*tag.T {
	if t == nil {
		return nil
	}
	return t.t
}

// Len returns the number of tags.
func (t *T) Len() int {
	if t == nil {
		return 0
	}
	return len(t.t)
}

// Append adds whole tags lists onto the end of this one.
func (t *T) Append(others ...*T) *T {
	if t == nil {
		t = &T{}
	}
	for _, o := range others {
		t.t = append(t.t, o.t...)
	}
	return t
}

// AppendTags adds individual tags onto the end.
func (t *T) AppendTags(tgs ...*tag.T) *T {
	if t == nil {
		t = &T{}
	}
	t.t = append(t.t, tgs...)
	return t
}

// Clone makes an independent deep copy.
func (t *T) Clone() *T {
	if t == nil {
		return nil
	}
	c := &T{t: make([]*tag.T, len(t.t))}
	for i, f := range t.t {
		c.t[i] = f.Clone()
	}
	return c
}

// Equal reports whether two tag lists have the same tags in the same
// order.
func (t *T) Equal(o *T) bool {
	if t.Len() != o.Len() {
		return false
	}
	for i := range t.t {
		if !t.t[i].Equal(o.t[i]) {
			return false
		}
	}
	return true
}

// ToStringSlice renders the tags list as [][]string, the shape used by
// the event codec's JSON struct.
func (t *T) ToStringSlice() [][]string {
	if t == nil {
		return nil
	}
	out := make([][]string, 0, len(t.t))
	for _, f := range t.t {
		out = append(out, f.ToStringSlice())
	}
	return out
}

// GetFirst returns the first tag whose key field equals key, or nil.
func (t *T) GetFirst(key string) *tag.T {
	for _, v := range t.t {
		if v.Key() == key {
			return v
		}
	}
	return nil
}

// GetAll returns every tag whose key field equals key.
func (t *T) GetAll(key string) *T {
	result := &T{t: make([]*tag.T, 0, len(t.t))}
	for _, v := range t.t {
		if v.Key() == key {
			result.t = append(result.t, v)
		}
	}
	return result
}

// MarshalJSON renders the list as a JSON array of string arrays.
func (t *T) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.t)
}

// UnmarshalJSON parses a JSON array of string arrays into the list.
func (t *T) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &t.t)
}
