// Package timestamp is a thin wrapper around the UNIX-seconds timestamp
// every Nostr event carries as created_at.
package timestamp

import (
	"strconv"
	"time"
)

// T is a UNIX timestamp at one-second precision.
type T int64

// New returns a zero-valued timestamp.
func New() *T {
	t := T(0)
	return &t
}

// Now returns the current time truncated to the second.
func Now() *T {
	t := T(time.Now().Unix())
	return &t
}

// FromUnix wraps a raw UNIX-seconds value.
func FromUnix(u int64) *T {
	t := T(u)
	return &t
}

// FromTime truncates a time.Time to the second.
func FromTime(tm time.Time) *T {
	t := T(tm.Unix())
	return &t
}

// I64 returns the timestamp as int64, the JSON-native form used on the wire.
func (t *T) I64() int64 {
	if t == nil {
		return 0
	}
	return int64(*t)
}

// Time converts to a time.Time.
func (t *T) Time() time.Time { return time.Unix(t.I64(), 0) }

func (t *T) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(t.I64(), 10)), nil
}

func (t *T) UnmarshalJSON(b []byte) error {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*t = T(n)
	return nil
}
