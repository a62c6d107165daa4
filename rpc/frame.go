package rpc

import (
	"bytes"
	"encoding/json"

	"go.nostrconnect.dev/core/errs"
)

// Request is the {id, method, params} RPC request frame, per spec 4.5.
type Request struct {
	ID     string
	Method Command
	Params []string
}

// Response is the {id, result, error} RPC response frame, per spec 4.5.
// error is empty iff the request succeeded.
type Response struct {
	ID     string
	Result string
	Error  string
}

type requestWire struct {
	ID     string            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type responseWire struct {
	ID     string `json:"id"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// MarshalJSON always encodes each param as a JSON string, even when its
// content happens to be structurally a JSON object or array.
func (r Request) MarshalJSON() ([]byte, error) {
	params := make([]json.RawMessage, len(r.Params))
	for i, p := range r.Params {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		params[i] = b
	}
	return json.Marshal(requestWire{ID: r.ID, Method: r.Method.String(), Params: params})
}

// UnmarshalJSON accepts params that are either JSON strings or raw
// JSON objects/arrays (the latter re-serialized, whitespace stripped,
// back into a plain string), per spec 4.5.
func (r *Request) UnmarshalJSON(b []byte) error {
	var w requestWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	method, err := ParseCommand(w.Method)
	if err != nil {
		return err
	}
	params := make([]string, len(w.Params))
	for i, raw := range w.Params {
		params[i], err = rawParamToString(raw)
		if err != nil {
			return err
		}
	}
	r.ID, r.Method, r.Params = w.ID, method, params
	return nil
}

func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(responseWire{ID: r.ID, Result: r.Result, Error: r.Error})
}

func (r *Response) UnmarshalJSON(b []byte) error {
	var w responseWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.ID, r.Result, r.Error = w.ID, w.Result, w.Error
	return nil
}

// rawParamToString converts one decoded params[i] element into a string:
// a JSON string literal unwraps verbatim, anything else (object, array,
// number, bool, null) is compacted and kept as its JSON text.
func rawParamToString(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return "", errs.ErrMalformedPayload
	}
	return compact.String(), nil
}

// IsRequest reports whether b decodes as a request frame (has "method").
func IsRequest(b []byte) bool {
	var probe struct {
		Method *string `json:"method"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return false
	}
	return probe.Method != nil
}
