package rpc

import (
	"encoding/json"
	"testing"
)

func TestCommandRoundTrip(t *testing.T) {
	for c := Connect; c <= GetRelays; c++ {
		s := c.String()
		if s == "" {
			t.Fatalf("command %d has empty wire form", c)
		}
		got, err := ParseCommand(s)
		if err != nil {
			t.Fatalf("ParseCommand(%q): %v", s, err)
		}
		if got != c {
			t.Fatalf("round trip mismatch: %d -> %q -> %d", c, s, got)
		}
	}
}

func TestParseCommandUnknown(t *testing.T) {
	if _, err := ParseCommand("disconnec"); err == nil {
		t.Fatal("expected error for truncated/unknown method name")
	}
}

func TestRequestRoundTrip(t *testing.T) {
	req := Request{ID: "abc", Method: Ping, Params: nil}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	var got Request
	if err = json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "abc" || got.Method != Ping || len(got.Params) != 0 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestRequestParamsObjectCompacted(t *testing.T) {
	raw := []byte(`{"id":"1","method":"sign_event","params":[{"kind":1, "content":"hi"}]}`)
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		t.Fatal(err)
	}
	if len(req.Params) != 1 {
		t.Fatalf("expected one param, got %d", len(req.Params))
	}
	var probe map[string]any
	if err := json.Unmarshal([]byte(req.Params[0]), &probe); err != nil {
		t.Fatalf("param did not round trip as compact JSON: %v", err)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := Response{ID: "abc", Result: "pong"}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	var got Response
	if err = json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got != resp {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, resp)
	}
}

func TestIsRequest(t *testing.T) {
	if !IsRequest([]byte(`{"id":"abc","method":"ping","params":[]}`)) {
		t.Fatal("expected request frame to be detected")
	}
	if IsRequest([]byte(`{"id":"abc","result":"pong","error":""}`)) {
		t.Fatal("expected response frame to not be detected as a request")
	}
}
