package session

import (
	"fmt"
	"sync"
	"testing"

	"go.nostrconnect.dev/core/rpc"
)

func TestTableInsertRemoveAndReturn(t *testing.T) {
	tbl := NewTable()
	tbl.Insert("req-1", &PendingRequest{SessionID: "sess-1", Command: rpc.Ping})
	p, err := tbl.RemoveAndReturn("req-1")
	if err != nil {
		t.Fatal(err)
	}
	if p.SessionID != "sess-1" || p.Command != rpc.Ping {
		t.Fatalf("unexpected pending request: %+v", p)
	}
	if tbl.Len() != 0 {
		t.Fatalf("expected table to be empty after remove, got %d", tbl.Len())
	}
}

func TestTableRemoveAndReturnUnknownID(t *testing.T) {
	tbl := NewTable()
	if _, err := tbl.RemoveAndReturn("nope"); err == nil {
		t.Fatal("expected error for an id that was never inserted")
	}
}

func TestTableDoubleRemoveFails(t *testing.T) {
	tbl := NewTable()
	tbl.Insert("req-1", &PendingRequest{SessionID: "sess-1", Command: rpc.Ping})
	if _, err := tbl.RemoveAndReturn("req-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.RemoveAndReturn("req-1"); err == nil {
		t.Fatal("expected second remove of the same id to fail")
	}
}

// TestTableConcurrentCorrelation drives 1000 concurrent insert/remove
// pairs through the same table and checks every request correlates to
// exactly the session id it was inserted with, with no double-removal
// and no lost entries.
func TestTableConcurrentCorrelation(t *testing.T) {
	tbl := NewTable()
	const n = 1000
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("req-%d", i)
			sessionID := fmt.Sprintf("sess-%d", i)
			tbl.Insert(id, &PendingRequest{SessionID: sessionID, Command: rpc.Ping})
			p, err := tbl.RemoveAndReturn(id)
			if err != nil {
				errs <- fmt.Errorf("remove %d: %w", i, err)
				return
			}
			if p.SessionID != sessionID {
				errs <- fmt.Errorf("correlation mismatch: got %q want %q", p.SessionID, sessionID)
				return
			}
			if _, err = tbl.RemoveAndReturn(id); err == nil {
				errs <- fmt.Errorf("double remove of %d succeeded unexpectedly", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if tbl.Len() != 0 {
		t.Fatalf("expected table empty after all removes, got %d entries", tbl.Len())
	}
}
