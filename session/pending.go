package session

import (
	"github.com/puzpuzpuz/xsync/v3"

	"go.nostrconnect.dev/core/errs"
	"go.nostrconnect.dev/core/rpc"
)

// PendingRequest is an outbound RPC awaiting its matching response,
// correlated by the id it was sent with.
type PendingRequest struct {
	SessionID    string
	Command      rpc.Command
	TargetPubkey string
	CreatedAt    int64
	Parameters   []string
}

// Table is the concurrent pending-request map: one atomic insert per
// outbound request, one atomic remove-and-return per inbound response.
// The zero value is not usable; call NewTable.
type Table struct {
	m *xsync.MapOf[string, *PendingRequest]
}

func NewTable() *Table {
	return &Table{m: xsync.NewMapOf[string, *PendingRequest]()}
}

// Insert records a freshly sent request under id. Overwriting an
// existing id would desynchronize correlation, so callers must use
// ids guaranteed unique (see IDGen).
func (t *Table) Insert(id string, p *PendingRequest) {
	t.m.Store(id, p)
}

// RemoveAndReturn atomically takes the pending entry for id out of the
// table, so a racing duplicate response can never dispatch twice.
// Returns errs.ErrRequestNotPending if id is not (or no longer) present.
func (t *Table) RemoveAndReturn(id string) (*PendingRequest, error) {
	p, ok := t.m.LoadAndDelete(id)
	if !ok {
		return nil, errs.ErrRequestNotPending
	}
	return p, nil
}

// Len reports the number of requests currently awaiting a response.
func (t *Table) Len() int {
	return t.m.Size()
}
