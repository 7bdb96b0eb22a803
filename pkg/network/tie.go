package network

import "sync"

// TiePayload holds per-endpoint connection flags for a multi-endpoint tie
// switch, dual-buffered exactly like CB state (spec §3, §4.3, §5).
// CurTied is caller-visible; wkTied is the worker-visible snapshot copied
// during reset. mu guards CurTied against concurrent SetTie calls and the
// reset-time copy; wkTied is solver-exclusive once copied.
type TiePayload struct {
	mu      sync.Mutex
	CurTied []bool
	wkTied  []bool
}

func newTiePayload(n int) *TiePayload {
	return &TiePayload{
		CurTied: make([]bool, n),
		wkTied:  make([]bool, n),
	}
}

// syncWkFromCur copies CurTied into wkTied at tick reset under mu.
func (t *TiePayload) syncWkFromCur() {
	t.mu.Lock()
	copy(t.wkTied, t.CurTied)
	t.mu.Unlock()
}

// setTied applies an external commander's request for one endpoint under
// mu; out-of-range indices are ignored (caller validated against the
// tie's arity before calling).
func (t *TiePayload) setTied(i int, v bool) {
	t.mu.Lock()
	if i >= 0 && i < len(t.CurTied) {
		t.CurTied[i] = v
	}
	t.mu.Unlock()
}

// setAllTied sets every endpoint's CurTied flag under mu.
func (t *TiePayload) setAllTied(v bool) {
	t.mu.Lock()
	for i := range t.CurTied {
		t.CurTied[i] = v
	}
	t.mu.Unlock()
}
