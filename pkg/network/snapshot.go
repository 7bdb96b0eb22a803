package network

// ComponentSnapshot is one component's published state at the moment a
// Snapshot was taken, tagged with its identity for display/serialization.
type ComponentSnapshot struct {
	Name  string
	Kind  Kind
	State State
}

// Snapshot returns every component's published state as of the same tick,
// for callers that need cross-component consistency instead of sampling
// components one at a time through the per-component observer methods
// (spec §4.8 "a reader that needs cross-component consistency should
// sample via the network-level snapshot hook"). It holds publishMu for the
// duration of the copy, which only ever contends with the publish step at
// the tail of Tick, never with the bulk of a tick's solving work.
func (net *Network) Snapshot() []ComponentSnapshot {
	net.publishMu.Lock()
	defer net.publishMu.Unlock()

	out := make([]ComponentSnapshot, len(net.components))
	for i, c := range net.components {
		out[i] = ComponentSnapshot{
			Name:  c.Name,
			Kind:  c.Kind,
			State: c.snapshotState(),
		}
	}
	return out
}
