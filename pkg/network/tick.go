package network

// Tick advances the network by one logical step of dt seconds: reset,
// source update, paint, integrate, thermal/trip, then publish (spec §2
// "Data flow each tick", §4.3-§4.8). It is the only entry point the
// scheduler (package solver) calls; everything else on Network is either
// construction or the mutator/observer surface.
func (net *Network) Tick(dt float64) error {
	net.tickNo++
	net.reset()
	net.updateSources(dt)
	if err := net.paintPhase(); err != nil {
		return err
	}
	if err := net.integratePhase(dt); err != nil {
		return err
	}
	net.thermalPhase(dt)
	net.publish()
	return nil
}

// reset clears every component's per-tick working state and performs the
// transactional tie/CB cur->wk handoff (spec §4.3).
func (net *Network) reset() {
	for _, c := range net.components {
		c.rw = State{Failed: c.failed}
		c.srcSet = c.srcSet[:0]
		c.srcVia = c.srcVia[:0]

		switch c.Kind {
		case KindTie:
			c.Tie.syncWkFromCur()
		case KindCB, KindFuse:
			c.CB.syncWkFromCur()
		case KindTRU, KindInverter:
			c.Conv.pushedA = 0
			c.Conv.pushedW = 0
		}
	}
}

// publish copies every component's rw buffer into ro under its own small
// lock (spec §4.8). The whole pass additionally holds publishMu, so a
// Snapshot call never observes half-published components from this tick
// mixed with half from the last one.
func (net *Network) publish() {
	net.publishMu.Lock()
	defer net.publishMu.Unlock()
	for _, c := range net.components {
		c.publish()
	}
}

// TickNo returns the number of ticks this network has executed.
func (net *Network) TickNo() uint64 { return net.tickNo }
