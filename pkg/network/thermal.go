package network

// thermalPhase runs the CB/Fuse filament-heating and auto-trip model
// against this tick's integrated in_A (spec §4.7).
func (net *Network) thermalPhase(dt float64) {
	for _, c := range net.components {
		if c.Kind != KindCB && c.Kind != KindFuse {
			continue
		}
		if c.CB.stepThermal(c.rw.InA, dt) {
			net.logger.Printf("%s: auto-tripped at tick %d (in_A=%.3f, max_A=%.3f)", c.Name, net.tickNo, c.rw.InA, c.CB.MaxAmps)
		}
	}
}
