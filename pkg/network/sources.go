package network

// updateSources runs the per-tick constitutive equations for every
// Battery and Generator (spec §4.4), writing each source's instantaneous
// out_V (and out_f for AC generators) into rw so paint can start from it.
func (net *Network) updateSources(dt float64) {
	for _, c := range net.components {
		switch c.Kind {
		case KindBattery:
			b := c.Battery
			v := b.terminalVoltage()
			if net.noiseStdV != 0 {
				v += net.gaussian() * net.noiseStdV
				if v < 0 {
					v = 0
				}
			}
			c.rw.OutV = v
			c.rw.InV = v
			b.integrateCharge(dt)
			// loadA fed terminalVoltage's sag and integrateCharge's
			// discharge for this tick; zero it so this tick's own
			// integrate pass (which starts from zero and accumulates via
			// +=) isn't added on top of last tick's figure.
			b.loadA = 0

		case KindGenerator:
			g := c.Generator
			rpm := 0.0
			if g.RPM != nil {
				rpm = g.RPM()
			}
			if net.noiseStdV != 0 {
				rpm += net.gaussian() * net.noiseStdV
			}
			outV, outF := g.stepExcitation(rpm, dt)
			c.rw.OutV = outV
			c.rw.InV = outV
			c.rw.OutF = outF
			c.rw.InF = outF
			// A generator's loadA is accumulated like the battery's but
			// nothing reads it; zeroed here so this tick's integrate pass
			// starts clean.
			g.loadA = 0
		}
	}
}

// gaussian draws one standard-normal sample from this network's private
// noise source (spec §9 "random seeds for noise injection are
// per-network").
func (net *Network) gaussian() float64 {
	return net.rng.NormFloat64()
}
