package network

// integratePhase walks every Load back toward the sources feeding it,
// summing current demand along the way (spec §4.6). Loads are the only
// entry points: every other kind only ever receives current pushed
// upstream by integrateUp.
func (net *Network) integratePhase(dt float64) error {
	for _, c := range net.components {
		if c.Kind != KindLoad {
			continue
		}
		l := c.Load

		inrushA := l.stepIncap(c.rw.InV, dt)

		demandA := 0.0
		if c.rw.InV >= l.MinV && c.rw.InV > 0 {
			demandA = l.demandAmps(c.rw.InV) + inrushA
		} else if l.poweredByIncap() {
			// Incap alone keeps the load observably powered briefly after
			// supply loss (spec §8 S6); it draws no further upstream
			// current once in_V has actually collapsed.
			c.rw.OutV = l.incapV
		}

		c.rw.InA = demandA
		c.rw.OutA = demandA
		c.rw.InW = c.rw.InV * demandA
		c.rw.OutW = c.rw.InW
		if c.rw.InV > 0 {
			c.rw.OutV = c.rw.InV
		}

		if demandA <= 0 || len(c.Endpoints) == 0 {
			continue
		}
		if err := net.integrateUp(net.components[c.Endpoints[0]], c.idx, demandA, 1); err != nil {
			return err
		}
	}
	return nil
}

// integrateUp pushes amps of upstream demand into node, which arrived
// from the downstream neighbor at fromIdx, and recurses toward whatever
// source(s) paint attributed node to (spec §4.6).
func (net *Network) integrateUp(node *Component, fromIdx int, amps float64, depth int) error {
	if depth > net.depthLimit {
		return progErr(node.Name, net.tickNo, "integrate exceeded depth limit %d", net.depthLimit)
	}

	node.rw.OutA += amps
	node.rw.OutW = node.rw.OutV * node.rw.OutA

	switch node.Kind {
	case KindBus:
		node.rw.InA = node.rw.OutA
		node.rw.InW = node.rw.OutW
		return net.pushToSources(node, amps, depth)

	case KindTie:
		node.rw.InA = node.rw.OutA
		node.rw.InW = node.rw.OutW
		return net.pushToSources(node, amps, depth)

	case KindCB, KindFuse:
		node.rw.InA = node.rw.OutA
		node.rw.InW = node.rw.OutW
		if other := otherSide(node, fromIdx); other >= 0 {
			return net.integrateUp(net.components[other], node.idx, amps, depth+1)
		}
		return nil

	case KindShunt:
		node.rw.InA = node.rw.OutA
		node.rw.InW = node.rw.OutW
		if other := otherSide(node, fromIdx); other >= 0 {
			return net.integrateUp(net.components[other], node.idx, amps, depth+1)
		}
		return nil

	case KindDiode:
		node.rw.InA = node.rw.OutA
		node.rw.InW = node.rw.OutW
		if fromIdx != node.Endpoints[1] {
			return nil // current only flows anode->cathode; no reverse contribution
		}
		return net.integrateUp(net.components[node.Endpoints[0]], node.idx, amps, depth+1)

	case KindTRU, KindInverter:
		return net.integrateConverter(node, depth)

	case KindBattery:
		node.Battery.loadA += amps
		node.rw.InA = node.rw.OutA
		node.rw.InW = node.rw.OutW
		return nil

	case KindGenerator:
		node.Generator.loadA += amps
		node.rw.InA = node.rw.OutA
		node.rw.InW = node.rw.OutW
		return nil

	default:
		return nil
	}
}

// pushToSources splits amps among the neighbors that energize node
// (recorded in node.srcSet/srcVia during paint), weighted by each
// contributing attribution's EMF times its source's conductance for the
// DC multi-source case (spec
// §4.6 "Battery/Generator: in_A is split ... by EMF × 1/R_internal";
// §9 Open Question resolves the ambiguous reading as EMF × (1/R)).
func (net *Network) pushToSources(node *Component, amps float64, depth int) error {
	if len(node.srcSet) == 0 {
		return nil
	}
	if len(node.srcSet) == 1 {
		return net.integrateUp(net.components[node.srcVia[0]], node.idx, amps, depth+1)
	}

	weights := make([]float64, len(node.srcSet))
	total := 0.0
	for i, a := range node.srcSet {
		weights[i] = a.EMF * sourceWeight(a.Source)
		total += weights[i]
	}
	if total <= 0 {
		total = float64(len(weights))
		for i := range weights {
			weights[i] = 1
		}
	}
	for i, via := range node.srcVia {
		share := amps * weights[i] / total
		if share <= 0 {
			continue
		}
		if err := net.integrateUp(net.components[via], node.idx, share, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func sourceWeight(source *Component) float64 {
	switch source.Kind {
	case KindBattery:
		return source.Battery.sourceConductance()
	case KindGenerator:
		return source.Generator.sourceConductance()
	default:
		// A converter acting as a new source (spec §4.5) has no internal
		// resistance of its own here; give it unit conductance.
		return 1
	}
}

// integrateConverter computes a TRU/Inverter/Charger's in_A from its
// downstream demand, applies the efficiency curve, enforces a charger's
// current limit, and feeds a linked battery's recharge energy (spec
// §4.6). node.rw.OutA already holds the sum of every downstream path
// integrateUp has visited so far this tick (accumulated by its own += before
// dispatching here), so every quantity below is computed from that running
// total rather than this call's own amps; only the increment since the last
// visit is pushed upstream or into the battery link, so a converter feeding
// several loads on its output bus is never double- or under-counted no
// matter how many times it is re-entered in one tick.
func (net *Network) integrateConverter(node *Component, depth int) error {
	conv := node.Conv
	outW := node.rw.OutV * node.rw.OutA
	node.rw.OutW = outW

	eff := conv.efficiency(outW)
	inV := node.rw.InV
	inA := 0.0
	if inV > 0 && eff > 0 {
		inA = outW / (inV * eff)
	}

	conv.overCurrent = false
	if conv.CurrLim > 0 && inA > conv.CurrLim {
		inA = conv.CurrLim
		conv.overCurrent = true
	}

	node.rw.InA = inA
	node.rw.InW = inV * inA

	deltaW := outW - conv.pushedW
	conv.pushedW = outW
	if conv.IsCharger && conv.BattLink != nil && deltaW > 0 {
		conv.BattLink.Battery.RechgW += deltaW
	}

	deltaA := inA - conv.pushedA
	conv.pushedA = inA
	if deltaA <= 0 {
		return nil
	}
	return net.integrateUp(net.components[node.Endpoints[0]], node.idx, deltaA, depth+1)
}
