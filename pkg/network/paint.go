package network

// paintPhase starts a voltage-propagation traversal from every source
// (Battery or Generator) whose source update produced a positive out_V
// (spec §4.5).
func (net *Network) paintPhase() error {
	for _, c := range net.components {
		var volt float64
		var isAC bool
		switch c.Kind {
		case KindBattery:
			volt = c.rw.OutV
			isAC = false
		case KindGenerator:
			volt = c.rw.OutV
			isAC = c.Generator.isAC()
		default:
			continue
		}
		if volt <= 0 {
			continue
		}
		for _, busIdx := range c.Endpoints {
			if err := net.paintFrom(net.components[busIdx], c, volt, isAC, c.idx, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// paintFrom visits node, having arrived from the neighbor at upstreamIdx
// carrying volt on behalf of source (spec §4.5). depth counts bus/device
// hops from the originating source and is checked against the network's
// configured limit (spec §4.5 "Depth limit", §8 invariant 3).
func (net *Network) paintFrom(node *Component, source *Component, volt float64, isAC bool, upstreamIdx int, depth int) error {
	if depth > net.depthLimit {
		return progErr(node.Name, net.tickNo, "paint exceeded depth limit %d", net.depthLimit)
	}

	proceed, conflict := node.paintVisit(source, volt, isAC, upstreamIdx)
	if conflict {
		net.logger.Printf("%s: AC double-source conflict, %s arriving alongside an existing attribution", node.Name, source.Name)
	}
	if !proceed {
		return nil
	}

	switch node.Kind {
	case KindBus:
		for _, epIdx := range node.Endpoints {
			if epIdx == upstreamIdx {
				continue
			}
			if err := net.paintFrom(net.components[epIdx], source, volt, isAC, node.idx, depth+1); err != nil {
				return err
			}
		}

	case KindTie:
		for i, epIdx := range node.Endpoints {
			if epIdx == upstreamIdx {
				continue
			}
			if !node.Tie.wkTied[i] || !net.tieUpstreamConnected(node, upstreamIdx) {
				continue
			}
			if err := net.paintFrom(net.components[epIdx], source, volt, isAC, node.idx, depth+1); err != nil {
				return err
			}
		}

	case KindCB, KindFuse:
		if !node.CB.wkSet || node.rw.Failed {
			break
		}
		other := otherSide(node, upstreamIdx)
		if other >= 0 {
			if err := net.paintFrom(net.components[other], source, volt, isAC, node.idx, depth+1); err != nil {
				return err
			}
		}

	case KindShunt:
		other := otherSide(node, upstreamIdx)
		if other >= 0 {
			if err := net.paintFrom(net.components[other], source, volt, isAC, node.idx, depth+1); err != nil {
				return err
			}
		}

	case KindDiode:
		if upstreamIdx != node.Endpoints[0] {
			break // reverse entry: blocked
		}
		if err := net.paintFrom(net.components[node.Endpoints[1]], source, volt, isAC, node.idx, depth+1); err != nil {
			return err
		}

	case KindTRU, KindInverter:
		if upstreamIdx != node.Endpoints[0] {
			break // only IN-side entry propagates forward
		}
		outV := node.Conv.scaledOutput(volt)
		node.rw.OutV = outV
		node.Conv.outV = outV
		outIsAC := node.Conv.isOutputAC()
		if outV > 0 {
			if err := net.paintFrom(net.components[node.Endpoints[1]], node, outV, outIsAC, node.idx, depth+1); err != nil {
				return err
			}
		}

	case KindLoad, KindBattery, KindGenerator:
		// terminal sinks: accept but never re-radiate (spec §4.5).
	}
	return nil
}

// otherSide returns the endpoint index opposite upstreamIdx for a
// two-sided device, or -1 if upstreamIdx isn't one of its two endpoints.
func otherSide(node *Component, upstreamIdx int) int {
	if len(node.Endpoints) != 2 {
		return -1
	}
	switch upstreamIdx {
	case node.Endpoints[0]:
		return node.Endpoints[1]
	case node.Endpoints[1]:
		return node.Endpoints[0]
	default:
		return -1
	}
}

// tieUpstreamConnected checks that the endpoint the tie was entered from
// is itself tied in this tick's wk snapshot (spec §4.5: "the upstream
// endpoint's own tied flag must be true for entry").
func (net *Network) tieUpstreamConnected(tie *Component, upstreamIdx int) bool {
	for i, epIdx := range tie.Endpoints {
		if epIdx == upstreamIdx {
			return tie.Tie.wkTied[i]
		}
	}
	return false
}
