package network

import "github.com/edp1096/elecsim/internal/consts"

// SetCB commands a breaker's caller-visible state. A close request is
// rejected while the filament temperature is at or above the cooldown
// threshold, which is always the case right after a trip (spec §7
// precondition errors, §4.7 hysteresis); the breaker's state is left
// unchanged. The check looks at temperature only, so a breaker that is
// warm from load without having tripped is refused as well.
func (net *Network) SetCB(name string, closed bool) error {
	c, ok := net.byName[name]
	if !ok {
		return precondErr(name, "unknown component")
	}
	if c.Kind != KindCB && c.Kind != KindFuse {
		return precondErr(name, "not a breaker or fuse")
	}
	if closed && !c.CB.canClose() {
		net.logger.Printf("%s: reclose rejected, still cooling down (temp=%.3f)", name, c.CB.snapshotTemp())
		return precondErr(name, "refused to close: still cooling down from a trip")
	}
	c.CB.setCurSet(closed)
	return nil
}

// SetTie sets which bus endpoints of a tie are connected: every endpoint
// whose bus is named in names is tied and every other endpoint is untied.
// names consisting of the single entry "all" (case-sensitive) ties every
// endpoint at once; an empty names list unties everything.
func (net *Network) SetTie(tieName string, names ...string) error {
	c, ok := net.byName[tieName]
	if !ok {
		return precondErr(tieName, "unknown component")
	}
	if c.Kind != KindTie {
		return precondErr(tieName, "not a tie")
	}
	if len(names) == 1 && names[0] == "all" {
		c.Tie.setAllTied(true)
		return nil
	}
	if len(names) == 0 {
		c.Tie.setAllTied(false)
		return nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for i, epIdx := range c.Endpoints {
		bus := net.components[epIdx]
		c.Tie.setTied(i, want[bus.Name])
	}
	return nil
}

// SetCharge sets a battery's charge fraction directly; out-of-range
// values are rejected (spec §7 precondition errors).
func (net *Network) SetCharge(name string, frac float64) error {
	c, ok := net.byName[name]
	if !ok {
		return precondErr(name, "unknown component")
	}
	if c.Kind != KindBattery {
		return precondErr(name, "not a battery")
	}
	if frac < 0 || frac > 1 {
		return precondErr(name, "charge fraction %g out of [0,1]", frac)
	}
	c.Battery.setChargeFrac(frac)
	return nil
}

// SetTemp sets a battery's temperature, given in degrees Celsius; out-of-
// range values are rejected (spec §7: "[-90,+90] degC").
func (net *Network) SetTemp(name string, degC float64) error {
	c, ok := net.byName[name]
	if !ok {
		return precondErr(name, "unknown component")
	}
	if c.Kind != KindBattery {
		return precondErr(name, "not a battery")
	}
	if degC < -90 || degC > 90 {
		return precondErr(name, "temperature %g degC out of [-90,90]", degC)
	}
	c.Battery.setTempK(degC + consts.KELVIN)
	return nil
}

// BindRPM attaches a generator's rpm source. It must be wait-free and
// re-entrant: the solver calls it once per tick from its own goroutine
// (spec §9 "Callbacks").
func (net *Network) BindRPM(name string, fn RPMFunc) error {
	c, ok := net.byName[name]
	if !ok {
		return precondErr(name, "unknown component")
	}
	if c.Kind != KindGenerator {
		return precondErr(name, "not a generator")
	}
	c.Generator.RPM = fn
	return nil
}

// BindLoad attaches a non-standard load's demand callback (spec §9).
func (net *Network) BindLoad(name string, fn LoadFunc) error {
	c, ok := net.byName[name]
	if !ok {
		return precondErr(name, "unknown component")
	}
	if c.Kind != KindLoad {
		return precondErr(name, "not a load")
	}
	c.Load.Callback = fn
	return nil
}

// MarkFailed sets or clears a component's persistent failure flag. The
// published Failed() observer reflects the new value immediately; every
// later tick copies the flag into rw at reset.
func (net *Network) MarkFailed(name string, failed bool) error {
	c, ok := net.byName[name]
	if !ok {
		return precondErr(name, "unknown component")
	}
	c.failed = failed
	c.mu.Lock()
	c.ro.Failed = failed
	c.mu.Unlock()
	return nil
}

// MarkShorted forces a component's shorted flag for the remainder of the
// current published state; the flag is recomputed fresh every tick by
// paint, so this is mainly useful for tests and scripted fault injection.
func (net *Network) MarkShorted(name string, shorted bool) error {
	c, ok := net.byName[name]
	if !ok {
		return precondErr(name, "unknown component")
	}
	c.mu.Lock()
	c.ro.Shorted = shorted
	c.mu.Unlock()
	return nil
}

// ReadyToStart checks the spec §4.2 startup precondition: every generator
// needs an rpm callback and every non-standard (callback-driven) load
// needs its callback bound.
func (net *Network) ReadyToStart() error {
	for _, c := range net.components {
		switch c.Kind {
		case KindGenerator:
			if c.Generator.RPM == nil {
				return precondErr(c.Name, "generator has no rpm callback bound")
			}
		case KindLoad:
			if c.Load.StdLoad == 0 && c.Load.Callback == nil {
				return precondErr(c.Name, "load has no std_load and no callback bound")
			}
		}
	}
	return nil
}
