package network

import (
	"fmt"

	"github.com/edp1096/elecsim/internal/consts"
)

// expandLoadBreakers implements the "load with protective breaker"
// auto-generation shortcut (spec §4.1): a LOAD descriptor carrying
// HasLoadCB synthesizes a CB and a virtual bus between the CB and the
// load, and rewrites any BUS ENDPT line that referenced the load by name
// to reference the new CB instead.
func (net *Network) expandLoadBreakers(in []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(in))
	rewrites := make(map[string]string) // original load name -> synthesized CB name

	for _, d := range in {
		if d.Kind == KindLoad && d.HasLoadCB {
			cbName := d.Name + "_CB"
			vbusName := "_VBUS_" + d.Name
			rewrites[d.Name] = cbName
			net.logger.Printf("load %s: synthesized protective breaker %s and virtual bus %s", d.Name, cbName, vbusName)

			out = append(out, Descriptor{
				Kind:          KindCB,
				Name:          cbName,
				Location:      d.LoadCBLoc,
				MaxAmps:       d.LoadCBAmps,
				HeatRate:      1.0,
				AutoGenerated: true,
			})
			out = append(out, Descriptor{
				Kind:          KindBus,
				Name:          vbusName,
				BusAC:         d.AC,
				AutoGenerated: true,
				Endpoints: []EndpointRef{
					{Device: cbName, Dir: "OUT"},
					{Device: d.Name, Dir: "IN"},
				},
			})
		}
		out = append(out, d)
	}

	if len(rewrites) == 0 {
		return out
	}
	for i := range out {
		if out[i].Kind != KindBus || out[i].AutoGenerated {
			continue
		}
		eps := out[i].Endpoints
		for j := range eps {
			if cb, ok := rewrites[eps[j].Device]; ok {
				eps[j].Device = cb
			}
		}
	}
	return out
}

// Descriptor.AutoGenerated flags the components expandLoadBreakers
// synthesizes; allocate copies it onto each Component.

func (net *Network) allocate(descriptors []Descriptor) error {
	for idx, d := range descriptors {
		if d.Name == "" {
			return specErr(idx, "", "descriptor has no name")
		}
		if _, exists := net.byName[d.Name]; exists {
			return specErr(idx, d.Name, "duplicate component name %q", d.Name)
		}

		c := newComponent(d.Name, d.Kind)
		c.Net = net
		c.idx = len(net.components)
		c.Location = d.Location
		c.AutoGenerated = d.AutoGenerated
		for k, v := range d.Hints {
			c.Hints[k] = v
		}

		if err := net.initPayload(c, d, idx); err != nil {
			return err
		}

		net.idxByName[d.Name] = len(net.components)
		net.components = append(net.components, c)
		net.byName[d.Name] = c
		if err := net.topo.AddVertex(d.Name); err != nil {
			return specErr(idx, d.Name, "registering vertex: %w", err)
		}
	}
	return nil
}

func (net *Network) resolveBattLinks() error {
	for _, p := range net.pendingBattLinks {
		batt, ok := net.byName[p.battName]
		if !ok {
			return specErr(p.conv.idx, p.conv.Name, "charger references unknown battery %q", p.battName)
		}
		if batt.Kind != KindBattery {
			return specErr(p.conv.idx, p.conv.Name, "charger battery link %q is not a battery", p.battName)
		}
		p.conv.Conv.BattLink = batt
	}
	return nil
}

// wireEndpoints resolves every BUS descriptor's ENDPT entries into live
// component handles and installs reciprocal, non-owning index back-pointers
// (spec §4.1 "Build"). A bus's own Endpoints holds its devices in
// declaration order, which is also the deterministic paint/integrate
// traversal order (spec §3 "Ownership"). A device's Endpoints holds the
// buses it is wired to, ordered IN-before-OUT for the two-sided kinds
// (TRU, Inverter, CB, Fuse, Shunt, Diode); single-sided kinds (Battery,
// Generator, Load, Tie) simply accumulate every bus they are named under.
func (net *Network) wireEndpoints(descriptors []Descriptor) error {
	for idx, d := range descriptors {
		if d.Kind != KindBus {
			continue
		}
		bus, err := net.mustFind(d.Name)
		if err != nil {
			return specErr(idx, d.Name, "%w", err)
		}
		for _, ref := range d.Endpoints {
			dev, err := net.mustFind(ref.Device)
			if err != nil {
				return specErr(idx, d.Name, "endpoint %q: %w", ref.Device, err)
			}
			if dev.Kind == KindBus {
				return specErr(idx, d.Name, "endpoint %q is a bus; buses may not connect directly to other buses", ref.Device)
			}
			if len(dev.Endpoints) >= consts.MaxBusMembership {
				return specErr(idx, d.Name, "device %q already appears in %d buses, exceeds limit of %d", ref.Device, len(dev.Endpoints), consts.MaxBusMembership)
			}

			busIdx := net.idxByName[d.Name]
			devIdx := net.idxByName[ref.Device]

			bus.Endpoints = append(bus.Endpoints, devIdx)

			if _, err := net.topo.AddEdge(d.Name, ref.Device, 0); err != nil {
				return specErr(idx, d.Name, "registering edge to %q: %w", ref.Device, err)
			}

			if err := installDeviceEndpoint(dev, busIdx, ref.Dir); err != nil {
				return specErr(idx, d.Name, "endpoint %q: %w", ref.Device, err)
			}
		}
	}
	return nil
}

// installDeviceEndpoint appends busIdx to dev.Endpoints, ordering IN before
// OUT for the two-sided kinds. dir is the token recorded on the owning
// BUS's ENDPT line ("", IN, OUT, AC, or DC); AC/DC are mapped onto IN/OUT
// using the converter's ACIsInput flag (spec §4.1 "TRU/Inverter endpoints
// are AC on AC-side and DC on DC-side").
func installDeviceEndpoint(dev *Component, busIdx int, dir string) error {
	switch dev.Kind {
	case KindTRU, KindInverter:
		in := dir == "IN" || (dir == "AC" && dev.Conv.ACIsInput) || (dir == "DC" && !dev.Conv.ACIsInput)
		out := dir == "OUT" || (dir == "DC" && dev.Conv.ACIsInput) || (dir == "AC" && !dev.Conv.ACIsInput)
		return placeTwoSided(dev, busIdx, in, out)

	case KindCB, KindFuse, KindShunt, KindDiode:
		in := dir == "IN"
		out := dir == "OUT"
		return placeTwoSided(dev, busIdx, in, out)

	default:
		dev.Endpoints = append(dev.Endpoints, busIdx)
		return nil
	}
}

// placeTwoSided installs busIdx at position 0 (IN/anode) or 1 (OUT/cathode)
// of a two-sided device's Endpoints, growing the slice as needed. When
// neither in nor out is set (dir was "" or unrecognized), the bus simply
// fills the next open slot in declaration order.
func placeTwoSided(dev *Component, busIdx int, in, out bool) error {
	for len(dev.Endpoints) < 2 {
		dev.Endpoints = append(dev.Endpoints, -1)
	}
	switch {
	case in:
		if dev.Endpoints[0] != -1 {
			return fmt.Errorf("%s already has an IN-side endpoint", dev.Name)
		}
		dev.Endpoints[0] = busIdx
	case out:
		if dev.Endpoints[1] != -1 {
			return fmt.Errorf("%s already has an OUT-side endpoint", dev.Name)
		}
		dev.Endpoints[1] = busIdx
	default:
		if dev.Endpoints[0] == -1 {
			dev.Endpoints[0] = busIdx
		} else if dev.Endpoints[1] == -1 {
			dev.Endpoints[1] = busIdx
		} else {
			return fmt.Errorf("%s already has both endpoints assigned", dev.Name)
		}
	}
	return nil
}

// finalizeTies sizes every Tie's cur/wk tied-flag arrays to match the
// number of bus endpoints wireEndpoints resolved for it; until a network
// is built there is no way to know a tie's arity in advance.
func (net *Network) finalizeTies() {
	for _, c := range net.components {
		if c.Kind != KindTie {
			continue
		}
		c.Tie = newTiePayload(len(c.Endpoints))
	}
}

// validate checks the fully-wired graph against the invariants spec §4.1
// names beyond what initPayload and wireEndpoints already enforce per
// descriptor: every endpoint resolved, two-sided kinds have both sides
// filled, and TRU/Inverter AC/DC side typing matches the bus it landed on.
func (net *Network) validate(descriptors []Descriptor) error {
	for _, c := range net.components {
		switch c.Kind {
		case KindBattery, KindGenerator, KindLoad, KindTie:
			if len(c.Endpoints) == 0 {
				return specErr(c.idx, c.Name, "%s has no bus endpoint", c.Kind)
			}

		case KindTRU, KindInverter, KindCB, KindFuse, KindShunt, KindDiode:
			if len(c.Endpoints) != 2 || c.Endpoints[0] == -1 || c.Endpoints[1] == -1 {
				return specErr(c.idx, c.Name, "%s must have exactly two resolved endpoints", c.Kind)
			}
			if c.Kind == KindTRU || c.Kind == KindInverter {
				var acSide, dcSide *Component
				if c.Conv.ACIsInput {
					acSide, dcSide = net.components[c.Endpoints[0]], net.components[c.Endpoints[1]]
				} else {
					acSide, dcSide = net.components[c.Endpoints[1]], net.components[c.Endpoints[0]]
				}
				if acSide.Bus == nil || !acSide.Bus.AC {
					return specErr(c.idx, c.Name, "%s AC-side endpoint %s is not an AC bus", c.Kind, acSide.Name)
				}
				if dcSide.Bus == nil || dcSide.Bus.AC {
					return specErr(c.idx, c.Name, "%s DC-side endpoint %s is not a DC bus", c.Kind, dcSide.Name)
				}
			}

		case KindBus:
			if len(c.Endpoints) == 0 {
				return specErr(c.idx, c.Name, "bus has no endpoints")
			}
		}
	}
	return nil
}

func (net *Network) initPayload(c *Component, d Descriptor, idx int) error {
	switch d.Kind {
	case KindBattery:
		if d.Volts <= 0 {
			return specErr(idx, d.Name, "battery nominal voltage must be positive, got %g", d.Volts)
		}
		if d.CapacityJ < 0 {
			return specErr(idx, d.Name, "battery capacity must be >= 0, got %g", d.CapacityJ)
		}
		if d.MaxPwr <= 0 {
			return specErr(idx, d.Name, "battery max power must be positive, got %g", d.MaxPwr)
		}
		if d.IntR <= 0 {
			return specErr(idx, d.Name, "battery internal resistance must be positive, got %g", d.IntR)
		}
		c.Battery = &BatteryPayload{
			NominalV:   d.Volts,
			CapacityJ:  d.CapacityJ,
			MaxPwr:     d.MaxPwr,
			ChargeR:    d.ChgR,
			InternalR:  d.IntR,
			ChargeFrac: 1.0,
			TempK:      consts.RoomTempK,
		}

	case KindGenerator:
		if d.Volts <= 0 {
			return specErr(idx, d.Name, "generator nominal voltage must be positive, got %g", d.Volts)
		}
		if !(d.ExcRPM <= d.MinRPM && d.MinRPM < d.MaxRPM) {
			return specErr(idx, d.Name, "generator rpm bounds must satisfy exc<=min<max, got exc=%g min=%g max=%g", d.ExcRPM, d.MinRPM, d.MaxRPM)
		}
		if d.IntR <= 0 {
			return specErr(idx, d.Name, "generator internal resistance must be positive, got %g", d.IntR)
		}
		var curve *Curve
		if len(d.Curve) > 0 {
			var err error
			curve, err = NewCurve(d.Curve)
			if err != nil {
				return specErr(idx, d.Name, "generator efficiency curve: %w", err)
			}
		}
		c.Generator = &GeneratorPayload{
			NominalV:  d.Volts,
			NominalF:  d.Freq,
			ExcRPM:    d.ExcRPM,
			MinRPM:    d.MinRPM,
			MaxRPM:    d.MaxRPM,
			StabRateU: d.StabRateU,
			StabRateF: d.StabRateF,
			InternalR: d.IntR,
			EffCurve:  curve,
		}

	case KindTRU, KindInverter:
		if d.InVolts <= 0 || d.OutVolts <= 0 {
			return specErr(idx, d.Name, "%s in/out voltage must be positive, got in=%g out=%g", d.Kind, d.InVolts, d.OutVolts)
		}
		var curve *Curve
		if len(d.Curve) > 0 {
			var err error
			curve, err = NewCurve(d.Curve)
			if err != nil {
				return specErr(idx, d.Name, "%s efficiency curve: %w", d.Kind, err)
			}
		}
		if d.IsCharger && d.BattLink == "" {
			return specErr(idx, d.Name, "charger requires a battery link")
		}
		c.Conv = &ConverterPayload{
			InNominalV:  d.InVolts,
			OutNominalV: d.OutVolts,
			OutNominalF: d.OutFreq,
			InternalR:   d.IntR,
			EffCurve:    curve,
			CurrLim:     d.CurrLim,
			ACIsInput:   d.Kind != KindInverter,
			IsCharger:   d.IsCharger,
		}
		net.pendingBattLinks = append(net.pendingBattLinks, pendingBattLink{conv: c, battName: d.BattLink})

	case KindLoad:
		if d.MinVolts <= 0 {
			return specErr(idx, d.Name, "load min voltage must be positive, got %g", d.MinVolts)
		}
		c.Load = &LoadPayload{
			AC:         d.AC,
			Stabilized: d.Stabilized,
			MinV:       d.MinVolts,
			IncapC:     d.IncapC,
			IncapR:     d.IncapR,
			Leak:       d.Leak,
			StdLoad:    d.StdLoad,
		}

	case KindBus:
		c.Bus = &BusPayload{AC: d.BusAC}

	case KindCB, KindFuse:
		if d.MaxAmps <= 0 {
			return specErr(idx, d.Name, "%s max amps must be positive, got %g", d.Kind, d.MaxAmps)
		}
		rate := d.HeatRate
		if rate <= 0 {
			rate = 1.0
		}
		c.CB = &CBPayload{
			MaxAmps:  d.MaxAmps,
			HeatRate: rate,
			TriPhase: d.TriPhase,
			Fuse:     d.Kind == KindFuse || d.IsFuse,
			CurSet:   true,
			wkSet:    true,
		}

	case KindShunt:
		c.Shunt = &ShuntPayload{}

	case KindTie:
		c.Tie = newTiePayload(0)

	case KindDiode:
		c.Diode = &DiodePayload{}

	default:
		return specErr(idx, d.Name, "unknown component kind %v", d.Kind)
	}
	return nil
}
