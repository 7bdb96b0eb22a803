package network

import "github.com/edp1096/elecsim/pkg/util"

// RPMFunc is the callback a host binds to a generator to supply its
// instantaneous shaft speed each tick. It must be wait-free and
// re-entrant (spec §9): it runs on the solver goroutine.
type RPMFunc func() float64

// GeneratorPayload holds a generator/alternator's constitutive parameters
// and excitation state (spec §3, §4.4).
type GeneratorPayload struct {
	NominalV float64
	NominalF float64 // 0 => DC generator

	ExcRPM float64
	MinRPM float64
	MaxRPM float64

	StabRateU float64 // voltage excitation time constant
	StabRateF float64 // frequency excitation time constant

	InternalR float64

	EffCurve *Curve // validated monotone curve; not consumed by the core EMF equation, kept for observability

	RPM func() float64

	uFilter util.LowPass
	fFilter util.LowPass

	loadA float64 // amps accumulated by integrate; the excitation model does not read it
}

// ctrRPM is the rpm at which the generator is considered at rated speed —
// the point the excitation ramp reaches 1 (spec §4.4 "ctr_rpm").
func (g *GeneratorPayload) ctrRPM() float64 {
	return g.MinRPM
}

// targetExcitation computes the unfiltered excitation factor for rpm
// (spec §4.4): 0 below ExcRPM, a linear ramp to 1 by MinRPM, 1 while
// stabilized, and a linear excess above MaxRPM with no saturation.
func (g *GeneratorPayload) targetExcitation(rpm float64) float64 {
	switch {
	case rpm < g.ExcRPM:
		return 0
	case rpm < g.MinRPM:
		span := g.MinRPM - g.ExcRPM
		if span <= 0 {
			return 1
		}
		return (rpm - g.ExcRPM) / span
	case rpm <= g.MaxRPM:
		return 1
	default:
		span := g.MaxRPM - g.MinRPM
		if span <= 0 {
			span = 1
		}
		slope := 1.0 / (g.MinRPM - g.ExcRPM)
		if g.MinRPM <= g.ExcRPM {
			slope = 1.0 / span
		}
		return 1 + slope*(rpm-g.MaxRPM)
	}
}

// stepExcitation advances the voltage and (if AC) frequency excitation
// filters by dt and returns the instantaneous out_V and out_f.
func (g *GeneratorPayload) stepExcitation(rpm, dt float64) (outV, outF float64) {
	target := g.targetExcitation(rpm)

	g.uFilter.TimeConstant = g.StabRateU
	actualU := g.uFilter.Step(target, dt)

	ctr := g.ctrRPM()
	ratio := 0.0
	if ctr > 0 {
		ratio = rpm / ctr
	}

	outV = g.NominalV * actualU * ratio

	if g.NominalF > 0 {
		g.fFilter.TimeConstant = g.StabRateF
		actualF := g.fFilter.Step(target, dt)
		outF = g.NominalF * actualF * ratio
	}
	return outV, outF
}

func (g *GeneratorPayload) sourceConductance() float64 {
	r := g.InternalR
	if r <= 0 {
		r = 1e-9
	}
	return 1 / r
}

func (g *GeneratorPayload) isAC() bool { return g.NominalF > 0 }
