package network

import "math"

// LoadFunc is the callback a host binds to a non-standard load. It must be
// wait-free and re-entrant (spec §9) and returns watts if the load is
// Stabilized, amps otherwise.
type LoadFunc func() float64

// LoadPayload holds a load's constitutive parameters and its virtual
// input-capacitor state (spec §3, §4.6).
type LoadPayload struct {
	AC         bool
	Stabilized bool
	MinV       float64

	IncapC float64 // farads
	IncapR float64 // ohms
	Leak   float64 // coulombs/sec

	StdLoad  float64 // constant fallback demand (W if Stabilized, A otherwise)
	Callback LoadFunc

	incapV float64
}

// demandAmps converts the load's callback/std-load power or current figure
// into an amps demand at the given effective voltage (spec §4.6: "evaluate
// L's callback ... Convert to amps at effective V = max(in_V, min_V)").
func (l *LoadPayload) demandAmps(effectiveV float64) float64 {
	var p float64
	if l.Callback != nil {
		p = l.Callback()
	} else {
		p = l.StdLoad
	}
	if l.Stabilized {
		if effectiveV <= 0 {
			return 0
		}
		return p / effectiveV
	}
	return p
}

// stepIncap advances the virtual input capacitor by dt given this tick's
// in_V, returning the additional inrush current the capacitor itself draws
// (spec §4.6: "Add incap inrush: delta V over tick x C / R gives an
// additional charging current; on sudden loss of in_V, incap discharges
// through leak and into the actual load").
func (l *LoadPayload) stepIncap(inV, dt float64) (inrushA float64) {
	if l.IncapC <= 0 {
		l.incapV = inV
		return 0
	}

	if inV >= l.MinV && inV > 0 {
		dv := inV - l.incapV
		inrushA = l.IncapC * dv / dt
		l.incapV = inV
		return inrushA
	}

	// De-energized: leak at the specified rate and decay through IncapR.
	leakDV := (l.Leak * dt) / l.IncapC
	l.incapV -= leakDV
	if l.IncapR > 0 {
		tau := l.IncapR * l.IncapC
		if tau > 0 {
			l.incapV *= math.Exp(-dt / tau)
		}
	}
	if l.incapV < 0 {
		l.incapV = 0
	}
	return 0
}

// poweredByIncap reports whether the capacitor alone still holds the load
// above its minimum voltage, even though in_V has collapsed (spec §8 S6).
func (l *LoadPayload) poweredByIncap() bool {
	return l.incapV >= l.MinV
}
