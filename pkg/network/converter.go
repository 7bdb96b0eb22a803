package network

// ConverterPayload backs TRU, Inverter, and Charger components — all three
// share the same propagation and accounting rules (spec §4.5, §4.6) and
// differ only in whether the AC side is their input or output, whether
// they carry a frequency on the output, and whether they feed a battery.
type ConverterPayload struct {
	InNominalV  float64
	OutNominalV float64
	OutNominalF float64 // > 0 only for an inverter's AC output
	InternalR   float64
	EffCurve    *Curve
	CurrLim     float64 // 0 means unlimited

	// ACIsInput is true for a TRU or AC-fed charger (AC in, DC out) and
	// false for an inverter (DC in, AC out).
	ACIsInput bool

	// IsCharger marks a TRU or inverter that also charges a linked
	// battery (spec §6: "optional CHARGER with CURR_LIM and battery
	// link" — a modifier on TRU/INV, not a distinct component kind).
	IsCharger bool

	// BattLink, set only when IsCharger, is the battery this converter
	// feeds RechgW into during integrate.
	BattLink *Component

	// outV is computed during paint and is this tick's instantaneous
	// output voltage, scaled proportionally to the input voltage offered
	// (spec §4.5: "out_V ... scaled by (N.in_V / nominal in_V)").
	outV float64

	// overCurrent records a current-limit overrun so the next tick's paint
	// can reflect it as a voltage sag upstream (spec §4.6: "any excess is
	// reflected as voltage sag upstream on the next tick").
	overCurrent bool

	// pushedA/pushedW track how much in_A/RechgW this converter has already
	// sent upstream/into its battery link so far this tick. A converter
	// feeding several downstream loads is re-entered by integrateUp once per
	// load (each arrives via a different path to the same output bus), so
	// integrateConverter must push only the delta since the last visit
	// rather than the whole cumulative total every time. Reset at tick
	// reset alongside every other per-tick working field.
	pushedA, pushedW float64
}

// scaledOutput computes the converter's instantaneous output voltage given
// the input voltage it is being painted with.
func (c *ConverterPayload) scaledOutput(inV float64) float64 {
	if c.InNominalV <= 0 {
		return 0
	}
	ratio := inV / c.InNominalV
	v := c.OutNominalV * ratio
	if c.overCurrent {
		// Reflect last tick's current-limit overrun as an output sag —
		// a simple proportional derate rather than a full feedback solve.
		v *= 0.85
	}
	return v
}

// isOutputAC reports whether the DC-or-AC side this converter delivers to
// is AC-typed: true for an inverter, false for a TRU or AC-fed charger.
func (c *ConverterPayload) isOutputAC() bool { return !c.ACIsInput }

// efficiency looks up the curve at outW, clamping to the curve's domain
// (callers that need to flag true extrapolation check InRange first).
func (c *ConverterPayload) efficiency(outW float64) float64 {
	if c.EffCurve == nil {
		return 1
	}
	return c.EffCurve.Lookup(outW)
}
