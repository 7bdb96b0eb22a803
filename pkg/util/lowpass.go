// Package util collects small numeric and formatting helpers shared by the
// network and solver packages, in the spirit of the teacher's own pkg/util
// (value formatting, integration coefficients).
package util

// LowPass is a single-pole discrete low-pass filter used to lag a fast
// target signal behind a slower actual one — e.g. a generator's excitation
// factor tracking rpm changes (spec §4.4's "CSD simulation").
type LowPass struct {
	TimeConstant float64 // seconds; 0 means track the target instantly
	value        float64
	initialized  bool
}

// Step advances the filter by dt toward target and returns the new value.
func (f *LowPass) Step(target, dt float64) float64 {
	if !f.initialized {
		f.value = target
		f.initialized = true
		return f.value
	}
	if f.TimeConstant <= 0 || dt <= 0 {
		f.value = target
		return f.value
	}
	alpha := dt / (f.TimeConstant + dt)
	f.value += (target - f.value) * alpha
	return f.value
}

// Value returns the filter's current output without advancing it.
func (f *LowPass) Value() float64 { return f.value }

// Reset clears the filter so the next Step snaps directly to its target.
func (f *LowPass) Reset() { f.initialized = false; f.value = 0 }
