package network

import (
	"sync"

	"github.com/edp1096/elecsim/internal/consts"
)

// BatteryPayload holds a battery's constitutive parameters and the
// stateful quantities the solver integrates each tick (spec §3, §4.4).
// ChargeFrac and TempK are set by the external SetCharge/SetTemp mutators
// as well as the solver goroutine, so both are guarded by mu (spec §5
// "small, per-purpose mutex").
type BatteryPayload struct {
	NominalV  float64
	CapacityJ float64 // at reference temperature
	MaxPwr    float64
	ChargeR   float64 // charging-path resistance
	InternalR float64

	mu         sync.Mutex
	ChargeFrac float64 // [0,1]
	TempK      float64

	// RechgW is the charging power (watts) an external charger delivered
	// in the last integrate pass; integrateCharge multiplies it by dt and
	// then resets it to 0.
	RechgW float64

	// loadA is the amps this battery supplied last tick, fed back from
	// integrate to shape this tick's terminal-voltage sag (spec §4.6:
	// "this becomes the source's load for the next source-update filter
	// step").
	loadA float64
}

// emf returns the open-circuit terminal voltage implied by charge state
// and temperature, before current-dependent sag.
func (b *BatteryPayload) emf() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.emfLocked()
}

// setChargeFrac and setTempK apply an external mutator's request under
// mu; chargeFrac returns the current value for observers.
func (b *BatteryPayload) setChargeFrac(frac float64) {
	b.mu.Lock()
	b.ChargeFrac = frac
	b.mu.Unlock()
}

func (b *BatteryPayload) setTempK(k float64) {
	b.mu.Lock()
	b.TempK = k
	b.mu.Unlock()
}

func (b *BatteryPayload) chargeFrac() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ChargeFrac
}

func (b *BatteryPayload) tempK() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.TempK
}

// sourceConductance is 1/R_internal, used by the integrate phase to split
// current among multiple equal-voltage attributed sources (spec §4.6,
// Open Question: EMF x (1/R) adopted consistently).
func (b *BatteryPayload) sourceConductance() float64 {
	r := b.InternalR
	if r < consts.MinConductance {
		r = consts.MinConductance
	}
	return 1 / r
}

// terminalVoltage is the instantaneous source-update output voltage: EMF
// depressed as last tick's load approaches MaxPwr (spec §4.4: "depresses
// as current approaches max_pwr and as temperature drops" — the
// temperature term already lives in emf()).
func (b *BatteryPayload) terminalVoltage() float64 {
	emf := b.emf()
	relP := 0.0
	if b.MaxPwr > 0 {
		relP = clamp01((b.loadA * emf) / b.MaxPwr)
	}
	sag := 1 - 0.5*relP*relP
	v := emf * sag
	if v < 0 {
		v = 0
	}
	return v
}

// integrateCharge updates ChargeFrac by the amps discharged (or energy
// recharged) over dt, scaled by temperature-adjusted capacity, and clears
// RechgW for the next tick.
func (b *BatteryPayload) integrateCharge(dt float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	capAdj := b.CapacityJ * clamp(b.TempK/consts.RoomTempK, 0.4, 1.0)
	if capAdj < 1e-9 {
		capAdj = 1e-9
	}
	dischargedW := b.loadA * b.emfLocked()
	netW := dischargedW - b.RechgW
	b.ChargeFrac -= (netW * dt) / capAdj
	b.ChargeFrac = clamp01(b.ChargeFrac)
	b.RechgW = 0
}

// emfLocked is emf's body without its own locking, for callers that
// already hold mu.
func (b *BatteryPayload) emfLocked() float64 {
	chargeFactor := 0.7 + 0.3*clamp01(b.ChargeFrac)
	tempFactor := clamp(b.TempK/consts.RoomTempK, 0.5, 1.05)
	return b.NominalV * chargeFactor * tempFactor
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
