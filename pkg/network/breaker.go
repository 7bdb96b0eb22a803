package network

import "sync"

// CBPayload holds a circuit breaker's (or fuse's) rating and the thermal
// state that drives auto-trip (spec §3, §4.7). CurSet and Temp are read by
// external mutators/observers as well as the solver goroutine, so both are
// guarded by mu; everything else is solver-exclusive (spec §5 "small,
// per-purpose mutex on transactional handoff").
type CBPayload struct {
	MaxAmps  float64
	HeatRate float64 // scales how fast filament temperature rises
	TriPhase bool
	Fuse     bool

	mu sync.Mutex

	// CurSet is the caller-visible commanded state; wkSet is the
	// worker-visible snapshot taken at reset (spec §4.3, §5 "two-phase
	// tie/CB state").
	CurSet bool
	wkSet  bool

	Temp float64 // [0,1], 1 == tripped

	// cooldownThreshold is the hysteresis point Temp must decay below
	// before a tripped breaker may be reclosed (spec §4.7: "refuses to
	// close until temp has decayed below a hysteresis threshold").
	cooldownThreshold float64
}

const defaultCBCooldownThreshold = 0.2

// stepThermal deposits heat proportional to (inA/MaxAmps)^2 and cools
// exponentially otherwise, auto-tripping wkSet when Temp saturates. It
// runs only on the solver goroutine but still takes mu because it may
// write CurSet and Temp, both externally observable. It reports whether
// this call is the one that tripped the breaker, for the caller to log.
func (cb *CBPayload) stepThermal(inA, dt float64) (tripped bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.MaxAmps <= 0 {
		return false
	}
	ratio := inA / cb.MaxAmps
	if ratio > 0 {
		q := ratio * ratio * cb.HeatRate * dt
		cb.Temp += q
	}
	if ratio < 1 {
		// Exponential cooling toward 0 when under-rated; the rate itself
		// also governs cooldown speed so a slow-heating CB cools slowly.
		rate := cb.HeatRate
		if rate <= 0 {
			rate = 1
		}
		cb.Temp -= cb.Temp * rate * dt * 0.5
	}
	if cb.Temp > 1 {
		cb.Temp = 1
	}
	if cb.Temp < 0 {
		cb.Temp = 0
	}

	if cb.Temp >= 1.0 && cb.wkSet {
		cb.wkSet = false
		cb.CurSet = false
		return true
	}
	return false
}

// canClose reports whether the breaker's filament temperature is below the
// cooldown threshold, i.e. whether a close request is accepted (spec §4.7
// hysteresis). It does not distinguish a tripped breaker from one that is
// merely warm.
func (cb *CBPayload) canClose() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	threshold := cb.cooldownThreshold
	if threshold <= 0 {
		threshold = defaultCBCooldownThreshold
	}
	return cb.Temp < threshold
}

// snapshotCurSet returns the caller-visible commanded state under mu.
func (cb *CBPayload) snapshotCurSet() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.CurSet
}

// snapshotTemp returns the filament temperature under mu.
func (cb *CBPayload) snapshotTemp() float64 {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.Temp
}

// setCurSet applies an external commander's request under mu; the solver
// copies CurSet into wkSet at the next reset (spec §4.3).
func (cb *CBPayload) setCurSet(v bool) {
	cb.mu.Lock()
	cb.CurSet = v
	cb.mu.Unlock()
}

// syncWkFromCur copies CurSet into wkSet at tick reset under mu.
func (cb *CBPayload) syncWkFromCur() {
	cb.mu.Lock()
	cb.wkSet = cb.CurSet
	cb.mu.Unlock()
}
