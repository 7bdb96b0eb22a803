// Package consts holds the physical and default-tuning constants shared by
// the network and solver packages.
package consts

const (
	KELVIN = 273.15 // 0 degC in Kelvin

	RoomTempK = 288.15 // 15 degC, default ambient when none is configured
)

const (
	// DefaultTickPeriodMS is the nominal solver tick period (20 Hz).
	DefaultTickPeriodMS = 50

	// MaxAttributions bounds the number of simultaneous source attributions
	// a single node may carry (spec §3 envelope, "up to K").
	MaxAttributions = 8

	// MaxBusMembership bounds how many buses a single device may appear in.
	MaxBusMembership = 8

	// MaxPaintDepth bounds the paint/integrate traversal recursion (spec §4.5).
	MaxPaintDepth = 100

	// MinConductance is the floor applied to internal resistances and
	// efficiency denominators to avoid division blow-ups without disguising
	// a genuine zero as a short.
	MinConductance = 1e-9
)
