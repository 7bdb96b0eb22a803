package network

import (
	"sync"

	"github.com/edp1096/elecsim/internal/consts"
)

// Kind tags the variant a Component carries. The solver dispatches on Kind
// with a switch rather than through per-kind virtual methods, keeping the
// hot paint/integrate paths monomorphic (spec §4.2 design notes).
type Kind int

const (
	KindBattery Kind = iota
	KindGenerator
	KindTRU
	KindInverter
	KindLoad
	KindBus
	KindCB
	KindFuse
	KindShunt
	KindTie
	KindDiode
)

func (k Kind) String() string {
	switch k {
	case KindBattery:
		return "BATT"
	case KindGenerator:
		return "GEN"
	case KindTRU:
		return "TRU"
	case KindInverter:
		return "INV"
	case KindLoad:
		return "LOAD"
	case KindBus:
		return "BUS"
	case KindCB:
		return "CB"
	case KindFuse:
		return "FUSE"
	case KindShunt:
		return "SHUNT"
	case KindTie:
		return "TIE"
	case KindDiode:
		return "DIODE"
	default:
		return "UNKNOWN"
	}
}

// State is the per-tick observable snapshot of a component: both the
// worker-visible (rw) and externally-published (ro) buffers share this
// shape (spec §3 envelope, §4.8).
type State struct {
	InV, OutV  float64
	InA, OutA  float64
	ShortA     float64
	InW, OutW  float64
	InF, OutF  float64
	Failed     bool
	Shorted    bool
	LeakFactor float64
}

// Attribution records that a node is currently energized, at voltage EMF,
// by Source. Up to consts.MaxAttributions are kept simultaneously for a DC
// node shared by equal-voltage sources (spec §4.5).
type Attribution struct {
	Source *Component
	EMF    float64
}

// Component is the tagged-union envelope shared by every network element
// (spec §3). Exactly one of the payload fields below is non-nil, selected
// by Kind.
type Component struct {
	Name          string
	Kind          Kind
	AutoGenerated bool
	Location      string
	Hints         map[string]string // GUI/diagramming hints, opaque to the solver

	Net *Network
	idx int // this component's own index into Net.components

	// Endpoints holds non-owning indices into Net.components. Its meaning
	// depends on Kind:
	//   Bus:                     ordered device endpoints (connection order preserved)
	//   TRU/Inverter/CB/Fuse/Shunt/Diode: exactly two bus endpoints, [0]=IN [1]=OUT
	//   Battery/Generator/Load/Tie:       every bus it is wired to, in declaration order
	Endpoints []int

	mu sync.Mutex // guards rw->ro publish; never held across a whole tick
	rw State
	ro State

	// failed persists across ticks until MarkFailed toggles it again; it
	// is copied into rw.Failed at the start of every reset so paint sees
	// a stable value for the whole tick (spec §3 "mutated only through
	// the defined mutator surface").
	failed bool

	// srcSet is the rw-side attribution set, rebuilt every tick during
	// paint. external is the published copy observers read. srcVia
	// parallels srcSet: srcVia[i] is the index of the neighbor N was
	// painted from for attribution i, used only by integrate to find the
	// upstream direction for each contributing source; it carries no
	// externally observable meaning and is never published.
	srcSet   []Attribution
	srcVia   []int
	external []Attribution

	Battery   *BatteryPayload
	Generator *GeneratorPayload
	Conv      *ConverterPayload
	Load      *LoadPayload
	Bus       *BusPayload
	CB        *CBPayload
	Shunt     *ShuntPayload
	Tie       *TiePayload
	Diode     *DiodePayload
}

func newComponent(name string, kind Kind) *Component {
	return &Component{
		Name:  name,
		Kind:  kind,
		Hints: make(map[string]string),
	}
}

// publish copies rw into ro and the rw attribution set into the externally
// observable one, under the component's own small lock (spec §4.8).
func (c *Component) publish() {
	c.mu.Lock()
	c.ro = c.rw
	c.external = append(c.external[:0], c.srcSet...)
	c.mu.Unlock()
}

func (c *Component) snapshotState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ro
}

// --- Observer surface (spec §6 "Query") ---

func (c *Component) InVolts() float64  { return c.snapshotState().InV }
func (c *Component) OutVolts() float64 { return c.snapshotState().OutV }
func (c *Component) InAmps() float64   { return c.snapshotState().InA }
func (c *Component) OutAmps() float64  { return c.snapshotState().OutA }
func (c *Component) InWatts() float64  { return c.snapshotState().InW }
func (c *Component) OutWatts() float64 { return c.snapshotState().OutW }
func (c *Component) InFreq() float64   { return c.snapshotState().InF }
func (c *Component) OutFreq() float64  { return c.snapshotState().OutF }
func (c *Component) Failed() bool      { return c.snapshotState().Failed }
func (c *Component) Shorted() bool     { return c.snapshotState().Shorted }

// Powered reports whether the component currently observes a non-zero
// input voltage.
func (c *Component) Powered() bool { return c.snapshotState().InV > 0 }

// Attributions returns the last-published set of sources energizing this
// node (copy; safe to retain).
func (c *Component) Attributions() []Attribution {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Attribution, len(c.external))
	copy(out, c.external)
	return out
}

// ChargeFrac exposes a battery's charge fraction in [0,1], or 0 for any
// other kind.
func (c *Component) ChargeFrac() float64 {
	if c.Kind != KindBattery || c.Battery == nil {
		return 0
	}
	return c.Battery.chargeFrac()
}

// TempC exposes a battery's temperature in degrees Celsius, or 0 for any
// other kind.
func (c *Component) TempC() float64 {
	if c.Kind != KindBattery || c.Battery == nil {
		return 0
	}
	return c.Battery.tempK() - consts.KELVIN
}

// Temp exposes a CB/Fuse's filament temperature in [0,1], or 0 for any
// other kind.
func (c *Component) Temp() float64 {
	if (c.Kind != KindCB && c.Kind != KindFuse) || c.CB == nil {
		return 0
	}
	return c.CB.snapshotTemp()
}

// Closed reports whether a CB/Fuse's last commanded state was closed; any
// other kind reports false.
func (c *Component) Closed() bool {
	if (c.Kind != KindCB && c.Kind != KindFuse) || c.CB == nil {
		return false
	}
	return c.CB.snapshotCurSet()
}

// TiedFlags exposes a tie's per-endpoint connection flags in endpoint
// order, or nil for any other kind.
func (c *Component) TiedFlags() []bool {
	if c.Kind != KindTie || c.Tie == nil {
		return nil
	}
	c.Tie.mu.Lock()
	defer c.Tie.mu.Unlock()
	out := make([]bool, len(c.Tie.CurTied))
	copy(out, c.Tie.CurTied)
	return out
}

// EndpointName returns the name of this component's i-th bus endpoint, or
// "" if i is out of range — used by persist to list a tie's endpoints by
// name rather than index (indices aren't stable across a re-parse of the
// declarative spec).
func (c *Component) EndpointName(i int) string {
	if i < 0 || i >= len(c.Endpoints) {
		return ""
	}
	return c.Net.components[c.Endpoints[i]].Name
}

// IncapVolts exposes a load's virtual input-capacitor voltage, or 0 for any
// other kind.
func (c *Component) IncapVolts() float64 {
	if c.Kind != KindLoad || c.Load == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Load.incapV
}

// clampAttributions truncates set and via together so a node's two parallel
// attribution records never drift apart in length: srcVia[i] must keep
// naming the neighbor srcSet[i] was painted from (spec §4.5 "up to K
// simultaneous attributions"; a K+1-th equal-voltage arrival is simply not
// preserved, not appended to one slice and dropped from the other).
func clampAttributions(set []Attribution, via []int) ([]Attribution, []int) {
	if len(set) <= consts.MaxAttributions {
		return set, via
	}
	return set[:consts.MaxAttributions], via[:consts.MaxAttributions]
}

// tieVoltEps is the tolerance used when comparing two source voltages for
// the "equal-voltage shared attribution" rule (spec §4.5).
const tieVoltEps = 1e-9

// paintVisit applies the attribution rule for one paint arrival at c from
// source, offering volt (isAC marks whether this arrival is on an AC
// segment) via the neighbor at viaIdx. It reports whether the traversal
// should continue past c (proceed) and whether an AC double-attribution
// conflict was just recorded (conflict), per spec §4.5 and §8 invariant 2.
func (c *Component) paintVisit(source *Component, volt float64, isAC bool, viaIdx int) (proceed, conflict bool) {
	for _, a := range c.srcSet {
		if a.Source == source {
			return false, false
		}
	}

	maxEMF := 0.0
	has := len(c.srcSet) > 0
	for _, a := range c.srcSet {
		if a.EMF > maxEMF {
			maxEMF = a.EMF
		}
	}

	switch {
	case has && volt < maxEMF-tieVoltEps:
		return false, false

	case has && volt <= maxEMF+tieVoltEps:
		if isAC {
			c.rw.Shorted = true
			return false, true
		}
		c.srcSet, c.srcVia = clampAttributions(
			append(c.srcSet, Attribution{Source: source, EMF: volt}),
			append(c.srcVia, viaIdx),
		)

	default:
		c.srcSet = []Attribution{{Source: source, EMF: volt}}
		c.srcVia = []int{viaIdx}
	}

	c.rw.InV = volt
	return true, false
}
