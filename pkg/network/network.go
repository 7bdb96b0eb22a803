// Package network implements the declarative network model and the
// physics solver's data plane: component construction and validation,
// the per-tick reset/source-update/paint/integrate/thermal pipeline, and
// the two-view (rw/ro) publication discipline (spec §3-§5, §8).
package network

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"

	"github.com/katalvlaran/lvlath/core"

	"github.com/edp1096/elecsim/internal/consts"
)

// Network owns every component built from one declarative description. It
// is the only owner; every cross-component reference is a non-owning
// index into components (spec §3 "Ownership").
type Network struct {
	name       string
	components []*Component
	byName     map[string]*Component
	idxByName  map[string]int

	depthLimit int
	logger     *log.Logger

	// rng is this network's private noise source; never the package-level
	// math/rand default (spec §9 "Global state").
	rng       *rand.Rand
	noiseStdV float64

	// topo is a construction-time structural shadow of the network: one
	// vertex per component and one edge per bus-device wiring, so an edge
	// the graph library refuses fails Build. The bus-to-bus and fan-in
	// checks are made explicitly in wireEndpoints. Never consulted on the
	// tick hot path.
	topo *core.Graph

	publishMu sync.Mutex // held only for the duration of Snapshot's copy

	tickNo uint64

	pendingBattLinks []pendingBattLink
}

type pendingBattLink struct {
	conv     *Component
	battName string
}

// Option configures a Network at construction time.
type Option func(*Network)

// WithDepthLimit overrides the default paint/integrate recursion bound.
func WithDepthLimit(n int) Option {
	return func(net *Network) { net.depthLimit = n }
}

// WithLogger attaches a per-network diagnostic logger. Each network gets
// its own *log.Logger instance rather than writing through the package-
// level log default, so a process hosting several networks can tag each
// one's output independently (spec §9 "avoid any process-wide
// singletons").
func WithLogger(l *log.Logger) Option {
	return func(net *Network) { net.logger = l }
}

// Build constructs and validates a Network from a list of descriptors
// (spec §4.1). It fails with a *SpecError naming the first violating
// descriptor; no Network is returned on failure.
func Build(name string, descriptors []Descriptor, opts ...Option) (*Network, error) {
	net := &Network{
		name:       name,
		byName:     make(map[string]*Component),
		idxByName:  make(map[string]int),
		depthLimit: consts.MaxPaintDepth,
		logger:     log.New(os.Stderr, "["+name+"] ", log.LstdFlags),
		rng:        rand.New(rand.NewSource(1)),
		topo:       core.NewGraph(),
	}
	for _, opt := range opts {
		opt(net)
	}

	descriptors = net.expandLoadBreakers(descriptors)

	if err := net.allocate(descriptors); err != nil {
		return nil, err
	}
	if err := net.resolveBattLinks(); err != nil {
		return nil, err
	}
	if err := net.wireEndpoints(descriptors); err != nil {
		return nil, err
	}
	net.finalizeTies()
	if err := net.validate(descriptors); err != nil {
		return nil, err
	}

	return net, nil
}

// MustBuild is Build but panics on error; useful for tests and examples
// building a literal network inline.
func MustBuild(name string, descriptors []Descriptor, opts ...Option) *Network {
	net, err := Build(name, descriptors, opts...)
	if err != nil {
		panic(err)
	}
	return net
}

// SetNoise configures per-network Gaussian jitter applied to generator rpm
// readings and battery terminal voltage (spec §9 "random seeds for noise
// injection are per-network"). The same stddevV is used in volts for the
// battery terminal voltage and in rpm for the raw generator rpm reading;
// seed reseeds this network's private rand source.
func (net *Network) SetNoise(stddevV float64, seed int64) {
	net.noiseStdV = stddevV
	net.rng = rand.New(rand.NewSource(seed))
}

func (net *Network) Name() string { return net.name }

// SetDepthLimit overrides the paint/integrate recursion bound after
// construction (solver.WithDepthLimit applies it before the first Tick).
func (net *Network) SetDepthLimit(n int) {
	if n > 0 {
		net.depthLimit = n
	}
}

// ByName looks up a component by its stable identifier.
func (net *Network) ByName(name string) (*Component, bool) {
	c, ok := net.byName[name]
	return c, ok
}

// Walk calls fn for every component in construction order; returning false
// stops the walk early.
func (net *Network) Walk(fn func(*Component) bool) {
	for _, c := range net.components {
		if !fn(c) {
			return
		}
	}
}

func (net *Network) mustFind(name string) (*Component, error) {
	c, ok := net.byName[name]
	if !ok {
		return nil, fmt.Errorf("endpoint %q does not resolve to any component", name)
	}
	return c, nil
}
