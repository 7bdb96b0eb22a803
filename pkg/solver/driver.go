package solver

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edp1096/elecsim/pkg/network"
)

type driverState int32

const (
	stateStopped driverState = iota
	stateRunning
	stateTerminated
)

// Publisher is the out-of-scope network-replication transport spec.md §1
// names as an external collaborator: a host wires an implementation to
// ship every tick's snapshot elsewhere (over a wire protocol, a shared
// memory segment, whatever the deployment needs). Driver never ships one.
type Publisher interface {
	Publish([]network.ComponentSnapshot)
}

// SwitchExporter is the out-of-scope platform dataref/switch-export
// collaborator spec.md §1 names; a host wires an implementation that
// forwards component state into a flight-sim dataref table or similar.
// Driver never ships one.
type SwitchExporter interface {
	ExportSwitch(name string, closed bool)
}

// Driver runs one Network's tick loop on a dedicated goroutine at a fixed
// period, scaled by an optional time factor (spec §4.2 "Tick Scheduler").
// Start is rejected unless the network passes ReadyToStart; Stop blocks
// until the loop goroutine has exited.
type Driver struct {
	cfg Config
	n   *network.Network

	publisher Publisher
	switcher  SwitchExporter

	state   atomic.Int32
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex // guards err and lastClosed
	err     error
	lastClosed map[string]bool
}

// New builds a Driver for an already-constructed Network.
func New(n *network.Network, opts ...Option) *Driver {
	cfg := newConfig(opts...)
	if cfg.depthLimit > 0 {
		n.SetDepthLimit(cfg.depthLimit)
	}
	return &Driver{cfg: cfg, n: n}
}

// WithPublisher attaches a network-replication sink; nil clears it.
func (d *Driver) WithPublisher(p Publisher) *Driver { d.publisher = p; return d }

// WithSwitchExporter attaches a platform dataref/switch sink; nil clears it.
func (d *Driver) WithSwitchExporter(s SwitchExporter) *Driver { d.switcher = s; return d }

// CanStart reports whether the wrapped network currently satisfies the
// startup precondition (every generator has an rpm callback, every
// non-standard load has a demand callback bound) without attempting Start.
func (d *Driver) CanStart() error { return d.n.ReadyToStart() }

// IsStarted reports whether the tick loop goroutine is currently running.
func (d *Driver) IsStarted() bool { return driverState(d.state.Load()) == stateRunning }

// Start launches the tick-loop goroutine. It fails without starting
// anything if CanStart would fail, or if the driver was already started.
func (d *Driver) Start() error {
	if err := d.CanStart(); err != nil {
		return err
	}
	if !d.state.CompareAndSwap(int32(stateStopped), int32(stateRunning)) {
		return fmt.Errorf("solver: driver already started")
	}
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	go d.run()
	return nil
}

// Stop signals the tick loop to exit and blocks until it has. Calling Stop
// on a driver that was never started, or twice, is a no-op.
func (d *Driver) Stop() {
	if !d.state.CompareAndSwap(int32(stateRunning), int32(stateTerminated)) {
		return
	}
	close(d.stopCh)
	<-d.doneCh
	d.state.Store(int32(stateStopped))
}

// Err returns the fatal ProgrammingError that ended the tick loop, if Tick
// ever returned one; nil otherwise. Safe to call at any time.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Driver) run() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.cfg.period)
	defer ticker.Stop()

	dt := d.cfg.period.Seconds() * d.cfg.timeFactor
	last := time.Now()

	for {
		select {
		case <-d.stopCh:
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last).Seconds() * d.cfg.timeFactor
			last = now
			if elapsed <= 0 {
				elapsed = dt
			}
			d.tickOnce(elapsed)
			if driverState(d.state.Load()) == stateTerminated {
				return
			}
		}
	}
}

func (d *Driver) tickOnce(dt float64) {
	start := time.Now()
	err := d.n.Tick(dt)
	if d.cfg.metrics != nil {
		d.cfg.metrics.tickDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		d.mu.Lock()
		d.err = err
		d.mu.Unlock()
		if d.cfg.logger != nil {
			d.cfg.logger.Printf("fatal: tick loop terminating: %v", err)
		}
		d.state.Store(int32(stateTerminated))
		return
	}

	snap := d.n.Snapshot()
	if d.cfg.metrics != nil {
		d.cfg.metrics.visitedNodes.Set(float64(len(snap)))
		d.observeMetricsLocked(snap)
	}
	if d.publisher != nil {
		d.publisher.Publish(snap)
	}
	if d.switcher != nil {
		d.exportSwitches(snap)
	}
}

// observeMetricsLocked updates painted-node count and counts any CB/Fuse
// that transitioned from closed to open since the last observed snapshot
// (a trip, whether auto-thermal or externally commanded).
func (d *Driver) observeMetricsLocked(snap []network.ComponentSnapshot) {
	painted := 0
	for _, s := range snap {
		if s.State.InV > 0 {
			painted++
		}
	}
	d.cfg.metrics.paintedNodes.Set(float64(painted))

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastClosed == nil {
		d.lastClosed = make(map[string]bool, len(snap))
	}
	for _, s := range snap {
		if s.Kind != network.KindCB && s.Kind != network.KindFuse {
			continue
		}
		closed, _ := d.n.ByName(s.Name)
		wasClosed, seen := d.lastClosed[s.Name]
		isClosed := closed.Closed()
		if seen && wasClosed && !isClosed {
			d.cfg.metrics.trips.Inc()
		}
		d.lastClosed[s.Name] = isClosed
	}
}

func (d *Driver) exportSwitches(snap []network.ComponentSnapshot) {
	for _, s := range snap {
		if s.Kind != network.KindCB && s.Kind != network.KindFuse {
			continue
		}
		c, ok := d.n.ByName(s.Name)
		if !ok {
			continue
		}
		d.switcher.ExportSwitch(s.Name, c.Closed())
	}
}
