package solver_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/elecsim/pkg/netspec"
	"github.com/edp1096/elecsim/pkg/network"
	"github.com/edp1096/elecsim/pkg/solver"
)

const simpleSpec = `
BATT B1
VOLTS 24
CAPACITY 1000000
MAX_PWR 10000
CHG_R 1
INT_R 1

CB CB1
MAX_AMPS 20
HEAT_RATE 1

LOAD L1 DC
MIN_VOLTS 1
STD_LOAD 10

BUS BUSA DC
ENDPT B1
ENDPT CB1 IN

BUS BUSB DC
ENDPT CB1 OUT
ENDPT L1
`

func buildSimple(t *testing.T) *network.Network {
	t.Helper()
	descs, err := netspec.Parse(strings.NewReader(simpleSpec))
	require.NoError(t, err)
	net, err := network.Build(t.Name(), descs)
	require.NoError(t, err)
	return net
}

type capturingPublisher struct {
	mu    sync.Mutex
	calls int
}

func (p *capturingPublisher) Publish(snap []network.ComponentSnapshot) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestDriverStartTickStop(t *testing.T) {
	net := buildSimple(t)
	pub := &capturingPublisher{}

	drv := solver.New(net, solver.WithPeriod(5*time.Millisecond)).WithPublisher(pub)
	require.NoError(t, drv.CanStart())
	require.NoError(t, drv.Start())
	require.True(t, drv.IsStarted())

	require.Eventually(t, func() bool { return pub.count() > 0 }, time.Second, 5*time.Millisecond)

	drv.Stop()
	require.False(t, drv.IsStarted())
	require.NoError(t, drv.Err())
}

func TestDriverStartRejectsUnboundGenerator(t *testing.T) {
	descs, err := netspec.Parse(strings.NewReader(`
GEN GEN1
VOLTS 115
FREQ 400
EXC_RPM 500
MIN_RPM 1000
MAX_RPM 1200
INT_R 1

LOAD L1 AC
MIN_VOLTS 1
STD_LOAD 1

BUS BUSA AC
ENDPT GEN1
ENDPT L1
`))
	require.NoError(t, err)
	net, err := network.Build("gen-only", descs)
	require.NoError(t, err)

	drv := solver.New(net)
	require.Error(t, drv.CanStart())
	require.Error(t, drv.Start())
	require.False(t, drv.IsStarted())
}

func TestDriverStopIsIdempotent(t *testing.T) {
	net := buildSimple(t)
	drv := solver.New(net, solver.WithPeriod(5*time.Millisecond))
	require.NoError(t, drv.Start())
	drv.Stop()
	drv.Stop() // must not block or panic
}

func TestDriverWithMetricsRegistersCollectors(t *testing.T) {
	net := buildSimple(t)
	reg := prometheus.NewRegistry()

	drv := solver.New(net, solver.WithPeriod(5*time.Millisecond), solver.WithMetrics(reg))
	require.NoError(t, drv.Start())
	require.Eventually(t, func() bool {
		mfs, err := reg.Gather()
		return err == nil && len(mfs) > 0
	}, time.Second, 5*time.Millisecond)
	drv.Stop()
}
