package network_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/elecsim/pkg/netspec"
	"github.com/edp1096/elecsim/pkg/network"
)

func TestSetCBRejectsUnknownComponent(t *testing.T) {
	net := buildNet(t, "BATT B1\nVOLTS 24\nCAPACITY 1meg\nMAX_PWR 10k\nCHG_R 1\nINT_R 1\n\nBUS BUSA DC\nENDPT B1\n")
	err := net.SetCB("NOPE", true)
	var pe *network.PreconditionError
	require.ErrorAs(t, err, &pe)
}

func TestSetChargeRejectsOutOfRange(t *testing.T) {
	net := buildNet(t, "BATT B1\nVOLTS 24\nCAPACITY 1meg\nMAX_PWR 10k\nCHG_R 1\nINT_R 1\n\nBUS BUSA DC\nENDPT B1\n")
	require.Error(t, net.SetCharge("B1", 1.5))
	require.Error(t, net.SetCharge("B1", -0.1))
	require.NoError(t, net.SetCharge("B1", 0.5))
}

func TestSetTempRejectsOutOfRange(t *testing.T) {
	net := buildNet(t, "BATT B1\nVOLTS 24\nCAPACITY 1meg\nMAX_PWR 10k\nCHG_R 1\nINT_R 1\n\nBUS BUSA DC\nENDPT B1\n")
	require.Error(t, net.SetTemp("B1", 200))
	require.NoError(t, net.SetTemp("B1", 40))
}

func TestReadyToStartCatchesUnboundGenerator(t *testing.T) {
	net := buildNet(t, `
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
`)
	require.Error(t, net.ReadyToStart())
	require.NoError(t, net.BindRPM("GEN1", func() float64 { return 1000 }))
	require.NoError(t, net.ReadyToStart())
}

// A breaker that trips from overcurrent refuses to reclose until its
// filament temperature decays back below the cooldown hysteresis point.
func TestCBTripsAndRefusesEarlyReclose(t *testing.T) {
	net := buildNet(t, `
BATT B1
VOLTS 24
CAPACITY 1000000
MAX_PWR 100000
CHG_R 1
INT_R 0.01

CB CB1
MAX_AMPS 5
HEAT_RATE 50

LOAD L1 DC
MIN_VOLTS 1
STD_LOAD 50

BUS BUSA DC
ENDPT B1
ENDPT CB1 IN

BUS BUSB DC
ENDPT CB1 OUT
ENDPT L1
`)
	cb1 := mustComp(t, net, "CB1")

	tripped := false
	for i := 0; i < 200; i++ {
		require.NoError(t, net.Tick(0.01))
		if !cb1.Closed() {
			tripped = true
			break
		}
	}
	require.True(t, tripped, "a 50A demand on a 5A breaker must trip")

	err := net.SetCB("CB1", true)
	var pe *network.PreconditionError
	require.ErrorAs(t, err, &pe)
}

// A chain long enough to exceed a configured depth limit surfaces as a
// ProgrammingError rather than a silent truncation or a hang.
func TestPaintDepthLimitIsEnforced(t *testing.T) {
	var spec strings.Builder
	spec.WriteString("BATT B1\nVOLTS 24\nCAPACITY 1meg\nMAX_PWR 10k\nCHG_R 1\nINT_R 1\n\n")
	spec.WriteString("LOAD L1 DC\nMIN_VOLTS 1\nSTD_LOAD 1\n\n")

	const hops = 8
	for i := 0; i < hops; i++ {
		fmt.Fprintf(&spec, "CB CB%d\nMAX_AMPS 50\nHEAT_RATE 1\n\n", i)
	}

	fmt.Fprintf(&spec, "BUS BUS0 DC\nENDPT B1\nENDPT CB0 IN\n\n")
	for i := 1; i < hops; i++ {
		fmt.Fprintf(&spec, "BUS BUS%d DC\nENDPT CB%d OUT\nENDPT CB%d IN\n\n", i, i-1, i)
	}
	fmt.Fprintf(&spec, "BUS BUS%d DC\nENDPT CB%d OUT\nENDPT L1\n\n", hops, hops-1)

	descs, err := netspec.Parse(strings.NewReader(spec.String()))
	require.NoError(t, err)
	net, err := network.Build("deep", descs, network.WithDepthLimit(3))
	require.NoError(t, err)

	err = net.Tick(0.01)
	var progErr *network.ProgrammingError
	require.ErrorAs(t, err, &progErr)
}
