package network_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/elecsim/pkg/netspec"
	"github.com/edp1096/elecsim/pkg/network"
)

// buildNet parses a declarative literal and builds the network it
// describes, failing the test immediately on any error.
func buildNet(t *testing.T, spec string) *network.Network {
	t.Helper()
	descs, err := netspec.Parse(strings.NewReader(spec))
	require.NoError(t, err)
	net, err := network.Build(t.Name(), descs)
	require.NoError(t, err)
	return net
}

func mustComp(t *testing.T, net *network.Network, name string) *network.Component {
	t.Helper()
	c, ok := net.ByName(name)
	require.True(t, ok, "component %q not found", name)
	return c
}

// S1: a 24V battery with 1ohm internal R feeds a closed 20A breaker into a
// 10A constant-current DC load.
func TestScenarioS1_BatteryIntoClosedBreakerLoad(t *testing.T) {
	net := buildNet(t, `
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
`)

	b1 := mustComp(t, net, "B1")
	cb1 := mustComp(t, net, "CB1")
	l1 := mustComp(t, net, "L1")

	chargeBefore := b1.ChargeFrac()
	for i := 0; i < 3; i++ {
		require.NoError(t, net.Tick(0.01))
	}

	require.InDelta(t, 24.0, l1.OutVolts(), 0.1)
	require.InDelta(t, 10.0, l1.InAmps(), 1e-6)
	require.InDelta(t, 10.0, l1.OutAmps(), 1e-6)
	require.InDelta(t, 10.0, cb1.InAmps(), 1e-6)
	require.InDelta(t, 10.0, b1.OutAmps(), 1e-6)
	require.Less(t, b1.ChargeFrac(), chargeBefore, "battery charge must decrease while discharging")
}

// S2: same topology as S1 but the breaker is open: the load sees nothing
// and the battery supplies no current.
func TestScenarioS2_OpenBreakerStarvesLoad(t *testing.T) {
	net := buildNet(t, `
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
`)

	require.NoError(t, net.SetCB("CB1", false))

	b1 := mustComp(t, net, "B1")
	l1 := mustComp(t, net, "L1")

	for i := 0; i < 3; i++ {
		require.NoError(t, net.Tick(0.01))
	}

	require.Equal(t, 0.0, l1.InVolts())
	require.Equal(t, 0.0, l1.InAmps())
	require.Equal(t, 0.0, b1.OutAmps())
}

// S3: a 115V 400Hz generator at nominal rpm feeds a TRU (flat 0.9
// efficiency) into a 28V, 56W stabilized DC load.
func TestScenarioS3_GeneratorThroughTRUIntoStabilizedLoad(t *testing.T) {
	net := buildNet(t, `
GEN GEN1
VOLTS 115
FREQ 400
EXC_RPM 500
MIN_RPM 1000
MAX_RPM 1200
STAB_RATE_U 0.01
STAB_RATE_F 0.01
INT_R 0.5

TRU TRU1
IN_VOLTS 115
OUT_VOLTS 28
CURVEPT EFF 0 0.9
CURVEPT EFF 1000 0.9

LOAD L2 DC
MIN_VOLTS 1
STAB
STD_LOAD 56

BUS BUSAC AC
ENDPT GEN1
ENDPT TRU1 IN

BUS BUSDC DC
ENDPT TRU1 OUT
ENDPT L2
`)

	require.NoError(t, net.BindRPM("GEN1", func() float64 { return 1000 }))

	tru1 := mustComp(t, net, "TRU1")
	l2 := mustComp(t, net, "L2")

	for i := 0; i < 3; i++ {
		require.NoError(t, net.Tick(0.01))
	}

	require.InDelta(t, 56.0, l2.OutWatts(), 1.0)
	require.InDelta(t, 2.0, tru1.OutAmps(), 0.05)
	require.InDelta(t, 0.54, tru1.InAmps(), 0.01)
}

// S4: a three-way tie starts untied; tying A+B reaches B but not C, and
// tying all reaches C too.
func TestScenarioS4_TieConnectsBusesAsCommanded(t *testing.T) {
	net := buildNet(t, `
BATT B1
VOLTS 24
CAPACITY 1000000
MAX_PWR 10000
CHG_R 1
INT_R 1

TIE TIE1

BUS BUS_A DC
ENDPT B1
ENDPT TIE1

BUS BUS_B DC
ENDPT TIE1

BUS BUS_C DC
ENDPT TIE1
`)

	busB := mustComp(t, net, "BUS_B")
	busC := mustComp(t, net, "BUS_C")

	require.NoError(t, net.Tick(0.01))
	require.Equal(t, 0.0, busB.InVolts())
	require.Equal(t, 0.0, busC.InVolts())

	require.NoError(t, net.SetTie("TIE1", "BUS_A", "BUS_B"))
	require.NoError(t, net.Tick(0.01))
	require.InDelta(t, 24.0, busB.InVolts(), 0.1)
	require.Equal(t, 0.0, busC.InVolts())

	require.NoError(t, net.SetTie("TIE1", "all"))
	require.NoError(t, net.Tick(0.01))
	require.InDelta(t, 24.0, busC.InVolts(), 0.1)
}

// S5: two equal-voltage, equal-resistance batteries feed one bus through
// diodes and split the load 50/50; opening one's breaker hands the
// remaining battery 100% of the demand.
func TestScenarioS5_DiodeOredBatteriesSplitLoad(t *testing.T) {
	net := buildNet(t, `
BATT B1
VOLTS 24
CAPACITY 1000000
MAX_PWR 10000
CHG_R 1
INT_R 1

BATT B2
VOLTS 24
CAPACITY 1000000
MAX_PWR 10000
CHG_R 1
INT_R 1

CB CB1
MAX_AMPS 50
HEAT_RATE 1

CB CB2
MAX_AMPS 50
HEAT_RATE 1

DIODE D1
DIODE D2

LOAD L1 DC
MIN_VOLTS 1
STD_LOAD 20

BUS BUSB1 DC
ENDPT B1
ENDPT CB1 IN

BUS BUSD1IN DC
ENDPT CB1 OUT
ENDPT D1 IN

BUS BUSB2 DC
ENDPT B2
ENDPT CB2 IN

BUS BUSD2IN DC
ENDPT CB2 OUT
ENDPT D2 IN

BUS BUSMAIN DC
ENDPT D1 OUT
ENDPT D2 OUT
ENDPT L1
`)

	b1 := mustComp(t, net, "B1")
	b2 := mustComp(t, net, "B2")

	require.NoError(t, net.Tick(0.01))
	require.InDelta(t, 10.0, b1.OutAmps(), 0.5)
	require.InDelta(t, 10.0, b2.OutAmps(), 0.5)

	require.NoError(t, net.SetCB("CB1", false))
	require.NoError(t, net.Tick(0.01))
	require.Equal(t, 0.0, b1.OutAmps())
	require.InDelta(t, 20.0, b2.OutAmps(), 0.5)
}

// S6: a load's virtual input capacitor keeps it observably powered for a
// moment after its supply is cut, then releases it once the capacitor
// decays below the load's minimum voltage.
func TestScenarioS6_IncapBridgesSupplyLoss(t *testing.T) {
	net := buildNet(t, `
BATT B1
VOLTS 28
CAPACITY 1000000
MAX_PWR 10000
CHG_R 1
INT_R 0.1

CB CB1
MAX_AMPS 50
HEAT_RATE 1

LOAD L1 DC
MIN_VOLTS 20
STD_LOAD 1
LEAK 0
INCAP 0.001 50

BUS BUSA DC
ENDPT B1
ENDPT CB1 IN

BUS BUSB DC
ENDPT CB1 OUT
ENDPT L1
`)

	l1 := mustComp(t, net, "L1")

	for i := 0; i < 5; i++ {
		require.NoError(t, net.Tick(0.01))
	}
	require.InDelta(t, 1.0, l1.InAmps(), 1e-6)
	require.Greater(t, l1.IncapVolts(), 20.0)

	require.NoError(t, net.SetCB("CB1", false))
	require.NoError(t, net.Tick(0.01))
	require.Equal(t, 0.0, l1.InAmps(), "no real current flows once the supply is gone")
	require.Greater(t, l1.OutVolts(), 0.0, "the capacitor briefly keeps the load observably powered")

	for i := 0; i < 10; i++ {
		require.NoError(t, net.Tick(0.01))
	}
	require.Equal(t, 0.0, l1.OutVolts(), "the load loses power once the capacitor decays below min_volts")
}
