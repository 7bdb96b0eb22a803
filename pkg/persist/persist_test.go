package persist_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/elecsim/pkg/netspec"
	"github.com/edp1096/elecsim/pkg/network"
	"github.com/edp1096/elecsim/pkg/persist"
)

const spec = `
BATT B1
VOLTS 24
CAPACITY 1000000
MAX_PWR 10000
CHG_R 1
INT_R 1

CB CB1
MAX_AMPS 20
HEAT_RATE 1

TIE TIE1

LOAD L1 DC
MIN_VOLTS 1
STD_LOAD 10

BUS BUSA DC
ENDPT B1
ENDPT CB1 IN
ENDPT TIE1

BUS BUSB DC
ENDPT CB1 OUT
ENDPT L1
ENDPT TIE1
`

func buildFromSpec(t *testing.T, text string) *network.Network {
	t.Helper()
	descs, err := netspec.Parse(strings.NewReader(text))
	require.NoError(t, err)
	net, err := network.Build(t.Name(), descs)
	require.NoError(t, err)
	return net
}

func TestSaveLoadRoundTrip(t *testing.T) {
	net := buildFromSpec(t, spec)

	require.NoError(t, net.SetCharge("B1", 0.42))
	require.NoError(t, net.SetTemp("B1", 10))
	require.NoError(t, net.SetCB("CB1", false))
	require.NoError(t, net.SetTie("TIE1", "BUSA"))
	require.NoError(t, net.MarkFailed("L1", true))

	blob := persist.Save(net, spec)

	fresh := buildFromSpec(t, spec)
	require.NoError(t, persist.Load(fresh, spec, blob))

	b1, ok := fresh.ByName("B1")
	require.True(t, ok)
	require.InDelta(t, 0.42, b1.ChargeFrac(), 1e-9)
	require.InDelta(t, 10.0, b1.TempC(), 1e-9)

	cb1, ok := fresh.ByName("CB1")
	require.True(t, ok)
	require.False(t, cb1.Closed())

	tie1, ok := fresh.ByName("TIE1")
	require.True(t, ok)
	flags := tie1.TiedFlags()
	require.Len(t, flags, 2)
	require.True(t, flags[0])
	require.False(t, flags[1])

	l1, ok := fresh.ByName("L1")
	require.True(t, ok)
	require.True(t, l1.Failed())
}

func TestLoadRejectsMismatchedSpecCRC(t *testing.T) {
	net := buildFromSpec(t, spec)
	blob := persist.Save(net, spec)

	fresh := buildFromSpec(t, spec)
	err := persist.Load(fresh, spec+"\n# a harmless comment that changes the CRC\n", blob)
	require.Error(t, err)
}

func TestLoadRejectsUnknownComponent(t *testing.T) {
	net := buildFromSpec(t, spec)
	blob := persist.Save(net, spec)
	corrupted := strings.Replace(string(blob), "BEGIN B1", "BEGIN NOSUCHCOMPONENT", 1)

	fresh := buildFromSpec(t, spec)
	err := persist.Load(fresh, spec, []byte(corrupted))
	require.Error(t, err)
}
