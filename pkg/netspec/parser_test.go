package netspec_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/elecsim/pkg/netspec"
	"github.com/edp1096/elecsim/pkg/network"
)

func TestParseValueSuffixes(t *testing.T) {
	cases := map[string]float64{
		"28":     28,
		"28k":    28000,
		"1.5K":   1500,
		"100meg": 100e6,
		"10u":    10e-6,
		"-3.2m":  -3.2e-3,
	}
	for tok, want := range cases {
		got, err := netspec.ParseValue(tok)
		require.NoError(t, err, tok)
		require.InDelta(t, want, got, math.Abs(want)*1e-9+1e-12, tok)
	}
}

func TestParseValueRejectsGarbage(t *testing.T) {
	_, err := netspec.ParseValue("not-a-number")
	require.Error(t, err)
}

func TestParseBuildsBatteryDescriptor(t *testing.T) {
	descs, err := netspec.Parse(strings.NewReader(`
BATT B1
VOLTS 24
CAPACITY 1meg
MAX_PWR 10k
CHG_R 1
INT_R 0.5
`))
	require.NoError(t, err)
	require.Len(t, descs, 1)
	d := descs[0]
	require.Equal(t, network.KindBattery, d.Kind)
	require.Equal(t, "B1", d.Name)
	require.Equal(t, 24.0, d.Volts)
	require.Equal(t, 1e6, d.CapacityJ)
	require.Equal(t, 1e4, d.MaxPwr)
}

func TestParseCB3SetsTriPhase(t *testing.T) {
	descs, err := netspec.Parse(strings.NewReader("CB3 CBX\nMAX_AMPS 50\n"))
	require.NoError(t, err)
	require.Len(t, descs, 1)
	require.True(t, descs[0].TriPhase)
}

func TestParseLoadRequiresACOrDC(t *testing.T) {
	_, err := netspec.Parse(strings.NewReader("LOAD L1\nSTD_LOAD 1\n"))
	require.Error(t, err)
}

func TestParseRejectsAttributeOutsideStanza(t *testing.T) {
	_, err := netspec.Parse(strings.NewReader("VOLTS 24\n"))
	require.Error(t, err)
}

func TestParseRejectsEndptOutsideBus(t *testing.T) {
	_, err := netspec.Parse(strings.NewReader("BATT B1\nVOLTS 24\nENDPT B1\n"))
	require.Error(t, err)
}

func TestParseUnrecognizedKeywordBecomesHint(t *testing.T) {
	descs, err := netspec.Parse(strings.NewReader(`
BATT B1
VOLTS 24
X_PANEL_X 120
X_PANEL_Y 40
`))
	require.NoError(t, err)
	require.Equal(t, "120", descs[0].Hints["X_PANEL_X"])
	require.Equal(t, "40", descs[0].Hints["X_PANEL_Y"])
}

func TestParseIgnoresCommentsAndBlankLines(t *testing.T) {
	descs, err := netspec.Parse(strings.NewReader(`
# a full-line comment
BATT B1      # trailing comment
VOLTS 24

`))
	require.NoError(t, err)
	require.Len(t, descs, 1)
	require.Equal(t, 24.0, descs[0].Volts)
}
