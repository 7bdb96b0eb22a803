package util_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edp1096/elecsim/pkg/util"
)

func TestLowPassFirstStepSnapsToTarget(t *testing.T) {
	var f util.LowPass
	f.TimeConstant = 1.0
	require.Equal(t, 5.0, f.Step(5.0, 0.1))
}

func TestLowPassLagsTowardTarget(t *testing.T) {
	var f util.LowPass
	f.TimeConstant = 1.0
	f.Step(0, 0.1)

	v := f.Step(1.0, 0.1)
	require.Greater(t, v, 0.0)
	require.Less(t, v, 1.0)

	for i := 0; i < 1000; i++ {
		v = f.Step(1.0, 0.1)
	}
	require.InDelta(t, 1.0, v, 1e-3)
}

func TestLowPassZeroTimeConstantTracksInstantly(t *testing.T) {
	var f util.LowPass
	f.Step(0, 0.1)
	require.Equal(t, 3.0, f.Step(3.0, 0.1))
}

func TestLowPassResetSnapsOnNextStep(t *testing.T) {
	var f util.LowPass
	f.TimeConstant = 1.0
	f.Step(0, 0.1)
	f.Reset()
	require.Equal(t, 7.0, f.Step(7.0, 0.1))
}

func TestLowPassValueMatchesLastStep(t *testing.T) {
	var f util.LowPass
	f.TimeConstant = 1.0
	got := f.Step(2.0, 0.1)
	require.Equal(t, got, f.Value())
	require.False(t, math.IsNaN(f.Value()))
}
