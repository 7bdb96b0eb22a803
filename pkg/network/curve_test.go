package network

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCurveRejectsTooFewPoints(t *testing.T) {
	_, err := NewCurve([]CurvePoint{{X: 0, Y: 0.5}})
	require.Error(t, err)
}

func TestNewCurveRejectsNonMonotoneX(t *testing.T) {
	_, err := NewCurve([]CurvePoint{{X: 10, Y: 0.5}, {X: 5, Y: 0.6}})
	require.Error(t, err)
}

func TestNewCurveRejectsOutOfRangeY(t *testing.T) {
	_, err := NewCurve([]CurvePoint{{X: 0, Y: 0}, {X: 10, Y: 1.0}})
	require.Error(t, err, "Y must satisfy 0<=Y<1")
}

func TestCurveLookupInterpolates(t *testing.T) {
	c, err := NewCurve([]CurvePoint{{X: 0, Y: 0.5}, {X: 100, Y: 0.9}})
	require.NoError(t, err)
	require.InDelta(t, 0.7, c.Lookup(50), 1e-9)
}

func TestCurveLookupClampsOutOfDomain(t *testing.T) {
	c, err := NewCurve([]CurvePoint{{X: 0, Y: 0.5}, {X: 100, Y: 0.9}})
	require.NoError(t, err)
	require.Equal(t, 0.5, c.Lookup(-10))
	require.Equal(t, 0.9, c.Lookup(1000))
}

func TestCurveInRange(t *testing.T) {
	c, err := NewCurve([]CurvePoint{{X: 0, Y: 0.5}, {X: 100, Y: 0.9}})
	require.NoError(t, err)
	require.True(t, c.InRange(50))
	require.False(t, c.InRange(-1))
	require.False(t, c.InRange(101))
}
