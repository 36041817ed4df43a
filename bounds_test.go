package optctl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundData(t *testing.T) {
	b := NewBoundData()
	lower, upper := []float64{-1, -2}, []float64{1, 2}
	require.NoError(t, b.SetControlBounds(lower, upper))
	lower[0] = 10
	require.Equal(t, []float64{-1, -2}, b.Lower(Control), "bounds are copied")
	got := b.Upper(Control)
	got[0] = 10
	require.Equal(t, []float64{1, 2}, b.Upper(Control), "bounds are returned as copies")
	require.Empty(t, b.Lower(Static))
	require.Empty(t, b.Lower(VarType(0)))

	require.ErrorIs(t, b.SetStateBounds([]float64{0}, []float64{1, 2}), ErrDimension)
	require.ErrorIs(t, b.SetStateBounds([]float64{3}, []float64{1}), ErrBounds)
	require.ErrorIs(t, b.SetBounds(Time, []float64{0, 1}, []float64{1, 2}), ErrDimension)
	require.ErrorIs(t, b.SetBounds(VarType(7), nil, nil), ErrUnknownVarType)
	require.NoError(t, b.SetTimeBounds(0, 0))
	require.NoError(t, b.SetStaticBounds([]float64{}, []float64{}))
}

func TestBoundCheck(t *testing.T) {
	in := nominalInput()
	require.NoError(t, nominalBounds().check(in))
	b := nominalBounds()
	require.NoError(t, b.SetControlBounds([]float64{0}, []float64{1}))
	require.ErrorIs(t, b.check(in), ErrDimension)

	// Unbounded variables cannot be sampled.
	b = nominalBounds()
	require.NoError(t, b.SetStateBounds([]float64{-5, math.Inf(-1), -5}, []float64{5, 5, 5}))
	require.ErrorIs(t, b.check(in), ErrBounds)
	b = nominalBounds()
	require.NoError(t, b.SetTimeBounds(0, math.NaN()))
	require.ErrorIs(t, b.check(in), ErrBounds)
}
