package optctl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	for _, v := range VarTypes {
		require.True(t, v.Valid())
		got, err := VarTypeFromString(v.String())
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
	for _, f := range FuncTypes {
		require.True(t, f.Valid())
		got, err := FuncTypeFromString(f.String())
		require.NoError(t, err)
		require.Equal(t, f, got)
	}
	f, err := FuncTypeFromString(" ALG ")
	require.NoError(t, err)
	require.Equal(t, Algebraic, f)
	_, err = VarTypeFromString("mass")
	require.ErrorIs(t, err, ErrUnknownVarType)
	_, err = FuncTypeFromString("objective")
	require.ErrorIs(t, err, ErrUnknownFuncType)
	require.False(t, VarType(0).Valid())
	require.False(t, FuncType(4).Valid())
	require.Equal(t, "VarType(9)", VarType(9).String())
	require.Equal(t, "dynamics/state", Block{Dynamics, State}.String())
}

func TestBlockSet(t *testing.T) {
	var s blockSet[int]
	n := 0
	for _, f := range FuncTypes {
		for _, v := range VarTypes {
			*s.at(Block{f, v}) = n
			n++
		}
	}
	n = 0
	for _, f := range FuncTypes {
		for _, v := range VarTypes {
			require.Equal(t, n, *s.at(Block{f, v}))
			n++
		}
	}
}
