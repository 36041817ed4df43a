package optctl

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapUser(t *testing.T) {
	require.NoError(t, wrapUser("Initialize", 1, nil))
	cause := errors.New("user failure")
	err := wrapUser("ComputeAll", 2, cause)
	require.EqualError(t, err, "user path function failed during ComputeAll (phase 2): user failure")
	require.Same(t, err, wrapUser("Initialize", 2, err), "already wrapped errors are kept")
	require.Equal(t, cause, errors.Cause(errors.Wrap(err, "context")))
	require.ErrorIs(t, errors.Wrap(err, "context"), cause)
}
