package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID_Deterministic(t *testing.T) {
	require.Equal(t, ID("loop-300K"), ID("loop-300K"))
	require.NotEqual(t, ID("loop-300K"), ID("loop-305K"))
}

func TestID_MatchesBytes(t *testing.T) {
	require.Equal(t, ID("sample-A"), Bytes([]byte("sample-A")))
}

func TestID_Empty(t *testing.T) {
	require.Equal(t, ID(""), Bytes(nil))
}
