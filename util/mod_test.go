package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayToString(t *testing.T) {
	require.Equal(t, "00ff", ArrayToString([]uint8{0x00, 0xff}))
	require.Equal(t, "0000beef00000001", ArrayToString([]uint32{0xbeef, 1}))
	require.Equal(t, "00000000feedface", ArrayToString([]uint64{0xfeedface}))
	require.Equal(t, "", ArrayToString([]uint16{}))
}
