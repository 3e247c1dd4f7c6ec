package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	addr, err := NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	require.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", addr)

	_, err = NormalizeAddress("init1xyz")
	require.Error(t, err)
	_, err = NormalizeAddress("")
	require.Error(t, err)
}

func TestNormalizeTokenId(t *testing.T) {
	id, err := NormalizeTokenId("42")
	require.NoError(t, err)
	require.Equal(t, "42", id)

	id, err = NormalizeTokenId("0x2a")
	require.NoError(t, err)
	require.Equal(t, "42", id)

	_, err = NormalizeTokenId("-1")
	require.Error(t, err)
	_, err = NormalizeTokenId("abc")
	require.Error(t, err)
}
