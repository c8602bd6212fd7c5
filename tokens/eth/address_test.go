package eth_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

func TestParseAddress(t *testing.T) {
	checksummed := "0x90529c2cEA2c77856E777c993c6392cC60C5d5A2"
	cases := []struct {
		addr  string
		valid bool
	}{
		{"0x90529C2CEA2C77856E777C993C6392CC60C5D5A2", true},
		{"0X90529C2CEA2C77856E777C993C6392CC60C5D5A2", true},
		{"0x90529c2cea2c77856e777c993c6392cc60c5d5a2", true},
		{checksummed, true},
		{"0X90529C2CEa2c77856e777c993c6392cc60c5d5a2", false},
		{"0x90529C2CEa2c77856e777c993c6392cc60c5d5a2", false},
		{"0x90529C2CEA2C77856E777C993C6392CC60C5D5", false},
		{"", false},
	}
	for _, c := range cases {
		require.Equal(t, c.valid, eth.IsValidAddress(c.addr), c.addr)
		address, ok := eth.ParseAddress(c.addr)
		require.Equal(t, c.valid, ok, c.addr)
		if c.valid {
			require.Equal(t, common.HexToAddress(checksummed), address)
		} else {
			require.Equal(t, common.Address{}, address)
		}
	}
}
