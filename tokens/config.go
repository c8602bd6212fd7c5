package tokens

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anyswap/CrossSwap-Router/params"
)

// NativeTokenAddress placeholder address of native token
var NativeTokenAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// NewToken new token of symbol on chain from config
func NewToken(cfg *params.RouterConfig, chainID uint64, symbol string) (Token, error) {
	address, decimals, exist := cfg.GetTokenAddress(chainID, symbol)
	if !exist {
		return Token{}, fmt.Errorf("%w: %v on chain %v", ErrTokenNotSupported, symbol, chainID)
	}
	tokenCfg := cfg.GetTokenConfig(symbol)
	return Token{
		Address:  common.HexToAddress(address),
		ChainID:  chainID,
		Symbol:   tokenCfg.Symbol,
		Decimals: decimals,
	}, nil
}

// ResolveToken resolve token by address on chain, unknown tokens need decimals
func ResolveToken(cfg *params.RouterConfig, chainID uint64, address common.Address, decimals uint8) Token {
	if symbol := cfg.GetTokenSymbol(chainID, address.Hex()); symbol != "" {
		if token, err := NewToken(cfg, chainID, symbol); err == nil {
			return token
		}
	}
	return Token{
		Address:  address,
		ChainID:  chainID,
		Decimals: decimals,
	}
}

// IsKnownToken is token registered in config
func IsKnownToken(token Token) bool {
	return token.Symbol != ""
}

// IsNativeAddress is native token placeholder
func IsNativeAddress(address common.Address) bool {
	return address == NativeTokenAddress || address == (common.Address{})
}

// GetWrappedNativeToken get wrapped native token of chain
func GetWrappedNativeToken(cfg *params.RouterConfig, chainID uint64) (Token, error) {
	chainCfg := cfg.GetChainConfig(chainID)
	if chainCfg == nil || chainCfg.WrappedNativeSymbol == "" {
		return Token{}, fmt.Errorf("%w: no wrapped native token on chain %v", ErrTokenNotSupported, chainID)
	}
	return NewToken(cfg, chainID, chainCfg.WrappedNativeSymbol)
}

// EqualSymbol case insensitive symbol compare
func EqualSymbol(a, b string) bool {
	return strings.EqualFold(a, b)
}
