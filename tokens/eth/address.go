package eth

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsValidAddress check address, mixed case address must have valid checksum
func IsValidAddress(address string) bool {
	if !common.IsHexAddress(address) {
		return false
	}
	unprefixedHex := address
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		unprefixedHex = address[2:]
	}
	hasLower := strings.ToUpper(unprefixedHex) != unprefixedHex
	hasUpper := strings.ToLower(unprefixedHex) != unprefixedHex
	if hasLower && hasUpper {
		return unprefixedHex == common.HexToAddress(address).Hex()[2:]
	}
	return true
}

// ParseAddress parse valid address
func ParseAddress(address string) (common.Address, bool) {
	if !IsValidAddress(address) {
		return common.Address{}, false
	}
	return common.HexToAddress(address), true
}
