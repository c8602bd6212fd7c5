package tokens

import (
	"fmt"
)

// CrossSwapType topology of a cross swap
type CrossSwapType string

// CrossSwapType constants
const (
	BridgeableToBridgeable CrossSwapType = "bridgeableToBridgeable"
	BridgeableToAny        CrossSwapType = "bridgeableToAny"
	AnyToBridgeable        CrossSwapType = "anyToBridgeable"
	AnyToAny               CrossSwapType = "anyToAny"
)

// ShortName short name, eg. B2A
func (t CrossSwapType) ShortName() string {
	switch t {
	case BridgeableToBridgeable:
		return "B2B"
	case BridgeableToAny:
		return "B2A"
	case AnyToBridgeable:
		return "A2B"
	case AnyToAny:
		return "A2A"
	default:
		return "unknown"
	}
}

// HasOriginSwap needs origin swap
func (t CrossSwapType) HasOriginSwap() bool {
	return t == AnyToBridgeable || t == AnyToAny
}

// HasDestinationSwap needs destination swap
func (t CrossSwapType) HasDestinationSwap() bool {
	return t == BridgeableToAny || t == AnyToAny
}

// ParseCrossSwapType parse from long or short name
func ParseCrossSwapType(s string) (CrossSwapType, error) {
	for _, t := range []CrossSwapType{BridgeableToBridgeable, BridgeableToAny, AnyToBridgeable, AnyToAny} {
		if s == string(t) || s == t.ShortName() {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown cross swap type '%v'", ErrInvalidParam, s)
}
