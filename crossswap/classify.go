// Package crossswap classifies cross swap requests into topologies and
// composes the bridge and swap quotes of each topology.
package crossswap

import (
	"fmt"

	"github.com/anyswap/CrossSwap-Router/tokens"
)

// Classify topologies a strategy can serve the cross swap with, in preference order.
// Topologies with a destination swap need a strategy able to carry messages.
func Classify(strategy tokens.BridgeStrategy, crossSwap *tokens.CrossSwap) ([]tokens.CrossSwapType, error) {
	candidates := strategy.GetCrossSwapTypes(&tokens.CrossSwapTypesParams{
		InputToken:     crossSwap.InputToken,
		OutputToken:    crossSwap.OutputToken,
		IsInputNative:  crossSwap.IsInputNative,
		IsOutputNative: crossSwap.IsOutputNative,
	})
	supportsMessage := strategy.Capabilities().SupportsMessage
	result := make([]tokens.CrossSwapType, 0, len(candidates))
	for _, t := range candidates {
		if t.HasDestinationSwap() && !supportsMessage {
			continue
		}
		result = append(result, t)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: %v does not support %v -> %v",
			tokens.ErrRouteNotSupported, strategy.Name(), crossSwap.InputToken, crossSwap.OutputToken)
	}
	return result, nil
}
