package eth

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anyswap/CrossSwap-Router/tokens"
)

// HandlerMessageParams params of the multicall handler message
type HandlerMessageParams struct {
	Handler           common.Address
	BridgeOutputToken common.Address
	Recipient         common.Address
	FallbackRecipient common.Address
	IsOutputNative    bool

	// destination swap, optional
	DestinationSwap   *tokens.SwapQuote
	DestinationRouter common.Address

	AppFee          *tokens.AppFee
	EmbeddedActions []*tokens.Action
}

// BuildHandlerMessage build the instructions executed by the multicall handler on destination.
// Calls order: router approve and swap, app fee transfer, embedded actions, drain leftovers.
func BuildHandlerMessage(p *HandlerMessageParams) ([]byte, error) {
	finalToken := p.BridgeOutputToken
	calls := make([]Call, 0, 5+len(p.EmbeddedActions))

	if swap := p.DestinationSwap; swap != nil {
		if len(swap.SwapTxns) == 0 {
			return nil, fmt.Errorf("%w: destination swap quote has no tx", tokens.ErrInvalidParam)
		}
		approveData, err := EncodeApprove(p.DestinationRouter, swap.MaximumAmountIn)
		if err != nil {
			return nil, err
		}
		calls = append(calls, Call{Target: p.BridgeOutputToken, CallData: approveData})
		for _, tx := range swap.SwapTxns {
			calls = append(calls, Call{Target: tx.To, CallData: tx.Data, Value: tx.Value})
		}
		finalToken = swap.TokenOut.Address
	}

	if fee := p.AppFee; !fee.IsZero() && fee.Amount != nil && fee.Amount.Sign() > 0 {
		if p.IsOutputNative {
			calls = append(calls, Call{Target: fee.Recipient, Value: fee.Amount})
		} else {
			transferData, err := EncodeTransfer(fee.Recipient, fee.Amount)
			if err != nil {
				return nil, err
			}
			calls = append(calls, Call{Target: finalToken, CallData: transferData})
		}
	}

	for _, action := range p.EmbeddedActions {
		calls = append(calls, Call{Target: action.Target, CallData: action.CallData, Value: action.Value})
	}

	drainTokens := []common.Address{finalToken}
	if finalToken != p.BridgeOutputToken {
		drainTokens = append(drainTokens, p.BridgeOutputToken)
	}
	for _, token := range drainTokens {
		drainData, err := EncodeDrainLeftoverTokens(token, p.Recipient)
		if err != nil {
			return nil, err
		}
		calls = append(calls, Call{Target: p.Handler, CallData: drainData, Value: big.NewInt(0)})
	}

	fallback := p.FallbackRecipient
	if fallback == (common.Address{}) {
		fallback = p.Recipient
	}
	return EncodeInstructions(&Instructions{Calls: calls, FallbackRecipient: fallback})
}
