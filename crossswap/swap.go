package crossswap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anyswap/CrossSwap-Router/executor"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

// swapLeg a swap quote with the api and router it was fetched from
type swapLeg struct {
	quote       *tokens.SwapQuote
	api         tokens.QuoteFetchStrategy
	router      common.Address
	entryPoints *tokens.OriginEntryPoints // origin legs only
}

type swapRequest struct {
	swap       tokens.Swap
	tradeType  tokens.AmountType
	indicative bool
	isOrigin   bool
}

// originSwap request of an origin swap into the bridge input token
func (p *pipeline) originSwap(bridgeInput tokens.Token, amount *big.Int, tradeType tokens.AmountType, indicative bool) *swapRequest {
	cs := p.crossSwap
	return &swapRequest{
		swap: tokens.Swap{
			ChainID:       cs.InputToken.ChainID,
			TokenIn:       cs.InputToken,
			TokenOut:      bridgeInput,
			Amount:        amount,
			Depositor:     cs.Depositor,
			Slippage:      cs.Slippage,
			IsInputNative: cs.IsInputNative,
		},
		tradeType:  tradeType,
		indicative: indicative,
		isOrigin:   true,
	}
}

// destinationSwap request of a destination swap run by the multicall handler
func (p *pipeline) destinationSwap(bridgeOutput tokens.Token, handler common.Address, amount *big.Int, tradeType tokens.AmountType, indicative bool) *swapRequest {
	cs := p.crossSwap
	return &swapRequest{
		swap: tokens.Swap{
			ChainID:        cs.OutputToken.ChainID,
			TokenIn:        bridgeOutput,
			TokenOut:       cs.OutputToken,
			Amount:         amount,
			Depositor:      handler,
			Recipient:      handler,
			Slippage:       cs.Slippage,
			IsOutputNative: cs.IsOutputNative,
		},
		tradeType:  tradeType,
		indicative: indicative,
	}
}

func (p *pipeline) swapChunkSize() int {
	if p.cfg.Providers == nil {
		return 0
	}
	return p.cfg.Providers.SwapChunkSize
}

// fetchSwap race the swap apis of the chain in priority order
func (p *pipeline) fetchSwap(ctx context.Context, req *swapRequest) (*swapLeg, error) {
	chainID := req.swap.ChainID
	opts := tokens.QuoteFetchOpts{
		UseIndicativeQuote: req.indicative,
		Sources:            p.crossSwap.GetSourcesFilter(),
		SplitSlippage:      p.splitSlippage,
	}
	tasks := make([]executor.Task[*swapLeg], 0, len(p.swapAPIs))
	for _, api := range p.swapAPIs {
		if !api.SupportsChain(chainID) {
			continue
		}
		api := api
		tasks = append(tasks, executor.Task[*swapLeg]{
			Name: api.Name(),
			Run: func(ctx context.Context) (*swapLeg, error) {
				return fetchSwapFrom(ctx, api, req, opts)
			},
		})
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: no swap api on chain %v", tokens.ErrRouteNotSupported, chainID)
	}
	return executor.Execute(ctx, tasks, executor.Policy[*swapLeg]{
		Mode:      executor.PrioritySpeed,
		ChunkSize: p.swapChunkSize(),
	})
}

func fetchSwapFrom(ctx context.Context, api tokens.QuoteFetchStrategy, req *swapRequest, opts tokens.QuoteFetchOpts) (*swapLeg, error) {
	swap := req.swap
	router, err := api.GetRouter(swap.ChainID)
	if err != nil {
		return nil, err
	}
	leg := &swapLeg{api: api, router: router}
	if req.isOrigin {
		entryPoints, errf := api.GetOriginEntryPoints(swap.ChainID)
		if errf != nil {
			return nil, errf
		}
		leg.entryPoints = entryPoints
		swap.Recipient = entryPoints.SwapAndBridge.Address
	}
	quote, err := api.Fetch(ctx, &swap, req.tradeType, &opts)
	if err != nil {
		return nil, err
	}
	leg.quote = quote
	return leg, nil
}

// requiredInput input amount a swap leg spends at most
func requiredInput(q *tokens.SwapQuote) *big.Int {
	if q.MaximumAmountIn != nil {
		return q.MaximumAmountIn
	}
	return q.ExpectedAmountIn
}

// expectedInput expected input of an indicative leg
func expectedInput(q *tokens.SwapQuote) *big.Int {
	if q.ExpectedAmountIn != nil {
		return q.ExpectedAmountIn
	}
	return q.MaximumAmountIn
}

func bridgeMinOutput(q *tokens.BridgeQuote) *big.Int {
	if q.MinOutputAmount != nil {
		return q.MinOutputAmount
	}
	return q.OutputAmount
}

// assertBridgeCovers bridge output must cover what the destination swap spends
func assertBridgeCovers(bridgeQuote *tokens.BridgeQuote, destLeg *swapLeg) error {
	return tokens.AssertMinAmount("bridge output below destination swap input",
		requiredInput(destLeg.quote), bridgeMinOutput(bridgeQuote))
}

// destinationMessage multicall handler message running the destination swap.
// Indicative legs carry no calldata, a call to the router stands in for it.
func (p *pipeline) destinationMessage(handler common.Address, bridgeOutput tokens.Token, leg *swapLeg, appFee *tokens.AppFee) ([]byte, error) {
	cs := p.crossSwap
	swapQuote := leg.quote
	if len(swapQuote.SwapTxns) == 0 || swapQuote.MaximumAmountIn == nil {
		cp := *swapQuote
		if len(cp.SwapTxns) == 0 {
			cp.SwapTxns = []*tokens.SwapTx{{
				ChainID: bridgeOutput.ChainID,
				To:      leg.router,
				Data:    []byte{},
				Value:   big.NewInt(0),
			}}
		}
		if cp.MaximumAmountIn == nil {
			cp.MaximumAmountIn = new(big.Int)
			if cp.ExpectedAmountIn != nil {
				cp.MaximumAmountIn.Set(cp.ExpectedAmountIn)
			}
		}
		swapQuote = &cp
	}
	return eth.BuildHandlerMessage(&eth.HandlerMessageParams{
		Handler:           handler,
		BridgeOutputToken: bridgeOutput.Address,
		Recipient:         cs.Recipient,
		IsOutputNative:    cs.IsOutputNative,
		DestinationSwap:   swapQuote,
		DestinationRouter: leg.router,
		AppFee:            appFee,
		EmbeddedActions:   cs.EmbeddedActions,
	})
}
