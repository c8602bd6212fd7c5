// Package across is the default bridge strategy over liquidity pool intents.
package across

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	cmn "github.com/anyswap/CrossSwap-Router/common"
	"github.com/anyswap/CrossSwap-Router/gasless"
	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

// Name strategy name
const Name = "across"

var _ tokens.GaslessBridgeStrategy = &Strategy{}

// Strategy across bridge strategy
type Strategy struct {
	cfg            *params.RouterConfig
	provider       tokens.BridgeQuoteProvider
	gaslessBuilder *gasless.Builder
}

// NewStrategy new strategy, gasless builder is optional
func NewStrategy(cfg *params.RouterConfig, provider tokens.BridgeQuoteProvider, gaslessBuilder *gasless.Builder) *Strategy {
	return &Strategy{
		cfg:            cfg,
		provider:       provider,
		gaslessBuilder: gaslessBuilder,
	}
}

// Name name
func (s *Strategy) Name() string {
	return Name
}

// Capabilities capabilities
func (s *Strategy) Capabilities() tokens.Capabilities {
	return tokens.Capabilities{
		SupportsGasless: s.gaslessBuilder != nil,
		SupportsMessage: true,
	}
}

// OriginTxNeedsAllowance erc20 input needs allowance to the entry point
func (s *Strategy) OriginTxNeedsAllowance() bool {
	return true
}

// IsRouteSupported is route enabled
func (s *Strategy) IsRouteSupported(inputToken, outputToken tokens.Token) bool {
	return s.cfg.HasRoute(inputToken.ChainID, outputToken.ChainID, inputToken.Symbol, outputToken.Symbol)
}

// GetCrossSwapTypes classify by bridgeability of the tokens
func (s *Strategy) GetCrossSwapTypes(p *tokens.CrossSwapTypesParams) []tokens.CrossSwapType {
	origin, dest := p.InputToken.ChainID, p.OutputToken.ChainID
	inputBridgeable := tokens.IsKnownToken(p.InputToken) && s.cfg.IsInputBridgeable(origin, dest, p.InputToken.Symbol)
	outputBridgeable := tokens.IsKnownToken(p.OutputToken) && s.cfg.IsOutputBridgeable(origin, dest, p.OutputToken.Symbol)

	switch {
	case inputBridgeable && outputBridgeable:
		if s.IsRouteSupported(p.InputToken, p.OutputToken) {
			return []tokens.CrossSwapType{tokens.BridgeableToBridgeable}
		}
		return []tokens.CrossSwapType{tokens.BridgeableToAny, tokens.AnyToBridgeable}
	case inputBridgeable:
		return []tokens.CrossSwapType{tokens.BridgeableToAny}
	case outputBridgeable:
		return []tokens.CrossSwapType{tokens.AnyToBridgeable}
	default:
		return []tokens.CrossSwapType{tokens.AnyToAny}
	}
}

// GetBridgeQuoteRecipient recipient of the bridged funds
func (s *Strategy) GetBridgeQuoteRecipient(crossSwap *tokens.CrossSwap, _ bool) (common.Address, error) {
	if !crossSwap.NeedsMulticallHandler(false) {
		return crossSwap.Recipient, nil
	}
	return s.getMulticallHandler(crossSwap.OutputToken.ChainID)
}

// GetBridgeQuoteMessage handler message for embedded actions and app fee,
// empty if the recipient receives bridged funds directly
func (s *Strategy) GetBridgeQuoteMessage(crossSwap *tokens.CrossSwap, appFee *tokens.AppFee, _ *tokens.SwapQuote) ([]byte, error) {
	if !crossSwap.NeedsMulticallHandler(false) {
		return nil, nil
	}
	handler, err := s.getMulticallHandler(crossSwap.OutputToken.ChainID)
	if err != nil {
		return nil, err
	}
	return eth.BuildHandlerMessage(&eth.HandlerMessageParams{
		Handler:           handler,
		BridgeOutputToken: crossSwap.OutputToken.Address,
		Recipient:         crossSwap.Recipient,
		IsOutputNative:    crossSwap.IsOutputNative,
		AppFee:            appFee,
		EmbeddedActions:   crossSwap.EmbeddedActions,
	})
}

// GetQuoteForExactInput quote by exact input amount
func (s *Strategy) GetQuoteForExactInput(ctx context.Context, p *tokens.ExactInputQuoteParams) (*tokens.BridgeQuote, error) {
	fees, err := s.getSuggestedFees(ctx, p.InputToken, p.OutputToken, p.ExactInputAmount, p.Recipient, p.Message, p.CrossSwap)
	if err != nil {
		return nil, err
	}
	outputAmount, err := s.calcOutputAmount(p.InputToken, p.OutputToken, p.ExactInputAmount, fees)
	if err != nil {
		return nil, err
	}
	return s.newBridgeQuote(p.InputToken, p.OutputToken, p.ExactInputAmount, outputAmount, p.Recipient, p.Message, fees), nil
}

// GetQuoteForOutput quote by min output amount.
// The relay fee of the converted output amount is added to the input and requoted,
// the remaining shortfall is covered by topping up the input once.
func (s *Strategy) GetQuoteForOutput(ctx context.Context, p *tokens.OutputQuoteParams) (*tokens.BridgeQuote, error) {
	if p.MinOutputAmount == nil || p.MinOutputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: min output amount must be positive", tokens.ErrInvalidParam)
	}
	baseInput := tokens.ConvertTokenValueCeil(p.MinOutputAmount, p.OutputToken.Decimals, p.InputToken.Decimals)

	fees, err := s.getSuggestedFees(ctx, p.InputToken, p.OutputToken, baseInput, p.Recipient, p.Message, p.CrossSwap)
	if err != nil {
		return nil, err
	}
	inputAmount := new(big.Int).Add(baseInput, cmn.BigOrZero(fees.TotalRelayFee.Total))

	fees, err = s.getSuggestedFees(ctx, p.InputToken, p.OutputToken, inputAmount, p.Recipient, p.Message, p.CrossSwap)
	if err != nil {
		return nil, err
	}
	outputAmount, err := s.calcOutputAmount(p.InputToken, p.OutputToken, inputAmount, fees)
	if err != nil {
		return nil, err
	}
	if outputAmount.Cmp(p.MinOutputAmount) < 0 {
		shortfall := new(big.Int).Sub(p.MinOutputAmount, outputAmount)
		inputAmount.Add(inputAmount, tokens.ConvertTokenValueCeil(shortfall, p.OutputToken.Decimals, p.InputToken.Decimals))
		outputAmount = tokens.ConvertTokenValue(new(big.Int).Sub(inputAmount, cmn.BigOrZero(fees.TotalRelayFee.Total)),
			p.InputToken.Decimals, p.OutputToken.Decimals)
	}
	if err = tokens.AssertMinAmount("bridge output below min output", p.MinOutputAmount, outputAmount); err != nil {
		return nil, err
	}
	if p.ForceExactOutput {
		outputAmount = new(big.Int).Set(p.MinOutputAmount)
	}
	return s.newBridgeQuote(p.InputToken, p.OutputToken, inputAmount, outputAmount, p.Recipient, p.Message, fees), nil
}

// BuildTxForAllowanceHolder build origin tx, depositV3 on spoke pool
// or swapAndBridge on the origin entry point if there is an origin swap
func (s *Strategy) BuildTxForAllowanceHolder(_ context.Context, quotes *tokens.CrossSwapQuotes, integratorID string) (*tokens.OriginTx, error) {
	if quotes.OriginSwapQuote != nil {
		return s.buildSwapAndBridgeTx(quotes, integratorID)
	}
	return s.buildDepositTx(quotes, integratorID)
}

// BuildGaslessTx build gasless payload
func (s *Strategy) BuildGaslessTx(ctx context.Context, quotes *tokens.CrossSwapQuotes, _ string, permit *tokens.PermitParams) (*tokens.GaslessTx, error) {
	if s.gaslessBuilder == nil {
		return nil, fmt.Errorf("%w: gasless is not enabled", tokens.ErrNotImplemented)
	}
	return s.gaslessBuilder.Build(ctx, quotes, permit)
}

func (s *Strategy) buildDepositTx(quotes *tokens.CrossSwapQuotes, integratorID string) (*tokens.OriginTx, error) {
	crossSwap, bridgeQuote := quotes.CrossSwap, quotes.BridgeQuote
	chainCfg := s.cfg.GetChainConfig(bridgeQuote.InputToken.ChainID)
	if chainCfg == nil || chainCfg.SpokePool == "" {
		return nil, fmt.Errorf("%w: no spoke pool on chain %v", tokens.ErrMissEntryPoint, bridgeQuote.InputToken.ChainID)
	}
	spokePool := common.HexToAddress(chainCfg.SpokePool)

	args := newDepositV3Args(crossSwap.Depositor, bridgeQuote)
	data, err := eth.EncodeDepositV3(args)
	if err != nil {
		return nil, err
	}
	if data, err = eth.TagIntegratorID(data, integratorID); err != nil {
		return nil, err
	}
	tx := &tokens.OriginTx{
		ChainID: bridgeQuote.InputToken.ChainID,
		From:    crossSwap.Depositor,
		To:      spokePool,
		Data:    data,
		Value:   big.NewInt(0),
	}
	if crossSwap.IsInputNative {
		tx.Value = new(big.Int).Set(bridgeQuote.InputAmount)
	} else {
		tx.Approvals = []*tokens.Approval{{
			Token:   bridgeQuote.InputToken.Address,
			Spender: spokePool,
			Amount:  bridgeQuote.InputAmount,
		}}
	}
	return tx, nil
}

func (s *Strategy) buildSwapAndBridgeTx(quotes *tokens.CrossSwapQuotes, integratorID string) (*tokens.OriginTx, error) {
	crossSwap, bridgeQuote, swapQuote := quotes.CrossSwap, quotes.BridgeQuote, quotes.OriginSwapQuote
	if len(swapQuote.SwapTxns) == 0 {
		return nil, fmt.Errorf("%w: origin swap quote has no tx", tokens.ErrInvalidParam)
	}
	entryPoint := quotes.Contracts.DepositEntryPoint
	if entryPoint.Address == (common.Address{}) {
		return nil, fmt.Errorf("%w: no swap and bridge entry point", tokens.ErrMissEntryPoint)
	}
	chainCfg := s.cfg.GetChainConfig(bridgeQuote.InputToken.ChainID)
	if chainCfg == nil {
		return nil, fmt.Errorf("%w: chain %v", tokens.ErrMissEntryPoint, bridgeQuote.InputToken.ChainID)
	}
	swapTx := swapQuote.SwapTxns[0]
	args := newDepositV3Args(crossSwap.Depositor, bridgeQuote)

	data, err := eth.EncodeSwapAndBridge(&tokens.SwapAndDepositData{
		DepositData: tokens.BaseDepositData{
			InputToken:           args.InputToken,
			OutputToken:          tokens.AddressToBytes32(args.OutputToken),
			OutputAmount:         args.OutputAmount,
			Depositor:            args.Depositor,
			Recipient:            tokens.AddressToBytes32(args.Recipient),
			DestinationChainID:   new(big.Int).SetUint64(args.DestinationChainID),
			ExclusiveRelayer:     tokens.AddressToBytes32(args.ExclusiveRelayer),
			QuoteTimestamp:       args.QuoteTimestamp,
			FillDeadline:         args.FillDeadline,
			ExclusivityParameter: args.ExclusivityDeadline,
			Message:              args.Message,
		},
		SwapToken:                    swapQuote.TokenIn.Address,
		Exchange:                     swapTx.To,
		TransferType:                 uint8(tokens.TransferTypeApproval),
		SwapTokenAmount:              swapQuote.MaximumAmountIn,
		MinExpectedInputTokenAmount:  swapQuote.MinAmountOut,
		RouterCalldata:               swapTx.Data,
		EnableProportionalAdjustment: crossSwap.IsOutputDirected(),
		SpokePool:                    common.HexToAddress(chainCfg.SpokePool),
	})
	if err != nil {
		return nil, err
	}
	if data, err = eth.TagIntegratorID(data, integratorID); err != nil {
		return nil, err
	}
	tx := &tokens.OriginTx{
		ChainID: bridgeQuote.InputToken.ChainID,
		From:    crossSwap.Depositor,
		To:      entryPoint.Address,
		Data:    data,
		Value:   big.NewInt(0),
	}
	if crossSwap.IsInputNative {
		tx.Value = new(big.Int).Set(swapQuote.MaximumAmountIn)
	} else {
		tx.Approvals = []*tokens.Approval{{
			Token:   swapQuote.TokenIn.Address,
			Spender: entryPoint.Address,
			Amount:  swapQuote.MaximumAmountIn,
		}}
	}
	return tx, nil
}

func newDepositV3Args(depositor common.Address, bridgeQuote *tokens.BridgeQuote) *eth.DepositV3Args {
	args := &eth.DepositV3Args{
		Depositor:          depositor,
		Recipient:          bridgeQuote.Recipient,
		InputToken:         bridgeQuote.InputToken.Address,
		OutputToken:        bridgeQuote.OutputToken.Address,
		InputAmount:        bridgeQuote.InputAmount,
		OutputAmount:       bridgeQuote.OutputAmount,
		DestinationChainID: bridgeQuote.OutputToken.ChainID,
		Message:            bridgeQuote.Message,
	}
	if fees := bridgeQuote.SuggestedFees; fees != nil {
		args.ExclusiveRelayer = fees.ExclusiveRelayer
		args.QuoteTimestamp = fees.QuoteTimestamp
		args.FillDeadline = fees.FillDeadline
		args.ExclusivityDeadline = fees.ExclusivityDeadline
	}
	return args
}

func (s *Strategy) getSuggestedFees(ctx context.Context, inputToken, outputToken tokens.Token, amount *big.Int, recipient common.Address, message []byte, crossSwap *tokens.CrossSwap) (*tokens.SuggestedFees, error) {
	req := &tokens.SuggestedFeesRequest{
		InputToken:  inputToken,
		OutputToken: outputToken,
		Amount:      amount,
		Recipient:   recipient,
		Message:     message,
	}
	if crossSwap != nil {
		req.Depositor = crossSwap.Depositor
	}
	fees, err := s.provider.SuggestedFees(ctx, req)
	if err != nil {
		return nil, err
	}
	if fees.IsAmountTooLow {
		var minDeposit *big.Int
		if fees.Limits != nil {
			minDeposit = fees.Limits.MinDeposit
		}
		log.Debug("bridge amount too low", "route", routeString(inputToken, outputToken), "amount", amount, "minDeposit", minDeposit)
		return nil, tokens.NewAmountTooLowError("bridge amount below min deposit", minDeposit, amount)
	}
	return fees, nil
}

func (s *Strategy) calcOutputAmount(inputToken, outputToken tokens.Token, inputAmount *big.Int, fees *tokens.SuggestedFees) (*big.Int, error) {
	if fees.OutputAmount != nil {
		if fees.OutputAmount.Sign() <= 0 {
			return nil, tokens.NewAmountTooLowError("bridge output is not positive", big.NewInt(1), fees.OutputAmount)
		}
		return new(big.Int).Set(fees.OutputAmount), nil
	}
	netInput := new(big.Int).Sub(inputAmount, cmn.BigOrZero(fees.TotalRelayFee.Total))
	if netInput.Sign() <= 0 {
		return nil, tokens.NewAmountTooLowError("bridge fee exceeds input", cmn.BigOrZero(fees.TotalRelayFee.Total), inputAmount)
	}
	return tokens.ConvertTokenValue(netInput, inputToken.Decimals, outputToken.Decimals), nil
}

func (s *Strategy) newBridgeQuote(inputToken, outputToken tokens.Token, inputAmount, outputAmount *big.Int, recipient common.Address, message []byte, fees *tokens.SuggestedFees) *tokens.BridgeQuote {
	return &tokens.BridgeQuote{
		InputToken:           inputToken,
		OutputToken:          outputToken,
		InputAmount:          new(big.Int).Set(inputAmount),
		OutputAmount:         outputAmount,
		MinOutputAmount:      outputAmount,
		EstimatedFillTimeSec: fees.EstimatedFillTimeSec,
		Fees:                 tokens.ExtractFeeBreakdown(fees, inputToken),
		Provider:             Name,
		Recipient:            recipient,
		Message:              message,
		SuggestedFees:        fees,
	}
}

func (s *Strategy) getMulticallHandler(chainID uint64) (common.Address, error) {
	chainCfg := s.cfg.GetChainConfig(chainID)
	if chainCfg == nil || chainCfg.MulticallHandler == "" {
		return common.Address{}, fmt.Errorf("%w: no multicall handler on chain %v", tokens.ErrMissEntryPoint, chainID)
	}
	return common.HexToAddress(chainCfg.MulticallHandler), nil
}

func routeString(inputToken, outputToken tokens.Token) string {
	return fmt.Sprintf("%v->%v", inputToken, outputToken)
}
