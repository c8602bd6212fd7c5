// Package cctp is the mint and burn bridge strategy over the usdc token messenger.
package cctp

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	cmn "github.com/anyswap/CrossSwap-Router/common"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

// Name strategy name
const Name = "cctp"

// finality thresholds of burn messages
const (
	FinalityThresholdFast     uint32 = 1000
	FinalityThresholdStandard uint32 = 2000
)

const (
	bpsDenominator          = 10000
	fastTransferFillTimeSec = 20
)

var _ tokens.BridgeStrategy = &Strategy{}

// Strategy cctp bridge strategy
type Strategy struct {
	cfg *params.RouterConfig
}

// NewStrategy new strategy
func NewStrategy(cfg *params.RouterConfig) *Strategy {
	return &Strategy{cfg: cfg}
}

// Name name
func (s *Strategy) Name() string {
	return Name
}

// Capabilities capabilities
func (s *Strategy) Capabilities() tokens.Capabilities {
	return tokens.Capabilities{IsMintBurn: true}
}

// OriginTxNeedsAllowance burn token needs allowance to the token messenger
func (s *Strategy) OriginTxNeedsAllowance() bool {
	return true
}

// IsRouteSupported same symbol cctp token between two cctp chains
func (s *Strategy) IsRouteSupported(inputToken, outputToken tokens.Token) bool {
	return IsCCTPRoute(s.cfg, inputToken, outputToken)
}

// IsCCTPRoute is cctp route
func IsCCTPRoute(cfg *params.RouterConfig, inputToken, outputToken tokens.Token) bool {
	if !tokens.IsKnownToken(inputToken) || !tokens.EqualSymbol(inputToken.Symbol, outputToken.Symbol) {
		return false
	}
	if inputToken.ChainID == outputToken.ChainID {
		return false
	}
	if cfg.Routing.MintBurn == nil || cfg.Routing.MintBurn.GetMintBurnStrategy(inputToken.Symbol) != Name {
		return false
	}
	return GetCCTPConfig(cfg, inputToken.ChainID) != nil && GetCCTPConfig(cfg, outputToken.ChainID) != nil
}

// GetCCTPConfig get cctp config of chain
func GetCCTPConfig(cfg *params.RouterConfig, chainID uint64) *params.CCTPConfig {
	chainCfg := cfg.GetChainConfig(chainID)
	if chainCfg == nil {
		return nil
	}
	return chainCfg.CCTP
}

// GetCrossSwapTypes only bridgeable to bridgeable
func (s *Strategy) GetCrossSwapTypes(p *tokens.CrossSwapTypesParams) []tokens.CrossSwapType {
	if s.IsRouteSupported(p.InputToken, p.OutputToken) {
		return []tokens.CrossSwapType{tokens.BridgeableToBridgeable}
	}
	return nil
}

// GetBridgeQuoteRecipient minted tokens go to the recipient directly
func (s *Strategy) GetBridgeQuoteRecipient(crossSwap *tokens.CrossSwap, hasOriginSwap bool) (common.Address, error) {
	if err := assertPlainTransfer(crossSwap, hasOriginSwap); err != nil {
		return common.Address{}, err
	}
	return crossSwap.Recipient, nil
}

// GetBridgeQuoteMessage no message
func (s *Strategy) GetBridgeQuoteMessage(crossSwap *tokens.CrossSwap, _ *tokens.AppFee, originSwapQuote *tokens.SwapQuote) ([]byte, error) {
	return nil, assertPlainTransfer(crossSwap, originSwapQuote != nil)
}

func assertPlainTransfer(crossSwap *tokens.CrossSwap, hasOriginSwap bool) error {
	if hasOriginSwap || crossSwap.NeedsMulticallHandler(false) {
		return fmt.Errorf("%w: %v supports plain transfers only", tokens.ErrPreconditionFailed, Name)
	}
	return nil
}

// GetQuoteForExactInput fast transfer fee is charged in bps of the burn amount
func (s *Strategy) GetQuoteForExactInput(_ context.Context, p *tokens.ExactInputQuoteParams) (*tokens.BridgeQuote, error) {
	feeBps, err := s.getFastFeeBps(p.InputToken)
	if err != nil {
		return nil, err
	}
	return newBridgeQuote(p.InputToken, p.OutputToken, p.ExactInputAmount, feeBps, p.Recipient)
}

// GetQuoteForOutput gross up the min output by the fast transfer fee
func (s *Strategy) GetQuoteForOutput(_ context.Context, p *tokens.OutputQuoteParams) (*tokens.BridgeQuote, error) {
	if p.MinOutputAmount == nil || p.MinOutputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: min output amount must be positive", tokens.ErrInvalidParam)
	}
	feeBps, err := s.getFastFeeBps(p.InputToken)
	if err != nil {
		return nil, err
	}
	netInput := tokens.ConvertTokenValueCeil(p.MinOutputAmount, p.OutputToken.Decimals, p.InputToken.Decimals)
	inputAmount := cmn.CeilDiv(
		new(big.Int).Mul(netInput, big.NewInt(bpsDenominator)),
		big.NewInt(int64(bpsDenominator-feeBps)),
	)
	quote, err := newBridgeQuote(p.InputToken, p.OutputToken, inputAmount, feeBps, p.Recipient)
	if err != nil {
		return nil, err
	}
	if err = tokens.AssertMinAmount("burn output below min output", p.MinOutputAmount, quote.OutputAmount); err != nil {
		return nil, err
	}
	return quote, nil
}

// BuildTxForAllowanceHolder build depositForBurn tx on the token messenger
func (s *Strategy) BuildTxForAllowanceHolder(_ context.Context, quotes *tokens.CrossSwapQuotes, integratorID string) (*tokens.OriginTx, error) {
	if quotes.OriginSwapQuote != nil {
		return nil, fmt.Errorf("%w: %v does not support origin swap", tokens.ErrPreconditionFailed, Name)
	}
	originCfg := GetCCTPConfig(s.cfg, quotes.BridgeQuote.InputToken.ChainID)
	if originCfg == nil {
		return nil, fmt.Errorf("%w: no token messenger on chain %v", tokens.ErrMissEntryPoint, quotes.BridgeQuote.InputToken.ChainID)
	}
	return BuildBurnTx(s.cfg, quotes, common.HexToAddress(originCfg.TokenMessenger), common.Address{}, nil, integratorID)
}

// BuildBurnTx build depositForBurn tx calling messenger
func BuildBurnTx(cfg *params.RouterConfig, quotes *tokens.CrossSwapQuotes, messenger, destinationCaller common.Address, hookData []byte, integratorID string) (*tokens.OriginTx, error) {
	bridgeQuote := quotes.BridgeQuote
	destCfg := GetCCTPConfig(cfg, bridgeQuote.OutputToken.ChainID)
	if destCfg == nil {
		return nil, fmt.Errorf("%w: chain %v has no cctp domain", tokens.ErrRouteNotSupported, bridgeQuote.OutputToken.ChainID)
	}
	data, err := eth.EncodeDepositForBurn(&eth.BurnArgs{
		Amount:               bridgeQuote.InputAmount,
		DestinationDomain:    destCfg.Domain,
		MintRecipient:        bridgeQuote.Recipient,
		BurnToken:            bridgeQuote.InputToken.Address,
		DestinationCaller:    destinationCaller,
		MaxFee:               bridgeQuote.Fees.Total.Total,
		MinFinalityThreshold: FinalityThresholdFast,
		HookData:             hookData,
	})
	if err != nil {
		return nil, err
	}
	if data, err = eth.TagIntegratorID(data, integratorID); err != nil {
		return nil, err
	}
	return &tokens.OriginTx{
		ChainID: bridgeQuote.InputToken.ChainID,
		From:    quotes.CrossSwap.Depositor,
		To:      messenger,
		Data:    data,
		Value:   big.NewInt(0),
		Approvals: []*tokens.Approval{{
			Token:   bridgeQuote.InputToken.Address,
			Spender: messenger,
			Amount:  bridgeQuote.InputAmount,
		}},
	}, nil
}

func (s *Strategy) getFastFeeBps(inputToken tokens.Token) (uint64, error) {
	originCfg := GetCCTPConfig(s.cfg, inputToken.ChainID)
	if originCfg == nil {
		return 0, fmt.Errorf("%w: chain %v has no cctp domain", tokens.ErrRouteNotSupported, inputToken.ChainID)
	}
	if originCfg.FastFeeBps >= bpsDenominator {
		return 0, fmt.Errorf("%w: invalid fast fee bps %v", tokens.ErrPreconditionFailed, originCfg.FastFeeBps)
	}
	return originCfg.FastFeeBps, nil
}

func newBridgeQuote(inputToken, outputToken tokens.Token, inputAmount *big.Int, feeBps uint64, recipient common.Address) (*tokens.BridgeQuote, error) {
	if inputAmount == nil || inputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bridge amount must be positive", tokens.ErrInvalidParam)
	}
	fee := cmn.CeilDiv(
		new(big.Int).Mul(inputAmount, new(big.Int).SetUint64(feeBps)),
		big.NewInt(bpsDenominator),
	)
	netInput := new(big.Int).Sub(inputAmount, fee)
	if netInput.Sign() <= 0 {
		return nil, tokens.NewAmountTooLowError("fast transfer fee exceeds input", fee, inputAmount)
	}
	outputAmount := tokens.ConvertTokenValue(netInput, inputToken.Decimals, outputToken.Decimals)
	if outputAmount.Sign() <= 0 {
		return nil, tokens.NewAmountTooLowError("burn output is not positive", big.NewInt(1), outputAmount)
	}
	return &tokens.BridgeQuote{
		InputToken:           inputToken,
		OutputToken:          outputToken,
		InputAmount:          new(big.Int).Set(inputAmount),
		OutputAmount:         outputAmount,
		MinOutputAmount:      outputAmount,
		EstimatedFillTimeSec: fastTransferFillTimeSec,
		Fees:                 tokens.NewFeeBreakdown(inputToken, fee, inputAmount),
		Provider:             Name,
		Recipient:            recipient,
	}, nil
}
