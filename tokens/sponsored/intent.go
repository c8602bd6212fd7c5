// Package sponsored provides the subsidized corridor strategies selected by
// the sponsorship ladder and their unsponsored counterpart.
package sponsored

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

// strategy names
const (
	SponsoredIntentName   = "sponsored-intent"
	UnsponsoredIntentName = "unsponsored-intent"
)

const sponsoredFillTimeSec = 10

var _ tokens.BridgeStrategy = &IntentStrategy{}

// IntentStrategy intent based corridor strategy.
// The sponsored variant charges no fees, the unsponsored variant is priced
// by the default strategy and re-denominated into the output token.
type IntentStrategy struct {
	cfg      *params.RouterConfig
	eligible bool
	fallback tokens.BridgeStrategy
}

// NewIntentStrategy new intent strategy, fallback builds txs and prices unsponsored quotes
func NewIntentStrategy(cfg *params.RouterConfig, eligible bool, fallback tokens.BridgeStrategy) *IntentStrategy {
	return &IntentStrategy{
		cfg:      cfg,
		eligible: eligible,
		fallback: fallback,
	}
}

// Name name
func (s *IntentStrategy) Name() string {
	if s.eligible {
		return SponsoredIntentName
	}
	return UnsponsoredIntentName
}

// IsSponsored is sponsored variant
func (s *IntentStrategy) IsSponsored() bool {
	return s.eligible
}

// Capabilities capabilities
func (s *IntentStrategy) Capabilities() tokens.Capabilities {
	return tokens.Capabilities{SupportsMessage: true}
}

// OriginTxNeedsAllowance same as fallback
func (s *IntentStrategy) OriginTxNeedsAllowance() bool {
	return s.fallback.OriginTxNeedsAllowance()
}

// IsRouteSupported eligible pair with an enabled route
func (s *IntentStrategy) IsRouteSupported(inputToken, outputToken tokens.Token) bool {
	return isEligibleRoute(s.cfg, inputToken, outputToken) &&
		s.cfg.HasRoute(inputToken.ChainID, outputToken.ChainID, inputToken.Symbol, outputToken.Symbol)
}

// GetCrossSwapTypes only bridgeable to bridgeable
func (s *IntentStrategy) GetCrossSwapTypes(p *tokens.CrossSwapTypesParams) []tokens.CrossSwapType {
	if s.IsRouteSupported(p.InputToken, p.OutputToken) {
		return []tokens.CrossSwapType{tokens.BridgeableToBridgeable}
	}
	return nil
}

// GetBridgeQuoteRecipient same as fallback
func (s *IntentStrategy) GetBridgeQuoteRecipient(crossSwap *tokens.CrossSwap, hasOriginSwap bool) (common.Address, error) {
	return s.fallback.GetBridgeQuoteRecipient(crossSwap, hasOriginSwap)
}

// GetBridgeQuoteMessage same as fallback
func (s *IntentStrategy) GetBridgeQuoteMessage(crossSwap *tokens.CrossSwap, appFee *tokens.AppFee, originSwapQuote *tokens.SwapQuote) ([]byte, error) {
	return s.fallback.GetBridgeQuoteMessage(crossSwap, appFee, originSwapQuote)
}

// GetQuoteForExactInput quote by exact input
func (s *IntentStrategy) GetQuoteForExactInput(ctx context.Context, p *tokens.ExactInputQuoteParams) (*tokens.BridgeQuote, error) {
	if !s.eligible {
		fp := *p
		fp.OutputToken = s.bridgeableCounterpart(p.InputToken, p.OutputToken)
		quote, err := s.fallback.GetQuoteForExactInput(ctx, &fp)
		if err != nil {
			return nil, err
		}
		return s.redenominate(quote, p.OutputToken), nil
	}
	if p.ExactInputAmount == nil || p.ExactInputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bridge amount must be positive", tokens.ErrInvalidParam)
	}
	outputAmount := tokens.ConvertTokenValue(p.ExactInputAmount, p.InputToken.Decimals, p.OutputToken.Decimals)
	return newZeroFeeQuote(s.Name(), p.InputToken, p.OutputToken, p.ExactInputAmount, outputAmount, p.Recipient, p.Message)
}

// GetQuoteForOutput quote by min output
func (s *IntentStrategy) GetQuoteForOutput(ctx context.Context, p *tokens.OutputQuoteParams) (*tokens.BridgeQuote, error) {
	if p.MinOutputAmount == nil || p.MinOutputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: min output amount must be positive", tokens.ErrInvalidParam)
	}
	if !s.eligible {
		fp := *p
		fp.OutputToken = s.bridgeableCounterpart(p.InputToken, p.OutputToken)
		fp.MinOutputAmount = tokens.ConvertTokenValueCeil(p.MinOutputAmount, p.OutputToken.Decimals, fp.OutputToken.Decimals)
		quote, err := s.fallback.GetQuoteForOutput(ctx, &fp)
		if err != nil {
			return nil, err
		}
		quote = s.redenominate(quote, p.OutputToken)
		if err = tokens.AssertMinAmount("unsponsored output below min output", p.MinOutputAmount, quote.OutputAmount); err != nil {
			return nil, err
		}
		return quote, nil
	}
	inputAmount := tokens.ConvertTokenValueCeil(p.MinOutputAmount, p.OutputToken.Decimals, p.InputToken.Decimals)
	outputAmount := tokens.ConvertTokenValue(inputAmount, p.InputToken.Decimals, p.OutputToken.Decimals)
	if p.ForceExactOutput {
		outputAmount = p.MinOutputAmount
	}
	return newZeroFeeQuote(s.Name(), p.InputToken, p.OutputToken, inputAmount, outputAmount, p.Recipient, p.Message)
}

// BuildTxForAllowanceHolder deposit through the fallback entry points
func (s *IntentStrategy) BuildTxForAllowanceHolder(ctx context.Context, quotes *tokens.CrossSwapQuotes, integratorID string) (*tokens.OriginTx, error) {
	return s.fallback.BuildTxForAllowanceHolder(ctx, quotes, integratorID)
}

// bridgeableCounterpart token of the input symbol on the output chain,
// the output token itself if the input symbol is not deployed there
func (s *IntentStrategy) bridgeableCounterpart(inputToken, outputToken tokens.Token) tokens.Token {
	counterpart, err := tokens.NewToken(s.cfg, outputToken.ChainID, inputToken.Symbol)
	if err != nil {
		return outputToken
	}
	return counterpart
}

// redenominate express the fallback quote in the decimals of the output token
func (s *IntentStrategy) redenominate(quote *tokens.BridgeQuote, outputToken tokens.Token) *tokens.BridgeQuote {
	cp := *quote
	fromDecimals := quote.OutputToken.Decimals
	cp.OutputToken = outputToken
	cp.OutputAmount = tokens.ConvertTokenValue(quote.OutputAmount, fromDecimals, outputToken.Decimals)
	cp.MinOutputAmount = tokens.ConvertTokenValue(quote.MinOutputAmount, fromDecimals, outputToken.Decimals)
	cp.Provider = s.Name()
	return &cp
}

func isEligibleRoute(cfg *params.RouterConfig, inputToken, outputToken tokens.Token) bool {
	if cfg.Sponsorship == nil || inputToken.ChainID == outputToken.ChainID {
		return false
	}
	return cfg.Sponsorship.IsEligiblePair(inputToken.Symbol, outputToken.Symbol)
}

func newZeroFeeQuote(name string, inputToken, outputToken tokens.Token, inputAmount, outputAmount *big.Int, recipient common.Address, message []byte) (*tokens.BridgeQuote, error) {
	if outputAmount == nil || outputAmount.Sign() <= 0 {
		return nil, tokens.NewAmountTooLowError("sponsored output is not positive", big.NewInt(1), outputAmount)
	}
	return &tokens.BridgeQuote{
		InputToken:           inputToken,
		OutputToken:          outputToken,
		InputAmount:          new(big.Int).Set(inputAmount),
		OutputAmount:         new(big.Int).Set(outputAmount),
		MinOutputAmount:      new(big.Int).Set(outputAmount),
		EstimatedFillTimeSec: sponsoredFillTimeSec,
		Fees:                 tokens.ZeroFeeBreakdown(inputToken),
		Provider:             name,
		Recipient:            recipient,
		Message:              message,
	}, nil
}
