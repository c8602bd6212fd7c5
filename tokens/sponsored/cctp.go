package sponsored

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/cctp"
)

// SponsoredCCTPName strategy name
const SponsoredCCTPName = "sponsored-cctp"

var _ tokens.BridgeStrategy = &CCTPStrategy{}

// CCTPStrategy sponsored burn through the sponsored periphery,
// which swaps the minted token into the output token on destination
type CCTPStrategy struct {
	cfg *params.RouterConfig
}

// NewSponsoredCCTPStrategy new sponsored cctp strategy
func NewSponsoredCCTPStrategy(cfg *params.RouterConfig) *CCTPStrategy {
	return &CCTPStrategy{cfg: cfg}
}

// Name name
func (s *CCTPStrategy) Name() string {
	return SponsoredCCTPName
}

// Capabilities capabilities
func (s *CCTPStrategy) Capabilities() tokens.Capabilities {
	return tokens.Capabilities{IsMintBurn: true}
}

// OriginTxNeedsAllowance the periphery pulls the burn token
func (s *CCTPStrategy) OriginTxNeedsAllowance() bool {
	return true
}

// IsRouteSupported eligible pair, cctp burn token and a sponsored periphery on origin
func (s *CCTPStrategy) IsRouteSupported(inputToken, outputToken tokens.Token) bool {
	if !isEligibleRoute(s.cfg, inputToken, outputToken) {
		return false
	}
	mintBurn := s.cfg.Routing.MintBurn
	if mintBurn == nil || mintBurn.GetMintBurnStrategy(inputToken.Symbol) != cctp.Name {
		return false
	}
	originCfg := cctp.GetCCTPConfig(s.cfg, inputToken.ChainID)
	if originCfg == nil || originCfg.SponsoredPeriphery == "" {
		return false
	}
	return cctp.GetCCTPConfig(s.cfg, outputToken.ChainID) != nil
}

// GetCrossSwapTypes only bridgeable to bridgeable
func (s *CCTPStrategy) GetCrossSwapTypes(p *tokens.CrossSwapTypesParams) []tokens.CrossSwapType {
	if s.IsRouteSupported(p.InputToken, p.OutputToken) {
		return []tokens.CrossSwapType{tokens.BridgeableToBridgeable}
	}
	return nil
}

// GetBridgeQuoteRecipient final recipient, passed in hook data
func (s *CCTPStrategy) GetBridgeQuoteRecipient(crossSwap *tokens.CrossSwap, hasOriginSwap bool) (common.Address, error) {
	if err := assertPlainTransfer(crossSwap, hasOriginSwap); err != nil {
		return common.Address{}, err
	}
	return crossSwap.Recipient, nil
}

// GetBridgeQuoteMessage no handler message
func (s *CCTPStrategy) GetBridgeQuoteMessage(crossSwap *tokens.CrossSwap, _ *tokens.AppFee, originSwapQuote *tokens.SwapQuote) ([]byte, error) {
	return nil, assertPlainTransfer(crossSwap, originSwapQuote != nil)
}

// GetQuoteForExactInput zero fee decimal conversion
func (s *CCTPStrategy) GetQuoteForExactInput(_ context.Context, p *tokens.ExactInputQuoteParams) (*tokens.BridgeQuote, error) {
	if p.ExactInputAmount == nil || p.ExactInputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bridge amount must be positive", tokens.ErrInvalidParam)
	}
	outputAmount := tokens.ConvertTokenValue(p.ExactInputAmount, p.InputToken.Decimals, p.OutputToken.Decimals)
	return newZeroFeeQuote(s.Name(), p.InputToken, p.OutputToken, p.ExactInputAmount, outputAmount, p.Recipient, nil)
}

// GetQuoteForOutput zero fee decimal conversion rounding input up
func (s *CCTPStrategy) GetQuoteForOutput(_ context.Context, p *tokens.OutputQuoteParams) (*tokens.BridgeQuote, error) {
	if p.MinOutputAmount == nil || p.MinOutputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: min output amount must be positive", tokens.ErrInvalidParam)
	}
	inputAmount := tokens.ConvertTokenValueCeil(p.MinOutputAmount, p.OutputToken.Decimals, p.InputToken.Decimals)
	outputAmount := tokens.ConvertTokenValue(inputAmount, p.InputToken.Decimals, p.OutputToken.Decimals)
	if p.ForceExactOutput {
		outputAmount = p.MinOutputAmount
	}
	return newZeroFeeQuote(s.Name(), p.InputToken, p.OutputToken, inputAmount, outputAmount, p.Recipient, nil)
}

// BuildTxForAllowanceHolder burn with hook through the sponsored periphery
func (s *CCTPStrategy) BuildTxForAllowanceHolder(_ context.Context, quotes *tokens.CrossSwapQuotes, integratorID string) (*tokens.OriginTx, error) {
	if quotes.OriginSwapQuote != nil {
		return nil, fmt.Errorf("%w: %v does not support origin swap", tokens.ErrPreconditionFailed, SponsoredCCTPName)
	}
	bridgeQuote := quotes.BridgeQuote
	originCfg := cctp.GetCCTPConfig(s.cfg, bridgeQuote.InputToken.ChainID)
	if originCfg == nil || originCfg.SponsoredPeriphery == "" {
		return nil, fmt.Errorf("%w: no sponsored periphery on chain %v", tokens.ErrMissEntryPoint, bridgeQuote.InputToken.ChainID)
	}
	periphery := common.HexToAddress(originCfg.SponsoredPeriphery)
	return cctp.BuildBurnTx(s.cfg, quotes, periphery, common.Address{}, EncodeHookData(bridgeQuote), integratorID)
}

// EncodeHookData final recipient and output token as two bytes32 words
func EncodeHookData(bridgeQuote *tokens.BridgeQuote) []byte {
	recipient := tokens.AddressToBytes32(bridgeQuote.Recipient)
	outputToken := tokens.AddressToBytes32(bridgeQuote.OutputToken.Address)
	hookData := make([]byte, 0, 64)
	hookData = append(hookData, recipient[:]...)
	hookData = append(hookData, outputToken[:]...)
	return hookData
}

func assertPlainTransfer(crossSwap *tokens.CrossSwap, hasOriginSwap bool) error {
	if hasOriginSwap || crossSwap.NeedsMulticallHandler(false) {
		return fmt.Errorf("%w: %v supports plain transfers only", tokens.ErrPreconditionFailed, SponsoredCCTPName)
	}
	return nil
}
