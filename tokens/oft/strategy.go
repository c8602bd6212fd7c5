// Package oft is the mint and burn bridge strategy over omnichain fungible token messengers.
package oft

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	cmn "github.com/anyswap/CrossSwap-Router/common"
	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

// Name strategy name
const Name = "oft"

const estimatedFillTimeSec = 60

var _ tokens.BridgeStrategy = &Strategy{}

// Strategy oft bridge strategy
type Strategy struct {
	cfg    *params.RouterConfig
	reader *eth.ContractReader
}

// NewStrategy new strategy
func NewStrategy(cfg *params.RouterConfig, reader *eth.ContractReader) *Strategy {
	return &Strategy{
		cfg:    cfg,
		reader: reader,
	}
}

// Name name
func (s *Strategy) Name() string {
	return Name
}

// Capabilities capabilities
func (s *Strategy) Capabilities() tokens.Capabilities {
	return tokens.Capabilities{IsMintBurn: true}
}

// OriginTxNeedsAllowance oft adapters pull tokens from the sender
func (s *Strategy) OriginTxNeedsAllowance() bool {
	return true
}

// IsRouteSupported same symbol oft token with messengers on both chains
func (s *Strategy) IsRouteSupported(inputToken, outputToken tokens.Token) bool {
	if !tokens.IsKnownToken(inputToken) || !tokens.EqualSymbol(inputToken.Symbol, outputToken.Symbol) {
		return false
	}
	if inputToken.ChainID == outputToken.ChainID {
		return false
	}
	if s.cfg.Routing.MintBurn == nil || s.cfg.Routing.MintBurn.GetMintBurnStrategy(inputToken.Symbol) != Name {
		return false
	}
	_, _, err := s.getMessenger(inputToken)
	if err != nil {
		return false
	}
	_, _, err = s.getMessenger(outputToken)
	return err == nil
}

// GetCrossSwapTypes only bridgeable to bridgeable
func (s *Strategy) GetCrossSwapTypes(p *tokens.CrossSwapTypesParams) []tokens.CrossSwapType {
	if s.IsRouteSupported(p.InputToken, p.OutputToken) {
		return []tokens.CrossSwapType{tokens.BridgeableToBridgeable}
	}
	return nil
}

// GetBridgeQuoteRecipient tokens are credited to the recipient directly
func (s *Strategy) GetBridgeQuoteRecipient(crossSwap *tokens.CrossSwap, hasOriginSwap bool) (common.Address, error) {
	if hasOriginSwap || crossSwap.NeedsMulticallHandler(false) {
		return common.Address{}, fmt.Errorf("%w: %v supports plain transfers only", tokens.ErrPreconditionFailed, Name)
	}
	return crossSwap.Recipient, nil
}

// GetBridgeQuoteMessage no compose message
func (s *Strategy) GetBridgeQuoteMessage(crossSwap *tokens.CrossSwap, _ *tokens.AppFee, originSwapQuote *tokens.SwapQuote) ([]byte, error) {
	_, err := s.GetBridgeQuoteRecipient(crossSwap, originSwapQuote != nil)
	return nil, err
}

// GetQuoteForExactInput send the input with dust removed, the messaging fee is paid in native
func (s *Strategy) GetQuoteForExactInput(ctx context.Context, p *tokens.ExactInputQuoteParams) (*tokens.BridgeQuote, error) {
	if p.ExactInputAmount == nil || p.ExactInputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bridge amount must be positive", tokens.ErrInvalidParam)
	}
	rate, err := s.getConversionRate(p.InputToken)
	if err != nil {
		return nil, err
	}
	amount := RemoveDust(p.ExactInputAmount, rate)
	return s.quote(ctx, p.InputToken, p.OutputToken, amount, p.Recipient)
}

// GetQuoteForOutput round the needed input up to the shared decimals
func (s *Strategy) GetQuoteForOutput(ctx context.Context, p *tokens.OutputQuoteParams) (*tokens.BridgeQuote, error) {
	if p.MinOutputAmount == nil || p.MinOutputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: min output amount must be positive", tokens.ErrInvalidParam)
	}
	rate, err := s.getConversionRate(p.InputToken)
	if err != nil {
		return nil, err
	}
	amount := tokens.ConvertTokenValueCeil(p.MinOutputAmount, p.OutputToken.Decimals, p.InputToken.Decimals)
	amount = new(big.Int).Mul(cmn.CeilDiv(amount, rate), rate)
	quote, err := s.quote(ctx, p.InputToken, p.OutputToken, amount, p.Recipient)
	if err != nil {
		return nil, err
	}
	if err = tokens.AssertMinAmount("oft output below min output", p.MinOutputAmount, quote.OutputAmount); err != nil {
		return nil, err
	}
	return quote, nil
}

// BuildTxForAllowanceHolder build send tx on the messenger, messaging fee as value
func (s *Strategy) BuildTxForAllowanceHolder(_ context.Context, quotes *tokens.CrossSwapQuotes, integratorID string) (*tokens.OriginTx, error) {
	if quotes.OriginSwapQuote != nil {
		return nil, fmt.Errorf("%w: %v does not support origin swap", tokens.ErrPreconditionFailed, Name)
	}
	bridgeQuote := quotes.BridgeQuote
	messenger, _, err := s.getMessenger(bridgeQuote.InputToken)
	if err != nil {
		return nil, err
	}
	param, err := s.newSendParam(bridgeQuote.OutputToken, bridgeQuote.InputAmount, bridgeQuote.Recipient)
	if err != nil {
		return nil, err
	}
	nativeFee := cmn.BigOrZero(bridgeQuote.MessagingFee)
	data, err := eth.EncodeOFTSend(param, &eth.MessagingFee{NativeFee: nativeFee, LzTokenFee: big.NewInt(0)}, quotes.CrossSwap.Depositor)
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
		Value:   new(big.Int).Set(nativeFee),
		Approvals: []*tokens.Approval{{
			Token:   bridgeQuote.InputToken.Address,
			Spender: messenger,
			Amount:  bridgeQuote.InputAmount,
		}},
	}, nil
}

// RemoveDust truncate amount to a multiple of rate
func RemoveDust(amount, rate *big.Int) *big.Int {
	return new(big.Int).Mul(new(big.Int).Div(amount, rate), rate)
}

func (s *Strategy) quote(ctx context.Context, inputToken, outputToken tokens.Token, amount *big.Int, recipient common.Address) (*tokens.BridgeQuote, error) {
	if amount.Sign() <= 0 {
		return nil, tokens.NewAmountTooLowError("oft amount is zero after removing dust", big.NewInt(1), amount)
	}
	messenger, _, err := s.getMessenger(inputToken)
	if err != nil {
		return nil, err
	}
	param, err := s.newSendParam(outputToken, amount, recipient)
	if err != nil {
		return nil, err
	}
	fee, err := s.reader.QuoteOFTSend(ctx, inputToken.ChainID, messenger, param)
	if err != nil {
		log.Warn("quote oft send failed", "chainID", inputToken.ChainID, "messenger", messenger.Hex(), "err", err)
		return nil, err
	}
	outputAmount := tokens.ConvertTokenValue(amount, inputToken.Decimals, outputToken.Decimals)
	return &tokens.BridgeQuote{
		InputToken:           inputToken,
		OutputToken:          outputToken,
		InputAmount:          new(big.Int).Set(amount),
		OutputAmount:         outputAmount,
		MinOutputAmount:      outputAmount,
		EstimatedFillTimeSec: estimatedFillTimeSec,
		Fees:                 tokens.ZeroFeeBreakdown(inputToken),
		Provider:             Name,
		Recipient:            recipient,
		MessagingFee:         fee.NativeFee,
	}, nil
}

func (s *Strategy) newSendParam(outputToken tokens.Token, amount *big.Int, recipient common.Address) (*eth.SendParam, error) {
	_, destCfg, err := s.getMessenger(outputToken)
	if err != nil {
		return nil, err
	}
	return &eth.SendParam{
		DstEid:      destCfg.EndpointID,
		To:          tokens.AddressToBytes32(recipient),
		AmountLD:    amount,
		MinAmountLD: amount,
	}, nil
}

func (s *Strategy) getConversionRate(inputToken tokens.Token) (*big.Int, error) {
	_, oftCfg, err := s.getMessenger(inputToken)
	if err != nil {
		return nil, err
	}
	if inputToken.Decimals <= oftCfg.SharedDecimals {
		return big.NewInt(1), nil
	}
	return cmn.BigPow(10, int64(inputToken.Decimals-oftCfg.SharedDecimals)), nil
}

func (s *Strategy) getMessenger(token tokens.Token) (common.Address, *params.OFTConfig, error) {
	chainCfg := s.cfg.GetChainConfig(token.ChainID)
	if chainCfg == nil || chainCfg.OFT == nil {
		return common.Address{}, nil, fmt.Errorf("%w: chain %v has no oft endpoint", tokens.ErrRouteNotSupported, token.ChainID)
	}
	for symbol, messenger := range chainCfg.OFT.Messengers {
		if tokens.EqualSymbol(symbol, token.Symbol) {
			return common.HexToAddress(messenger), chainCfg.OFT, nil
		}
	}
	return common.Address{}, nil, fmt.Errorf("%w: no oft messenger of %v on chain %v", tokens.ErrRouteNotSupported, token.Symbol, token.ChainID)
}
