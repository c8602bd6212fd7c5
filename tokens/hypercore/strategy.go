// Package hypercore moves tokens from hyperevm to hypercore by transferring
// them to the token system address. The core side credits the sender, so the
// depositor must be the recipient and no calls can be attached.
package hypercore

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

// Name strategy name
const Name = "hypercore"

// AccountActivationFee fee in whole input tokens charged when the recipient has no core account
const AccountActivationFee = "1"

const estimatedFillTimeSec = 5

var _ tokens.BridgeStrategy = &Strategy{}

// Strategy hypercore system address transfer strategy
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
	return tokens.Capabilities{}
}

// OriginTxNeedsAllowance plain erc20 transfer
func (s *Strategy) OriginTxNeedsAllowance() bool {
	return false
}

// IsRouteSupported origin chain is connected to the output core chain and
// the token has a system address
func (s *Strategy) IsRouteSupported(inputToken, outputToken tokens.Token) bool {
	if !tokens.EqualSymbol(inputToken.Symbol, outputToken.Symbol) {
		return false
	}
	coreCfg := s.getCoreConfig(inputToken.ChainID)
	if coreCfg == nil || coreCfg.CoreChainID != outputToken.ChainID {
		return false
	}
	_, err := s.getSystemAddress(inputToken)
	return err == nil
}

// GetCrossSwapTypes only bridgeable to bridgeable
func (s *Strategy) GetCrossSwapTypes(p *tokens.CrossSwapTypesParams) []tokens.CrossSwapType {
	if s.IsRouteSupported(p.InputToken, p.OutputToken) {
		return []tokens.CrossSwapType{tokens.BridgeableToBridgeable}
	}
	return nil
}

// GetBridgeQuoteRecipient recipient after checking preconditions
func (s *Strategy) GetBridgeQuoteRecipient(crossSwap *tokens.CrossSwap, hasOriginSwap bool) (common.Address, error) {
	if err := CheckPreconditions(crossSwap, hasOriginSwap); err != nil {
		return common.Address{}, err
	}
	return crossSwap.Recipient, nil
}

// GetBridgeQuoteMessage no message
func (s *Strategy) GetBridgeQuoteMessage(crossSwap *tokens.CrossSwap, appFee *tokens.AppFee, originSwapQuote *tokens.SwapQuote) ([]byte, error) {
	if !appFee.IsZero() {
		return nil, fmt.Errorf("%w: %v forbids app fee", tokens.ErrPreconditionFailed, Name)
	}
	return nil, CheckPreconditions(crossSwap, originSwapQuote != nil)
}

// CheckPreconditions depositor must be recipient, no app fee, actions or swaps
func CheckPreconditions(crossSwap *tokens.CrossSwap, hasOriginSwap bool) error {
	if crossSwap == nil {
		return nil
	}
	switch {
	case hasOriginSwap:
		return fmt.Errorf("%w: %v forbids origin swap", tokens.ErrPreconditionFailed, Name)
	case crossSwap.Depositor != crossSwap.Recipient:
		return fmt.Errorf("%w: %v requires depositor to be recipient", tokens.ErrPreconditionFailed, Name)
	case !crossSwap.AppFee.IsZero():
		return fmt.Errorf("%w: %v forbids app fee", tokens.ErrPreconditionFailed, Name)
	case crossSwap.NeedsMulticallHandler(false):
		return fmt.Errorf("%w: %v forbids embedded actions", tokens.ErrPreconditionFailed, Name)
	}
	return nil
}

// GetQuoteForExactInput value is carried 1:1 minus the activation fee of new accounts
func (s *Strategy) GetQuoteForExactInput(ctx context.Context, p *tokens.ExactInputQuoteParams) (*tokens.BridgeQuote, error) {
	if err := CheckPreconditions(p.CrossSwap, false); err != nil {
		return nil, err
	}
	if p.ExactInputAmount == nil || p.ExactInputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bridge amount must be positive", tokens.ErrInvalidParam)
	}
	fee, err := s.getActivationFee(ctx, p.InputToken, p.OutputToken.ChainID, p.Recipient)
	if err != nil {
		return nil, err
	}
	return newBridgeQuote(p.InputToken, p.OutputToken, p.ExactInputAmount, fee, p.Recipient)
}

// GetQuoteForOutput input is the converted min output plus the activation fee
func (s *Strategy) GetQuoteForOutput(ctx context.Context, p *tokens.OutputQuoteParams) (*tokens.BridgeQuote, error) {
	if err := CheckPreconditions(p.CrossSwap, false); err != nil {
		return nil, err
	}
	if p.MinOutputAmount == nil || p.MinOutputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: min output amount must be positive", tokens.ErrInvalidParam)
	}
	fee, err := s.getActivationFee(ctx, p.InputToken, p.OutputToken.ChainID, p.Recipient)
	if err != nil {
		return nil, err
	}
	netInput := tokens.ConvertTokenValueCeil(p.MinOutputAmount, p.OutputToken.Decimals, p.InputToken.Decimals)
	inputAmount := new(big.Int).Add(netInput, fee)
	return newBridgeQuote(p.InputToken, p.OutputToken, inputAmount, fee, p.Recipient)
}

// BuildTxForAllowanceHolder erc20 transfer to the system address
func (s *Strategy) BuildTxForAllowanceHolder(_ context.Context, quotes *tokens.CrossSwapQuotes, _ string) (*tokens.OriginTx, error) {
	if err := CheckPreconditions(quotes.CrossSwap, quotes.OriginSwapQuote != nil); err != nil {
		return nil, err
	}
	if quotes.DestinationSwapQuote != nil {
		return nil, fmt.Errorf("%w: %v forbids destination swap", tokens.ErrPreconditionFailed, Name)
	}
	bridgeQuote := quotes.BridgeQuote
	systemAddress, err := s.getSystemAddress(bridgeQuote.InputToken)
	if err != nil {
		return nil, err
	}
	data, err := eth.EncodeTransfer(systemAddress, bridgeQuote.InputAmount)
	if err != nil {
		return nil, err
	}
	return &tokens.OriginTx{
		ChainID: bridgeQuote.InputToken.ChainID,
		From:    quotes.CrossSwap.Depositor,
		To:      bridgeQuote.InputToken.Address,
		Data:    data,
		Value:   big.NewInt(0),
	}, nil
}

func (s *Strategy) getActivationFee(ctx context.Context, inputToken tokens.Token, coreChainID uint64, recipient common.Address) (*big.Int, error) {
	coreCfg := s.getCoreConfig(inputToken.ChainID)
	if coreCfg == nil || coreCfg.CoreChainID != coreChainID {
		return nil, fmt.Errorf("%w: chain %v is not connected to core chain %v", tokens.ErrRouteNotSupported, inputToken.ChainID, coreChainID)
	}
	if coreCfg.CoreUserExistsPre == "" || s.reader == nil {
		return big.NewInt(0), nil
	}
	exists, err := s.reader.CoreUserExists(ctx, inputToken.ChainID, common.HexToAddress(coreCfg.CoreUserExistsPre), recipient)
	if err != nil {
		log.Warn("check core user exists failed", "chainID", inputToken.ChainID, "user", recipient.Hex(), "err", err)
		return nil, tokens.WrapRPCQueryError(err, "coreUserExists", recipient.Hex())
	}
	if exists {
		return big.NewInt(0), nil
	}
	return tokens.ToBits(AccountActivationFee, inputToken.Decimals), nil
}

// AccountExists whether user has an account on core chain.
// Chains without a connected evm chain need no account.
func (s *Strategy) AccountExists(ctx context.Context, coreChainID uint64, user common.Address) (bool, error) {
	if s.reader == nil {
		return true, nil
	}
	for _, chainCfg := range s.cfg.Chains {
		coreCfg := chainCfg.HyperCore
		if coreCfg == nil || coreCfg.CoreChainID != coreChainID || coreCfg.CoreUserExistsPre == "" {
			continue
		}
		exists, err := s.reader.CoreUserExists(ctx, chainCfg.ChainID, common.HexToAddress(coreCfg.CoreUserExistsPre), user)
		if err != nil {
			return false, tokens.WrapRPCQueryError(err, "coreUserExists", user.Hex())
		}
		return exists, nil
	}
	return true, nil
}

func (s *Strategy) getCoreConfig(chainID uint64) *params.HyperCoreConfig {
	chainCfg := s.cfg.GetChainConfig(chainID)
	if chainCfg == nil {
		return nil
	}
	return chainCfg.HyperCore
}

func (s *Strategy) getSystemAddress(token tokens.Token) (common.Address, error) {
	coreCfg := s.getCoreConfig(token.ChainID)
	if coreCfg != nil {
		for symbol, address := range coreCfg.SystemAddresses {
			if tokens.EqualSymbol(symbol, token.Symbol) {
				return common.HexToAddress(address), nil
			}
		}
	}
	return common.Address{}, fmt.Errorf("%w: no system address of %v on chain %v", tokens.ErrMissEntryPoint, token.Symbol, token.ChainID)
}

func newBridgeQuote(inputToken, outputToken tokens.Token, inputAmount, fee *big.Int, recipient common.Address) (*tokens.BridgeQuote, error) {
	netInput := new(big.Int).Sub(inputAmount, fee)
	if netInput.Sign() <= 0 {
		return nil, tokens.NewAmountTooLowError("account activation fee exceeds input", fee, inputAmount)
	}
	outputAmount := tokens.ConvertTokenValue(netInput, inputToken.Decimals, outputToken.Decimals)
	return &tokens.BridgeQuote{
		InputToken:           inputToken,
		OutputToken:          outputToken,
		InputAmount:          new(big.Int).Set(inputAmount),
		OutputAmount:         outputAmount,
		MinOutputAmount:      outputAmount,
		EstimatedFillTimeSec: estimatedFillTimeSec,
		Fees:                 tokens.NewFeeBreakdown(inputToken, fee, inputAmount),
		Provider:             Name,
		Recipient:            recipient,
	}, nil
}
