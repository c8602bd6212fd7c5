// Package swapapi implements the quote apis of the router server.
package swapapi

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"

	"github.com/anyswap/CrossSwap-Router/common"
	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/router"
	"github.com/anyswap/CrossSwap-Router/router/bridge"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

var (
	validate = validator.New()

	errServicesNotReady = fmt.Errorf("%w: router services are not initialized", tokens.ErrPreconditionFailed)
)

func getServices() (*bridge.Services, error) {
	s := bridge.GetServices()
	if s == nil {
		return nil, errServicesNotReady
	}
	return s, nil
}

// GetServerInfo get server info
func GetServerInfo() *ServerInfo {
	info := &ServerInfo{
		Version: params.VersionWithMeta,
	}
	s := bridge.GetServices()
	if s == nil {
		return info
	}
	info.Identifier = s.Config.Identifier
	info.Strategies = s.Registry.StrategyNames()
	for _, apiCfg := range s.Config.Providers.SwapAPIs {
		info.SwapAPIs = append(info.SwapAPIs, apiCfg.Name)
	}
	return info
}

// GetQuote compose cross swap quotes, build the origin tx if required
func GetQuote(ctx context.Context, args *QuoteArgs) (*QuoteResult, error) {
	s, err := getServices()
	if err != nil {
		return nil, err
	}
	crossSwap, err := ParseQuoteArgs(s.Config, args)
	if err != nil {
		return nil, err
	}
	quotes, err := s.Composer.GetCrossSwapQuotes(ctx, crossSwap)
	if err != nil {
		log.Info("get cross swap quote failed",
			"origin", crossSwap.InputToken.String(), "destination", crossSwap.OutputToken.String(),
			"amount", crossSwap.Amount, "type", crossSwap.Type, "err", err)
		return nil, err
	}
	result := &QuoteResult{
		ID:        uuid.New(),
		Timestamp: time.Now().Unix(),
		Quotes:    quotes,
	}
	if args.Gasless {
		result.GaslessTx, err = buildGaslessTx(ctx, s, quotes, args)
	} else if args.BuildTx {
		result.SwapTx, err = buildSwapTx(ctx, s, quotes, args)
	}
	if err != nil {
		return nil, err
	}
	log.Info("get cross swap quote success", "id", result.ID,
		"crossSwapType", quotes.CrossSwapType, "strategy", quotes.Strategy,
		"amount", crossSwap.Amount, "outputAmount", quotes.BridgeQuote.OutputAmount,
		"buildTx", args.BuildTx, "gasless", args.Gasless)
	return result, nil
}

func getStrategy(s *bridge.Services, name string) (tokens.BridgeStrategy, error) {
	strategy, exist := s.Registry.GetStrategy(name)
	if !exist {
		return nil, fmt.Errorf("%w: unknown bridge strategy %v", tokens.ErrPreconditionFailed, name)
	}
	return strategy, nil
}

func buildSwapTx(ctx context.Context, s *bridge.Services, quotes *tokens.CrossSwapQuotes, args *QuoteArgs) (*tokens.OriginTx, error) {
	strategy, err := getStrategy(s, quotes.Strategy)
	if err != nil {
		return nil, err
	}
	return strategy.BuildTxForAllowanceHolder(ctx, quotes, args.IntegratorID)
}

func buildGaslessTx(ctx context.Context, s *bridge.Services, quotes *tokens.CrossSwapQuotes, args *QuoteArgs) (*tokens.GaslessTx, error) {
	strategy, err := getStrategy(s, quotes.Strategy)
	if err != nil {
		return nil, err
	}
	gaslessStrategy, ok := strategy.(tokens.GaslessBridgeStrategy)
	if !ok || !strategy.Capabilities().SupportsGasless {
		return nil, fmt.Errorf("%w: bridge strategy %v does not support gasless", tokens.ErrInvalidParam, strategy.Name())
	}
	return gaslessStrategy.BuildGaslessTx(ctx, quotes, args.IntegratorID, args.Permit)
}

// ResolveStrategy resolve the bridge strategy of a request without quoting
func ResolveStrategy(ctx context.Context, args *QuoteArgs) (*ResolveResult, error) {
	s, err := getServices()
	if err != nil {
		return nil, err
	}
	crossSwap, err := ParseQuoteArgs(s.Config, args)
	if err != nil {
		return nil, err
	}
	decision := s.Registry.Resolve(ctx, router.NewRouteParams(crossSwap))
	if decision.Strategy == nil {
		return nil, fmt.Errorf("%w: %v", tokens.ErrRouteNotSupported, decision.Reason)
	}
	return &ResolveResult{
		Strategy: decision.StrategyName(),
		Rule:     decision.Rule,
		Reason:   decision.Reason,
	}, nil
}

// ParseQuoteArgs validate quote args and convert to cross swap
func ParseQuoteArgs(cfg *params.RouterConfig, args *QuoteArgs) (*tokens.CrossSwap, error) {
	if args == nil {
		return nil, fmt.Errorf("%w: empty quote args", tokens.ErrInvalidParam)
	}
	if err := validate.Struct(args); err != nil {
		return nil, fmt.Errorf("%w: %v", tokens.ErrInvalidParam, err)
	}
	amount, ok := new(big.Int).SetString(args.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive integer, got '%v'", tokens.ErrInvalidParam, args.Amount)
	}
	amountType, err := tokens.ParseAmountType(args.TradeType)
	if err != nil {
		return nil, err
	}
	inputToken, isInputNative, err := resolveToken(cfg, args.OriginChainID, args.InputToken, args.InputDecimals)
	if err != nil {
		return nil, err
	}
	outputToken, isOutputNative, err := resolveToken(cfg, args.DestinationChainID, args.OutputToken, args.OutputDecimals)
	if err != nil {
		return nil, err
	}
	depositor, err := parseAddress("depositor", args.Depositor)
	if err != nil {
		return nil, err
	}
	recipient := depositor
	if args.Recipient != "" {
		if recipient, err = parseAddress("recipient", args.Recipient); err != nil {
			return nil, err
		}
	}
	var refundAddress ethcommon.Address
	if args.RefundAddress != "" {
		if refundAddress, err = parseAddress("refundAddress", args.RefundAddress); err != nil {
			return nil, err
		}
	}
	slippage, err := parseSlippage(args.SlippageTolerance)
	if err != nil {
		return nil, err
	}
	appFee, err := parseAppFee(args.AppFee, args.AppFeeRecipient)
	if err != nil {
		return nil, err
	}
	if len(args.IncludeSources) > 0 && len(args.ExcludeSources) > 0 {
		return nil, fmt.Errorf("%w: can not specify both includeSources and excludeSources", tokens.ErrInvalidParam)
	}
	if args.Gasless && args.Permit == nil {
		return nil, fmt.Errorf("%w: gasless quote requires permit", tokens.ErrInvalidParam)
	}
	return &tokens.CrossSwap{
		Amount:          amount,
		InputToken:      inputToken,
		OutputToken:     outputToken,
		Depositor:       depositor,
		Recipient:       recipient,
		Slippage:        slippage,
		Type:            amountType,
		IsInputNative:   isInputNative,
		IsOutputNative:  isOutputNative,
		RefundOnOrigin:  args.RefundOnOrigin,
		RefundAddress:   refundAddress,
		EmbeddedActions: args.Actions,
		AppFee:          appFee,
		ExcludeSources:  args.ExcludeSources,
		IncludeSources:  args.IncludeSources,
	}, nil
}

func parseAddress(name, address string) (ethcommon.Address, error) {
	addr, ok := eth.ParseAddress(address)
	if !ok {
		return ethcommon.Address{}, fmt.Errorf("%w: wrong %v address '%v'", tokens.ErrInvalidParam, name, address)
	}
	return addr, nil
}

// native token is replaced by the wrapped native token of the chain
func resolveToken(cfg *params.RouterConfig, chainID uint64, address string, decimals uint8) (token tokens.Token, isNative bool, err error) {
	if cfg.GetChainConfig(chainID) == nil {
		return token, false, fmt.Errorf("%w: unsupported chain %v", tokens.ErrInvalidParam, chainID)
	}
	addr, err := parseAddress("token", address)
	if err != nil {
		return token, false, err
	}
	if tokens.IsNativeAddress(addr) {
		token, err = tokens.GetWrappedNativeToken(cfg, chainID)
		return token, true, err
	}
	token = tokens.ResolveToken(cfg, chainID, addr, decimals)
	if !tokens.IsKnownToken(token) && decimals == 0 {
		return token, false, fmt.Errorf("%w: must specify decimals of unknown token %v on chain %v", tokens.ErrInvalidParam, address, chainID)
	}
	return token, false, nil
}

func parseSlippage(slippage string) (tokens.Slippage, error) {
	if slippage == "" {
		return tokens.AutoSlippage, nil
	}
	var result tokens.Slippage
	err := result.UnmarshalJSON([]byte(strconv.Quote(slippage)))
	return result, err
}

func parseAppFee(fee, recipient string) (*tokens.AppFee, error) {
	if fee == "" {
		if recipient != "" {
			return nil, fmt.Errorf("%w: appFeeRecipient without appFee", tokens.ErrInvalidParam)
		}
		return nil, nil
	}
	fraction, err := decimal.NewFromString(fee)
	if err != nil || fraction.IsNegative() || fraction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: app fee must be a fraction in [0, 1), got '%v'", tokens.ErrInvalidParam, fee)
	}
	if fraction.IsZero() {
		return nil, nil
	}
	feeRecipient, err := parseAddress("appFeeRecipient", recipient)
	if err != nil {
		return nil, err
	}
	return &tokens.AppFee{
		Fraction:  fraction,
		Recipient: feeRecipient,
	}, nil
}

// GetChainConfig get chain config
func GetChainConfig(chainIDStr string) (*params.ChainConfig, error) {
	s, err := getServices()
	if err != nil {
		return nil, err
	}
	chainID, err := common.GetUint64FromStr(chainIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong chain id '%v'", tokens.ErrInvalidParam, chainIDStr)
	}
	chainCfg := s.Config.GetChainConfig(chainID)
	if chainCfg == nil {
		return nil, fmt.Errorf("%w: unsupported chain %v", tokens.ErrInvalidParam, chainID)
	}
	return chainCfg, nil
}

// GetRoutes get bridge routes between chains
func GetRoutes(originChainIDStr, destChainIDStr string) ([]*params.RouteConfig, error) {
	s, err := getServices()
	if err != nil {
		return nil, err
	}
	originChainID, err := common.GetUint64FromStr(originChainIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong chain id '%v'", tokens.ErrInvalidParam, originChainIDStr)
	}
	destChainID, err := common.GetUint64FromStr(destChainIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong chain id '%v'", tokens.ErrInvalidParam, destChainIDStr)
	}
	routes := s.Config.GetRoutesBetween(originChainID, destChainID)
	if routes == nil {
		routes = []*params.RouteConfig{}
	}
	return routes, nil
}
