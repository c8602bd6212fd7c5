package crossswap

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/metrics"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/router"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

// StrategyResolver resolves the bridge strategy of a route
type StrategyResolver interface {
	ResolveStrategy(ctx context.Context, p *router.RouteParams) tokens.BridgeStrategy
}

// Composer cross swap quote composer
type Composer struct {
	cfg      *params.RouterConfig
	resolver StrategyResolver
	swapAPIs []tokens.QuoteFetchStrategy
}

// NewComposer new composer. swap apis are raced in the given order.
func NewComposer(cfg *params.RouterConfig, resolver StrategyResolver, swapAPIs []tokens.QuoteFetchStrategy) *Composer {
	return &Composer{
		cfg:      cfg,
		resolver: resolver,
		swapAPIs: swapAPIs,
	}
}

// GetCrossSwapQuotes resolve the bridge strategy and compose the quotes of a cross swap
func (c *Composer) GetCrossSwapQuotes(ctx context.Context, crossSwap *tokens.CrossSwap) (*tokens.CrossSwapQuotes, error) {
	if err := checkCrossSwap(crossSwap); err != nil {
		return nil, err
	}
	strategy := c.resolver.ResolveStrategy(ctx, router.NewRouteParams(crossSwap))
	if strategy == nil {
		return nil, fmt.Errorf("%w: no bridge strategy for %v -> %v",
			tokens.ErrRouteNotSupported, crossSwap.InputToken, crossSwap.OutputToken)
	}
	return c.GetCrossSwapQuotesWithStrategy(ctx, crossSwap, strategy)
}

// GetCrossSwapQuotesWithStrategy compose quotes with a given strategy.
// Topologies are tried in classification order, the first success wins.
func (c *Composer) GetCrossSwapQuotesWithStrategy(ctx context.Context, crossSwap *tokens.CrossSwap, strategy tokens.BridgeStrategy) (*tokens.CrossSwapQuotes, error) {
	crossSwapTypes, err := Classify(strategy, crossSwap)
	if err != nil {
		return nil, err
	}
	var firstErr error
	for _, crossSwapType := range crossSwapTypes {
		start := time.Now()
		quotes, errf := c.compose(ctx, crossSwapType, strategy, crossSwap)
		metrics.ObserveQuoteLatency(crossSwapType.ShortName(), strategy.Name(), time.Since(start), errf)
		if errf == nil {
			quotes.CrossSwapType = crossSwapType
			quotes.Strategy = strategy.Name()
			log.Info("compose cross swap quotes success",
				"type", crossSwapType.ShortName(), "strategy", strategy.Name(),
				"inputToken", crossSwap.InputToken, "outputToken", crossSwap.OutputToken,
				"amount", crossSwap.Amount, "amountType", crossSwap.Type,
				"bridgeInput", quotes.BridgeQuote.InputAmount, "bridgeOutput", quotes.BridgeQuote.OutputAmount)
			return quotes, nil
		}
		log.Debug("compose cross swap quotes failed",
			"type", crossSwapType.ShortName(), "strategy", strategy.Name(), "err", errf)
		if firstErr == nil {
			firstErr = errf
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, firstErr
}

func checkCrossSwap(crossSwap *tokens.CrossSwap) error {
	if crossSwap == nil {
		return fmt.Errorf("%w: empty cross swap", tokens.ErrInvalidParam)
	}
	if crossSwap.Amount == nil || crossSwap.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", tokens.ErrInvalidParam)
	}
	if crossSwap.InputToken.ChainID == crossSwap.OutputToken.ChainID {
		return fmt.Errorf("%w: origin and destination chain are the same", tokens.ErrInvalidParam)
	}
	if crossSwap.Recipient == (common.Address{}) {
		return fmt.Errorf("%w: empty recipient", tokens.ErrInvalidParam)
	}
	return nil
}

func (c *Composer) compose(ctx context.Context, crossSwapType tokens.CrossSwapType, strategy tokens.BridgeStrategy, crossSwap *tokens.CrossSwap) (*tokens.CrossSwapQuotes, error) {
	p := &pipeline{
		Composer:  c,
		strategy:  strategy,
		crossSwap: crossSwap,
	}
	switch crossSwapType {
	case tokens.BridgeableToBridgeable:
		return p.quoteB2B(ctx)
	case tokens.BridgeableToAny:
		return p.quoteB2A(ctx)
	case tokens.AnyToBridgeable:
		return p.quoteA2B(ctx)
	case tokens.AnyToAny:
		return c.quoteA2A(ctx, strategy, crossSwap)
	default:
		return nil, fmt.Errorf("%w: cross swap type %v", tokens.ErrNotImplemented, crossSwapType)
	}
}

// pipeline one topology attempt of a cross swap
type pipeline struct {
	*Composer
	strategy      tokens.BridgeStrategy
	crossSwap     *tokens.CrossSwap
	splitSlippage bool
}

// grossOutput output to deliver before the app fee is taken, and the charged app fee
func (p *pipeline) grossOutput() (*big.Int, *tokens.AppFee) {
	cs := p.crossSwap
	gross := cs.AppFee.GrossUp(cs.Amount)
	return gross, cs.AppFee.WithAmount(new(big.Int).Sub(gross, cs.Amount))
}

// chargeAppFee app fee charged on a known final output
func (p *pipeline) chargeAppFee(output *big.Int) *tokens.AppFee {
	fee := p.crossSwap.AppFee
	if fee.IsZero() {
		return fee
	}
	return fee.WithAmount(fee.FeeOf(output))
}

func (p *pipeline) newQuotes(bridgeQuote *tokens.BridgeQuote, originLeg, destLeg *swapLeg, appFee *tokens.AppFee) (*tokens.CrossSwapQuotes, error) {
	cs := p.crossSwap
	quotes := &tokens.CrossSwapQuotes{
		CrossSwap:   cs,
		BridgeQuote: bridgeQuote,
		AppFee:      appFee,
	}
	if chain := p.cfg.GetChainConfig(cs.InputToken.ChainID); chain != nil && chain.SpokePool != "" {
		spokePool := common.HexToAddress(chain.SpokePool)
		quotes.Contracts.SpokePool = spokePool
		quotes.Contracts.DepositEntryPoint = tokens.EntryPoint{Name: tokens.EntryPointSpokePool, Address: spokePool}
	}
	if originLeg != nil {
		quotes.OriginSwapQuote = originLeg.quote
		quotes.Contracts.OriginRouter = originLeg.router
		quotes.Contracts.DepositEntryPoint = originLeg.entryPoints.SwapAndBridge
	}
	if destLeg != nil {
		quotes.DestinationSwapQuote = destLeg.quote
		quotes.Contracts.DestinationRouter = destLeg.router
	}
	if cs.NeedsMulticallHandler(destLeg != nil) {
		handler, err := p.multicallHandler(cs.OutputToken.ChainID)
		if err != nil {
			return nil, err
		}
		quotes.Contracts.MulticallHandler = handler
	}
	return quotes, nil
}

func (c *Composer) multicallHandler(chainID uint64) (common.Address, error) {
	chain := c.cfg.GetChainConfig(chainID)
	if chain == nil || chain.MulticallHandler == "" {
		return common.Address{}, fmt.Errorf("%w: no multicall handler on chain %v", tokens.ErrMissEntryPoint, chainID)
	}
	return common.HexToAddress(chain.MulticallHandler), nil
}

// pickRoute first route matching, routes also satisfying prefer come first
func pickRoute(routes []*params.RouteConfig, match, prefer func(*params.RouteConfig) bool) *params.RouteConfig {
	var fallback *params.RouteConfig
	for _, route := range routes {
		if !match(route) {
			continue
		}
		if prefer(route) {
			return route
		}
		if fallback == nil {
			fallback = route
		}
	}
	return fallback
}

func sameSymbolRoute(route *params.RouteConfig) bool {
	return tokens.EqualSymbol(route.InputSymbol, route.OutputSymbol)
}

// bridgeOutputToken bridgeable destination token of a bridgeable input
func (p *pipeline) bridgeOutputToken() (tokens.Token, error) {
	cs := p.crossSwap
	originChainID, destChainID := cs.InputToken.ChainID, cs.OutputToken.ChainID
	route := pickRoute(p.cfg.GetRoutesBetween(originChainID, destChainID),
		func(r *params.RouteConfig) bool {
			return tokens.EqualSymbol(r.InputSymbol, cs.InputToken.Symbol) &&
				p.strategy.IsRouteSupported(cs.InputToken, p.routeToken(destChainID, r.OutputSymbol))
		}, sameSymbolRoute)
	if route == nil {
		return tokens.Token{}, fmt.Errorf("%w: %v is not bridgeable to chain %v",
			tokens.ErrRouteNotSupported, cs.InputToken, destChainID)
	}
	return tokens.NewToken(p.cfg, destChainID, route.OutputSymbol)
}

// bridgeInputToken bridgeable origin token of a bridgeable output
func (p *pipeline) bridgeInputToken() (tokens.Token, error) {
	cs := p.crossSwap
	originChainID, destChainID := cs.InputToken.ChainID, cs.OutputToken.ChainID
	route := pickRoute(p.cfg.GetRoutesBetween(originChainID, destChainID),
		func(r *params.RouteConfig) bool {
			return tokens.EqualSymbol(r.OutputSymbol, cs.OutputToken.Symbol) &&
				p.strategy.IsRouteSupported(p.routeToken(originChainID, r.InputSymbol), cs.OutputToken)
		}, sameSymbolRoute)
	if route == nil {
		return tokens.Token{}, fmt.Errorf("%w: %v is not bridgeable from chain %v",
			tokens.ErrRouteNotSupported, cs.OutputToken, originChainID)
	}
	return tokens.NewToken(p.cfg, originChainID, route.InputSymbol)
}

// routeToken token of a configured route, zero token if unknown
func (c *Composer) routeToken(chainID uint64, symbol string) tokens.Token {
	token, err := tokens.NewToken(c.cfg, chainID, symbol)
	if err != nil {
		return tokens.Token{ChainID: chainID, Symbol: symbol}
	}
	return token
}
