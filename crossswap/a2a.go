package crossswap

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/anyswap/CrossSwap-Router/executor"
	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

func (c *Composer) originSwapMarkup() decimal.Decimal {
	if c.cfg.Routing == nil {
		return decimal.RequireFromString(params.DefaultOriginSwapMarkup)
	}
	return c.cfg.Routing.GetOriginSwapMarkup()
}

func (c *Composer) a2aChunkSize() int {
	if c.cfg.Routing == nil {
		return params.DefaultA2AChunkSize
	}
	return c.cfg.Routing.GetA2AChunkSize()
}

// a2aRoutes bridge routes between the chains the strategy supports, preferred bridge tokens first
func (c *Composer) a2aRoutes(strategy tokens.BridgeStrategy, crossSwap *tokens.CrossSwap) []*params.RouteConfig {
	originChainID, destChainID := crossSwap.InputToken.ChainID, crossSwap.OutputToken.ChainID
	var routes []*params.RouteConfig
	for _, route := range c.cfg.GetRoutesBetween(originChainID, destChainID) {
		if strategy.IsRouteSupported(c.routeToken(originChainID, route.InputSymbol), c.routeToken(destChainID, route.OutputSymbol)) {
			routes = append(routes, route)
		}
	}
	isPreferred := func(route *params.RouteConfig) bool {
		return c.cfg.Routing != nil && c.cfg.Routing.IsPreferredBridgeToken(route.InputSymbol)
	}
	slices.SortStableFunc(routes, func(a, b *params.RouteConfig) bool {
		return isPreferred(a) && !isPreferred(b)
	})
	return routes
}

// quoteA2A swap on both sides of a bridge.
// Every bridge route is a candidate, chunks of candidates are raced and the best of a chunk wins.
func (c *Composer) quoteA2A(ctx context.Context, strategy tokens.BridgeStrategy, crossSwap *tokens.CrossSwap) (*tokens.CrossSwapQuotes, error) {
	routes := c.a2aRoutes(strategy, crossSwap)
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: no bridge route from chain %v to %v",
			tokens.ErrRouteNotSupported, crossSwap.InputToken.ChainID, crossSwap.OutputToken.ChainID)
	}
	tasks := make([]executor.Task[*tokens.CrossSwapQuotes], 0, len(routes))
	for _, route := range routes {
		route := route
		tasks = append(tasks, executor.Task[*tokens.CrossSwapQuotes]{
			Name: route.InputSymbol + "->" + route.OutputSymbol,
			Run: func(ctx context.Context) (*tokens.CrossSwapQuotes, error) {
				p := &pipeline{
					Composer:      c,
					strategy:      strategy,
					crossSwap:     crossSwap,
					splitSlippage: true,
				}
				return p.quoteA2AOverRoute(ctx, route)
			},
		})
	}
	quotes, err := executor.Execute(ctx, tasks, executor.Policy[*tokens.CrossSwapQuotes]{
		Mode:      executor.PrioritySpeed,
		ChunkSize: c.a2aChunkSize(),
		Better:    betterA2AQuotes(crossSwap.IsOutputDirected()),
	})
	if err != nil {
		return nil, fmt.Errorf("no any to any route from %v to %v: %w", crossSwap.InputToken, crossSwap.OutputToken, err)
	}
	log.Debug("any to any route selected",
		"bridgeInput", quotes.BridgeQuote.InputToken, "bridgeOutput", quotes.BridgeQuote.OutputToken)
	return quotes, nil
}

// betterA2AQuotes exact input prefers more output, output directed prefers less input
func betterA2AQuotes(isOutputDirected bool) func(a, b *tokens.CrossSwapQuotes) bool {
	if isOutputDirected {
		return func(a, b *tokens.CrossSwapQuotes) bool {
			return requiredInput(a.OriginSwapQuote).Cmp(requiredInput(b.OriginSwapQuote)) < 0
		}
	}
	return func(a, b *tokens.CrossSwapQuotes) bool {
		return a.DestinationSwapQuote.MinAmountOut.Cmp(b.DestinationSwapQuote.MinAmountOut) > 0
	}
}

func (p *pipeline) quoteA2AOverRoute(ctx context.Context, route *params.RouteConfig) (*tokens.CrossSwapQuotes, error) {
	cs := p.crossSwap
	bridgeInput, err := tokens.NewToken(p.cfg, cs.InputToken.ChainID, route.InputSymbol)
	if err != nil {
		return nil, err
	}
	bridgeOutput, err := tokens.NewToken(p.cfg, cs.OutputToken.ChainID, route.OutputSymbol)
	if err != nil {
		return nil, err
	}

	if cs.IsOutputDirected() {
		bridgeQuote, destLeg, appFee, errf := p.bridgeAndSwapForOutput(ctx, bridgeInput, bridgeOutput)
		if errf != nil {
			return nil, errf
		}
		originLeg, errf := p.originSwapForBridgeInput(ctx, bridgeInput, bridgeQuote.InputAmount)
		if errf != nil {
			return nil, errf
		}
		return p.newQuotes(bridgeQuote, originLeg, destLeg, appFee)
	}

	originLeg, err := p.fetchSwap(ctx, p.originSwap(bridgeInput, cs.Amount, tokens.ExactInput, false))
	if err != nil {
		return nil, err
	}
	bridgeQuote, destLeg, appFee, err := p.bridgeAndSwapExactInput(ctx, bridgeInput, bridgeOutput, originLeg.quote.MinAmountOut)
	if err != nil {
		return nil, err
	}
	return p.newQuotes(bridgeQuote, originLeg, destLeg, appFee)
}
