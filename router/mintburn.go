package router

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

var utilizationScale = big.NewInt(1e18)

// BridgeStrategyData facts of the mint burn ladder, computed once per request
type BridgeStrategyData struct {
	InputSymbol               string
	AmountUsd                 decimal.Decimal
	IsSameAsset               bool
	IsLowLiquidityChain       bool
	IsBelowLowLiquidityLimit  bool
	IsUtilizationHigh         bool
	IsFastSettlingChain       bool
	IsOutsideFastSettlingBand bool
	CanFillInstantly          bool
	IsVeryLargeDeposit        bool
}

// ComputeBridgeStrategyData compute mint burn facts from route limits
func ComputeBridgeStrategyData(ctx context.Context, cfg *params.MintBurnConfig, provider LimitsProvider, p *RouteParams) (*BridgeStrategyData, error) {
	limits, err := provider.Limits(ctx, &tokens.LimitsRequest{
		InputToken:  p.InputToken,
		OutputToken: p.OutputToken,
	})
	if err != nil {
		return nil, err
	}
	amountUsd := p.AmountUsd()
	originChainID, destChainID := p.OriginChainID(), p.DestChainID()
	data := &BridgeStrategyData{
		InputSymbol:         p.InputToken.Symbol,
		AmountUsd:           amountUsd,
		IsSameAsset:         tokens.EqualSymbol(p.InputToken.Symbol, p.OutputToken.Symbol),
		IsLowLiquidityChain: cfg.IsLowLiquidityChain(originChainID) || cfg.IsLowLiquidityChain(destChainID),
		IsFastSettlingChain: cfg.IsFastSettlingChain(originChainID),
		IsVeryLargeDeposit:  amountUsd.GreaterThanOrEqual(cfg.GetVeryLargeDepositUsd()),
	}
	data.IsBelowLowLiquidityLimit = amountUsd.LessThan(cfg.GetLowLiquidityLimitUsd())
	data.IsOutsideFastSettlingBand = amountUsd.LessThan(cfg.GetFastSettlingMinUsd()) ||
		amountUsd.GreaterThan(cfg.GetFastSettlingMaxUsd())
	if limits != nil {
		data.IsUtilizationHigh = IsUtilizationHigh(limits, cfg.GetUtilizationThreshold())
		inputAmount := p.InputAmount()
		data.CanFillInstantly = limits.MaxDepositInstant != nil && inputAmount != nil &&
			inputAmount.Cmp(limits.MaxDepositInstant) <= 0
	}
	return data, nil
}

// IsUtilizationHigh utilized / (liquid + utilized) is above threshold
func IsUtilizationHigh(limits *tokens.Limits, threshold decimal.Decimal) bool {
	utilized := limits.UtilizedReserves
	if utilized == nil || utilized.Sign() <= 0 {
		return false
	}
	total := new(big.Int).Set(utilized)
	if limits.LiquidReserves != nil {
		total.Add(total, limits.LiquidReserves)
	}
	scaledThreshold := threshold.Mul(decimal.NewFromBigInt(utilizationScale, 0)).BigInt()
	lhs := new(big.Int).Mul(utilized, utilizationScale)
	rhs := new(big.Int).Mul(total, scaledThreshold)
	return lhs.Cmp(rhs) > 0
}

// MintBurnRules mint burn ladder in evaluation order
var MintBurnRules = []RoutingRule[*BridgeStrategyData]{
	{
		Name:      "different-asset",
		Predicate: func(d *BridgeStrategyData) bool { return !d.IsSameAsset },
		Resolve:   resolveDefault[*BridgeStrategyData],
		Reason:    "mint burn moves the same asset only",
	},
	{
		Name:      "low-liquidity-chain-small-deposit",
		Predicate: func(d *BridgeStrategyData) bool { return d.IsLowLiquidityChain && d.IsBelowLowLiquidityLimit },
		Resolve:   resolveDefault[*BridgeStrategyData],
		Reason:    "small deposit on low liquidity chain",
	},
	{
		Name:      "low-liquidity-chain",
		Predicate: func(d *BridgeStrategyData) bool { return d.IsLowLiquidityChain },
		Resolve: func(c *Candidates, _ *BridgeStrategyData) tokens.BridgeStrategy {
			if c.MintBurnBySymbol != nil {
				return c.MintBurnBySymbol
			}
			return c.Default
		},
		Reason: "large deposit on low liquidity chain",
	},
	{
		Name:      "high-utilization",
		Predicate: func(d *BridgeStrategyData) bool { return d.IsUtilizationHigh },
		Resolve:   resolveMintBurn[*BridgeStrategyData],
		Reason:    "pool utilization above threshold",
	},
	{
		Name:      "fast-settling-chain-out-of-band",
		Predicate: func(d *BridgeStrategyData) bool { return d.IsFastSettlingChain && d.IsOutsideFastSettlingBand },
		Resolve:   resolveDefault[*BridgeStrategyData],
		Reason:    "fast settling origin with amount outside band",
	},
	{
		Name:      "fast-settling-chain",
		Predicate: func(d *BridgeStrategyData) bool { return d.IsFastSettlingChain },
		Resolve:   resolveMintBurn[*BridgeStrategyData],
		Reason:    "fast settling origin with amount inside band",
	},
	{
		Name:      "instant-fill",
		Predicate: func(d *BridgeStrategyData) bool { return d.CanFillInstantly },
		Resolve:   resolveDefault[*BridgeStrategyData],
		Reason:    "deposit can be filled instantly",
	},
	{
		Name:      "very-large-deposit",
		Predicate: func(d *BridgeStrategyData) bool { return d.IsVeryLargeDeposit },
		Resolve:   resolveDefault[*BridgeStrategyData],
		Reason:    "very large deposit",
	},
	{
		Name:    "mint-burn-fallback",
		Resolve: resolveMintBurn[*BridgeStrategyData],
		Reason:  "no earlier rule matched",
	},
}
