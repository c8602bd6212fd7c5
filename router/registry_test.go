package router

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/internal/testutil"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/across"
	"github.com/anyswap/CrossSwap-Router/tokens/cctp"
	"github.com/anyswap/CrossSwap-Router/tokens/hypercore"
	"github.com/anyswap/CrossSwap-Router/tokens/oft"
	"github.com/anyswap/CrossSwap-Router/tokens/sponsored"
)

var testUser = common.HexToAddress("0x1111111111111111111111111111111111111111")

type fakeUsage struct {
	usage *SponsorshipUsage
	err   error
}

func (f *fakeUsage) GetSponsorshipUsage(context.Context, common.Address, time.Time) (*SponsorshipUsage, error) {
	return f.usage, f.err
}

type fakeAccounts struct {
	exists bool
	err    error
}

func (f *fakeAccounts) AccountExists(context.Context, uint64, common.Address) (bool, error) {
	return f.exists, f.err
}

type registryFixture struct {
	cfg      *params.RouterConfig
	provider *testutil.FakeBridgeProvider
	usage    *fakeUsage
	accounts *fakeAccounts
	registry *Registry
}

func newFixture(t *testing.T) *registryFixture {
	cfg := testutil.LoadConfig(t)
	f := &registryFixture{
		cfg: cfg,
		provider: &testutil.FakeBridgeProvider{
			FeeBps:      10,
			RouteLimits: &tokens.Limits{
				MaxDepositInstant: big.NewInt(0),
				LiquidReserves:    big.NewInt(900),
				UtilizedReserves:  big.NewInt(100),
			},
		},
		usage: &fakeUsage{usage: &SponsorshipUsage{
			GlobalVolumeUsd: decimal.Zero,
			UserVolumeUsd:   decimal.Zero,
		}},
		accounts: &fakeAccounts{exists: true},
	}
	acrossStrategy := across.NewStrategy(cfg, f.provider, nil)
	routable := []tokens.BridgeStrategy{
		cctp.NewStrategy(cfg),
		oft.NewStrategy(cfg, nil),
		hypercore.NewStrategy(cfg, nil),
	}
	registry, err := NewRegistry(cfg, acrossStrategy, routable,
		WithLimitsProvider(f.provider),
		WithSponsorship(
			sponsored.NewIntentStrategy(cfg, true, acrossStrategy),
			sponsored.NewIntentStrategy(cfg, false, acrossStrategy),
			sponsored.NewSponsoredCCTPStrategy(cfg),
			f.usage, f.accounts),
	)
	require.NoError(t, err)
	f.registry = registry
	return f
}

func (f *registryFixture) params(t *testing.T, origin, dest uint64, inSymbol, outSymbol, amount string) *RouteParams {
	input := testutil.MustToken(t, f.cfg, origin, inSymbol)
	output := testutil.MustToken(t, f.cfg, dest, outSymbol)
	return &RouteParams{
		InputToken:  input,
		OutputToken: output,
		Amount:      tokens.ToBits(amount, input.Decimals),
		AmountType:  tokens.ExactInput,
		Recipient:   testUser,
		Depositor:   testUser,
	}
}

func (f *registryFixture) setUtilization(liquid, utilized int64) {
	f.provider.RouteLimits.LiquidReserves = big.NewInt(liquid)
	f.provider.RouteLimits.UtilizedReserves = big.NewInt(utilized)
}

func TestNewRegistry(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, across.Name, f.registry.DefaultStrategy().Name())
	require.Equal(t, []string{across.Name, cctp.Name, oft.Name, hypercore.Name,
		sponsored.SponsoredIntentName, sponsored.UnsponsoredIntentName, sponsored.SponsoredCCTPName},
		f.registry.StrategyNames())

	_, err := NewRegistry(f.cfg, nil, nil)
	require.ErrorIs(t, err, tokens.ErrInvalidParam)

	cfg := testutil.LoadConfig(t)
	cfg.Routing.ChainPairOverrides = append(cfg.Routing.ChainPairOverrides,
		&params.ChainPairOverride{OriginChainID: 1, DestChainID: 10, Strategy: "unknown"})
	_, err = NewRegistry(cfg, across.NewStrategy(cfg, f.provider, nil), []tokens.BridgeStrategy{
		cctp.NewStrategy(cfg), oft.NewStrategy(cfg, nil), hypercore.NewStrategy(cfg, nil),
	})
	require.ErrorIs(t, err, tokens.ErrInvalidParam)

	// mint burn strategy of USDC is not registered
	cfg = testutil.LoadConfig(t)
	cfg.Routing.TokenPairOverrides = nil
	cfg.Routing.ChainPairOverrides = nil
	_, err = NewRegistry(cfg, across.NewStrategy(cfg, f.provider, nil), nil)
	require.ErrorIs(t, err, tokens.ErrInvalidParam)
}

func TestResolveOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	decision := f.registry.Resolve(ctx, f.params(t, 999, 1337, "USDC", "USDC", "100"))
	require.Equal(t, hypercore.Name, decision.StrategyName())
	require.Equal(t, RuleChainPairOverride, decision.Rule)

	decision = f.registry.Resolve(ctx, f.params(t, 42161, 1337, "USDC", "USDH", "100"))
	require.Equal(t, sponsored.SponsoredIntentName, decision.StrategyName())
	require.Equal(t, "sponsored-intent", decision.Rule)
	require.Zero(t, f.provider.LimitsCalls())
}

func TestResolveCapability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	decision := f.registry.Resolve(ctx, f.params(t, 1, 10, "WETH", "WETH", "1"))
	require.Equal(t, across.Name, decision.StrategyName())
	require.Equal(t, RuleSingleCapable, decision.Rule)

	decision = f.registry.Resolve(ctx, f.params(t, 8453, 42161, "USDT", "USDT", "1"))
	require.Equal(t, across.Name, decision.StrategyName())
	require.Equal(t, RuleNoCapableStrategy, decision.Rule)
	require.Zero(t, f.provider.LimitsCalls())
}

func TestResolveMintBurnLadder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resolve := func(origin, dest uint64, symbol, amount string) *Decision {
		return f.registry.Resolve(ctx, f.params(t, origin, dest, symbol, symbol, amount))
	}

	// nothing special about the route
	decision := resolve(1, 42161, "USDC", "1000")
	require.Equal(t, cctp.Name, decision.StrategyName())
	require.Equal(t, "mint-burn-fallback", decision.Rule)

	decision = resolve(1, 42161, "USDT", "1000")
	require.Equal(t, oft.Name, decision.StrategyName())

	decision = resolve(1, 42161, "USDC", "2000000")
	require.Equal(t, across.Name, decision.StrategyName())
	require.Equal(t, "very-large-deposit", decision.Rule)

	f.provider.RouteLimits.MaxDepositInstant = big.NewInt(5000000000)
	decision = resolve(1, 42161, "USDC", "1000")
	require.Equal(t, across.Name, decision.StrategyName())
	require.Equal(t, "instant-fill", decision.Rule)

	f.setUtilization(100, 900)
	decision = resolve(1, 42161, "USDC", "1000")
	require.Equal(t, cctp.Name, decision.StrategyName())
	require.Equal(t, "high-utilization", decision.Rule)

	// utilization wins over the fast settling band
	decision = resolve(10, 42161, "USDC", "100")
	require.Equal(t, cctp.Name, decision.StrategyName())
	require.Equal(t, "high-utilization", decision.Rule)

	f.setUtilization(900, 100)
	f.provider.RouteLimits.MaxDepositInstant = big.NewInt(0)
	decision = resolve(8453, 42161, "USDC", "100")
	require.Equal(t, across.Name, decision.StrategyName())
	require.Equal(t, "fast-settling-chain-out-of-band", decision.Rule)

	decision = resolve(8453, 42161, "USDC", "20000")
	require.Equal(t, cctp.Name, decision.StrategyName())
	require.Equal(t, "fast-settling-chain", decision.Rule)

	decision = resolve(42161, 999, "USDC", "100")
	require.Equal(t, across.Name, decision.StrategyName())
	require.Equal(t, "low-liquidity-chain-small-deposit", decision.Rule)

	decision = resolve(42161, 999, "USDC", "20000")
	require.Equal(t, cctp.Name, decision.StrategyName())
	require.Equal(t, "low-liquidity-chain", decision.Rule)
}

func TestResolveIsDeterministic(t *testing.T) {
	f := newFixture(t)
	p := f.params(t, 8453, 42161, "USDC", "USDC", "20000")
	first := f.registry.ResolveStrategy(context.Background(), p)
	for i := 0; i < 10; i++ {
		require.Equal(t, first.Name(), f.registry.ResolveStrategy(context.Background(), p).Name())
	}
}

func TestResolveRouteFactsFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.LimitsErr = errors.New("limits unavailable")
	decision := f.registry.Resolve(context.Background(), f.params(t, 1, 42161, "USDC", "USDC", "1000"))
	require.Equal(t, across.Name, decision.StrategyName())
	require.Equal(t, RuleRouteFactsFailed, decision.Rule)
	require.Equal(t, 1, f.provider.LimitsCalls())
}

func TestResolveSponsorshipLadder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resolve := func(amount string) *Decision {
		return f.registry.Resolve(ctx, f.params(t, 42161, 1337, "USDC", "USDH", amount))
	}

	decision := resolve("20000")
	require.Equal(t, sponsored.SponsoredCCTPName, decision.StrategyName())
	require.Equal(t, "sponsored-mint-burn", decision.Rule)

	f.usage.usage.UserVolumeUsd = decimal.NewFromInt(49500)
	decision = resolve("1000")
	require.Equal(t, sponsored.UnsponsoredIntentName, decision.StrategyName())
	require.Equal(t, "user-daily-limit", decision.Rule)

	f.usage.usage.UserVolumeUsd = decimal.Zero
	f.usage.usage.GlobalVolumeUsd = decimal.NewFromInt(999999)
	decision = resolve("1000")
	require.Equal(t, "global-daily-limit", decision.Rule)

	f.usage.usage.GlobalVolumeUsd = decimal.Zero
	f.accounts.exists = false
	f.usage.usage.AccountsCreated = 100
	decision = resolve("1000")
	require.Equal(t, sponsored.UnsponsoredIntentName, decision.StrategyName())
	require.Equal(t, "account-creation-limit", decision.Rule)

	f.usage.usage.AccountsCreated = 5
	decision = resolve("1000")
	require.Equal(t, sponsored.SponsoredIntentName, decision.StrategyName())
}

func TestSponsorshipFailsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.params(t, 42161, 1337, "USDC", "USDH", "1000")

	f.usage.err = errors.New("usage store down")
	decision := f.registry.Resolve(ctx, p)
	require.Equal(t, sponsored.UnsponsoredIntentName, decision.StrategyName())

	f.usage.err = nil
	f.accounts.err = errors.New("rpc down")
	decision = f.registry.Resolve(ctx, p)
	require.Equal(t, sponsored.UnsponsoredIntentName, decision.StrategyName())
}

func TestEvaluateRules(t *testing.T) {
	f := newFixture(t)
	candidates := &Candidates{Default: f.registry.DefaultStrategy()}

	decision, ok := EvaluateRules(MintBurnRules, candidates, &BridgeStrategyData{IsSameAsset: false, IsUtilizationHigh: true})
	require.True(t, ok)
	require.Equal(t, "different-asset", decision.Rule)

	// no mint burn candidate, every mint burn rule falls through
	decision, ok = EvaluateRules(MintBurnRules, candidates, &BridgeStrategyData{IsSameAsset: true, IsUtilizationHigh: true})
	require.False(t, ok)
	require.Nil(t, decision)
}

func TestIsUtilizationHigh(t *testing.T) {
	threshold := decimal.RequireFromString("0.8")
	limits := func(liquid, utilized int64) *tokens.Limits {
		return &tokens.Limits{LiquidReserves: big.NewInt(liquid), UtilizedReserves: big.NewInt(utilized)}
	}
	require.False(t, IsUtilizationHigh(limits(20, 80), threshold))
	require.True(t, IsUtilizationHigh(limits(19, 81), threshold))
	require.False(t, IsUtilizationHigh(limits(0, 0), threshold))
	require.True(t, IsUtilizationHigh(limits(0, 1), threshold))
}
