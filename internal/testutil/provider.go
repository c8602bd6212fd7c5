package testutil

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

var _ tokens.BridgeQuoteProvider = &FakeBridgeProvider{}

// FakeBridgeProvider charges FeeBps of the amount as relay fee
type FakeBridgeProvider struct {
	FeeBps      int64
	MinDeposit  *big.Int
	RouteLimits *tokens.Limits
	FeesErr     error
	LimitsErr   error

	feesCalls   int32
	limitsCalls int32
}

// SuggestedFees impl tokens.BridgeQuoteProvider
func (p *FakeBridgeProvider) SuggestedFees(_ context.Context, req *tokens.SuggestedFeesRequest) (*tokens.SuggestedFees, error) {
	atomic.AddInt32(&p.feesCalls, 1)
	if p.FeesErr != nil {
		return nil, p.FeesErr
	}
	total := new(big.Int).Mul(req.Amount, big.NewInt(p.FeeBps))
	total.Div(total, big.NewInt(10000))
	pct := new(big.Int).Mul(tokens.PctScale, big.NewInt(p.FeeBps))
	pct.Div(pct, big.NewInt(10000))
	fee := tokens.RawFee{Pct: pct, Total: total}
	zero := tokens.RawFee{Pct: big.NewInt(0), Total: big.NewInt(0)}
	return &tokens.SuggestedFees{
		TotalRelayFee:        fee,
		RelayerCapitalFee:    fee,
		RelayerGasFee:        zero,
		LpFee:                zero,
		QuoteTimestamp:       1700000000,
		FillDeadline:         1700003600,
		EstimatedFillTimeSec: 10,
		IsAmountTooLow:       p.MinDeposit != nil && req.Amount.Cmp(p.MinDeposit) < 0,
		Limits:               &tokens.Limits{MinDeposit: p.MinDeposit},
	}, nil
}

// Limits impl tokens.BridgeQuoteProvider
func (p *FakeBridgeProvider) Limits(context.Context, *tokens.LimitsRequest) (*tokens.Limits, error) {
	atomic.AddInt32(&p.limitsCalls, 1)
	if p.LimitsErr != nil {
		return nil, p.LimitsErr
	}
	return p.RouteLimits, nil
}

// FeesCalls count of suggested fees calls
func (p *FakeBridgeProvider) FeesCalls() int {
	return int(atomic.LoadInt32(&p.feesCalls))
}

// LimitsCalls count of limits calls
func (p *FakeBridgeProvider) LimitsCalls() int {
	return int(atomic.LoadInt32(&p.limitsCalls))
}

// MustToken token of symbol on chain from config
func MustToken(t testing.TB, cfg *params.RouterConfig, chainID uint64, symbol string) tokens.Token {
	t.Helper()
	token, err := tokens.NewToken(cfg, chainID, symbol)
	require.NoError(t, err)
	return token
}
