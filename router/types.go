// Package router resolves the bridge strategy of a cross swap route.
package router

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/anyswap/CrossSwap-Router/tokens"
)

// pseudo strategy names usable in overrides
const (
	SponsorshipStrategyName = "sponsorship"
)

// RouteParams params of resolving strategy
type RouteParams struct {
	InputToken  tokens.Token
	OutputToken tokens.Token
	Amount      *big.Int
	AmountType  tokens.AmountType
	Recipient   common.Address
	Depositor   common.Address
}

// OriginChainID origin chain id
func (p *RouteParams) OriginChainID() uint64 {
	return p.InputToken.ChainID
}

// DestChainID destination chain id
func (p *RouteParams) DestChainID() uint64 {
	return p.OutputToken.ChainID
}

// AmountToken token the amount is denominated in
func (p *RouteParams) AmountToken() tokens.Token {
	if p.AmountType.IsOutputDirected() {
		return p.OutputToken
	}
	return p.InputToken
}

// InputAmount amount in input token units
func (p *RouteParams) InputAmount() *big.Int {
	if p.Amount == nil || !p.AmountType.IsOutputDirected() {
		return p.Amount
	}
	return tokens.ConvertTokenValueCeil(p.Amount, p.OutputToken.Decimals, p.InputToken.Decimals)
}

// AmountUsd usd notional of the amount, assumes a usd pegged token
func (p *RouteParams) AmountUsd() decimal.Decimal {
	token := p.AmountToken()
	return tokens.AmountToUsd(p.Amount, token.Decimals)
}

// NewRouteParams route params of cross swap
func NewRouteParams(crossSwap *tokens.CrossSwap) *RouteParams {
	return &RouteParams{
		InputToken:  crossSwap.InputToken,
		OutputToken: crossSwap.OutputToken,
		Amount:      crossSwap.Amount,
		AmountType:  crossSwap.Type,
		Recipient:   crossSwap.Recipient,
		Depositor:   crossSwap.Depositor,
	}
}

// Decision resolved strategy with the rule that decided it
type Decision struct {
	Strategy tokens.BridgeStrategy
	Rule     string
	Reason   string
}

// StrategyName name of decided strategy
func (d *Decision) StrategyName() string {
	if d == nil || d.Strategy == nil {
		return ""
	}
	return d.Strategy.Name()
}

// LimitsProvider route limits source
type LimitsProvider interface {
	Limits(ctx context.Context, req *tokens.LimitsRequest) (*tokens.Limits, error)
}

// SponsorshipUsage sponsored volume of one day
type SponsorshipUsage struct {
	GlobalVolumeUsd decimal.Decimal
	UserVolumeUsd   decimal.Decimal
	AccountsCreated uint64
}

// SponsorshipUsageReader daily sponsorship usage source
type SponsorshipUsageReader interface {
	GetSponsorshipUsage(ctx context.Context, user common.Address, day time.Time) (*SponsorshipUsage, error)
}

// AccountChecker destination account existence check
type AccountChecker interface {
	AccountExists(ctx context.Context, chainID uint64, user common.Address) (bool, error)
}
