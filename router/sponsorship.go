package router

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

// EligibilityPreChecks facts of the sponsorship ladder, computed once per request.
// Every gate is false unless it was positively verified.
type EligibilityPreChecks struct {
	AmountUsd                    decimal.Decimal
	IsEligiblePair               bool
	IsWithinGlobalDailyLimit     bool
	IsWithinUserDailyLimit       bool
	IsWithinAccountCreationLimit bool
	IsAboveMintBurnThreshold     bool
}

// ComputeEligibilityPreChecks compute sponsorship facts.
// Usage or account lookup failures leave the gates closed.
func ComputeEligibilityPreChecks(ctx context.Context, cfg *params.SponsorshipConfig, usage SponsorshipUsageReader, accounts AccountChecker, p *RouteParams, now time.Time) *EligibilityPreChecks {
	amountUsd := p.AmountUsd()
	checks := &EligibilityPreChecks{
		AmountUsd:                amountUsd,
		IsEligiblePair:           cfg.IsEligiblePair(p.InputToken.Symbol, p.OutputToken.Symbol),
		IsAboveMintBurnThreshold: amountUsd.GreaterThanOrEqual(cfg.GetMintBurnThresholdUsd()),
	}
	if !checks.IsEligiblePair || usage == nil {
		return checks
	}

	used, err := usage.GetSponsorshipUsage(ctx, p.Depositor, now)
	if err != nil {
		log.Warn("get sponsorship usage failed", "depositor", p.Depositor.String(), "err", err)
		return checks
	}
	checks.IsWithinGlobalDailyLimit = used.GlobalVolumeUsd.Add(amountUsd).LessThanOrEqual(cfg.GetGlobalDailyLimitUsd())
	checks.IsWithinUserDailyLimit = used.UserVolumeUsd.Add(amountUsd).LessThanOrEqual(cfg.GetUserDailyLimitUsd())

	needsAccount := false
	if accounts != nil {
		exists, errf := accounts.AccountExists(ctx, p.DestChainID(), p.Recipient)
		if errf != nil {
			log.Warn("check destination account failed", "chainID", p.DestChainID(), "recipient", p.Recipient.String(), "err", errf)
			return checks
		}
		needsAccount = !exists
	}
	checks.IsWithinAccountCreationLimit = !needsAccount || used.AccountsCreated < cfg.AccountCreationDailyLimit
	return checks
}

// SponsorshipRules sponsorship ladder in evaluation order
var SponsorshipRules = []RoutingRule[*EligibilityPreChecks]{
	{
		Name:      "ineligible-pair",
		Predicate: func(c *EligibilityPreChecks) bool { return !c.IsEligiblePair },
		Resolve:   resolveUnsponsored,
		Reason:    "token pair is not sponsored",
	},
	{
		Name:      "global-daily-limit",
		Predicate: func(c *EligibilityPreChecks) bool { return !c.IsWithinGlobalDailyLimit },
		Resolve:   resolveUnsponsored,
		Reason:    "global daily sponsorship volume exhausted",
	},
	{
		Name:      "user-daily-limit",
		Predicate: func(c *EligibilityPreChecks) bool { return !c.IsWithinUserDailyLimit },
		Resolve:   resolveUnsponsored,
		Reason:    "user daily sponsorship volume exhausted",
	},
	{
		Name:      "account-creation-limit",
		Predicate: func(c *EligibilityPreChecks) bool { return !c.IsWithinAccountCreationLimit },
		Resolve:   resolveUnsponsored,
		Reason:    "daily account creation subsidy exhausted",
	},
	{
		Name:      "sponsored-mint-burn",
		Predicate: func(c *EligibilityPreChecks) bool { return c.IsAboveMintBurnThreshold },
		Resolve: func(c *Candidates, _ *EligibilityPreChecks) tokens.BridgeStrategy {
			return c.SponsoredMintBurn
		},
		Reason: "sponsored amount above mint burn threshold",
	},
	{
		Name: "sponsored-intent",
		Resolve: func(c *Candidates, _ *EligibilityPreChecks) tokens.BridgeStrategy {
			return c.SponsoredIntent
		},
		Reason: "sponsored amount below mint burn threshold",
	},
}

func resolveUnsponsored(c *Candidates, _ *EligibilityPreChecks) tokens.BridgeStrategy {
	return c.UnsponsoredIntent
}
