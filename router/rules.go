package router

import (
	"github.com/anyswap/CrossSwap-Router/tokens"
)

// RoutingRule one rung of a routing ladder over facts of type T
type RoutingRule[T any] struct {
	Name      string
	Predicate func(facts T) bool
	Resolve   func(c *Candidates, facts T) tokens.BridgeStrategy
	Reason    string
}

// Candidates strategies a ladder rule may resolve to
type Candidates struct {
	Default           tokens.BridgeStrategy
	MintBurn          []tokens.BridgeStrategy // route capable mint burn strategies
	MintBurnBySymbol  tokens.BridgeStrategy   // configured mint burn strategy of the token
	SponsoredIntent   tokens.BridgeStrategy
	UnsponsoredIntent tokens.BridgeStrategy
	SponsoredMintBurn tokens.BridgeStrategy
}

// AnyMintBurn mint burn strategy of the token, else the first capable one
func (c *Candidates) AnyMintBurn() tokens.BridgeStrategy {
	if c.MintBurnBySymbol != nil {
		return c.MintBurnBySymbol
	}
	if len(c.MintBurn) > 0 {
		return c.MintBurn[0]
	}
	return nil
}

// EvaluateRules walk rules in order and return the first decision.
// A matched rule resolving to nil falls through to the next rule.
func EvaluateRules[T any](rules []RoutingRule[T], c *Candidates, facts T) (*Decision, bool) {
	for _, rule := range rules {
		if rule.Predicate != nil && !rule.Predicate(facts) {
			continue
		}
		strategy := rule.Resolve(c, facts)
		if strategy == nil {
			continue
		}
		return &Decision{
			Strategy: strategy,
			Rule:     rule.Name,
			Reason:   rule.Reason,
		}, true
	}
	return nil, false
}

func resolveDefault[T any](c *Candidates, _ T) tokens.BridgeStrategy {
	return c.Default
}

func resolveMintBurn[T any](c *Candidates, _ T) tokens.BridgeStrategy {
	return c.AnyMintBurn()
}
