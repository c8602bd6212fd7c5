package router

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set"

	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/metrics"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

// rule names of decisions made outside the ladders
const (
	RuleTokenPairOverride  = "token-pair-override"
	RuleChainPairOverride  = "chain-pair-override"
	RuleNoCapableStrategy  = "no-capable-strategy"
	RuleSingleCapable      = "single-capable-strategy"
	RuleNoMintBurnCapable  = "no-mint-burn-candidate"
	RuleRouteFactsFailed   = "route-facts-unavailable"
	RuleSponsorshipMissing = "sponsorship-not-configured"
)

// Registry bridge strategy registry, read only after construction
type Registry struct {
	cfg             *params.RouterConfig
	defaultStrategy tokens.BridgeStrategy
	routable        []tokens.BridgeStrategy
	strategies      map[string]tokens.BridgeStrategy
	mintBurnNames   mapset.Set

	limits   LimitsProvider
	usage    SponsorshipUsageReader
	accounts AccountChecker
	now      func() time.Time

	sponsoredIntent   tokens.BridgeStrategy
	unsponsoredIntent tokens.BridgeStrategy
	sponsoredMintBurn tokens.BridgeStrategy
}

// Option registry option
type Option func(*Registry)

// WithLimitsProvider limits source of the mint burn ladder
func WithLimitsProvider(limits LimitsProvider) Option {
	return func(r *Registry) {
		r.limits = limits
	}
}

// WithSponsorship strategies and usage sources of the sponsorship ladder
func WithSponsorship(sponsoredIntent, unsponsoredIntent, sponsoredMintBurn tokens.BridgeStrategy, usage SponsorshipUsageReader, accounts AccountChecker) Option {
	return func(r *Registry) {
		r.sponsoredIntent = sponsoredIntent
		r.unsponsoredIntent = unsponsoredIntent
		r.sponsoredMintBurn = sponsoredMintBurn
		r.usage = usage
		r.accounts = accounts
	}
}

// WithClock clock of daily usage lookups
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry new registry. routable strategies are matched by capability
// in the given order, the default strategy is always routable.
func NewRegistry(cfg *params.RouterConfig, defaultStrategy tokens.BridgeStrategy, routable []tokens.BridgeStrategy, opts ...Option) (*Registry, error) {
	if defaultStrategy == nil {
		return nil, fmt.Errorf("%w: no default bridge strategy", tokens.ErrInvalidParam)
	}
	r := &Registry{
		cfg:             cfg,
		defaultStrategy: defaultStrategy,
		strategies:      make(map[string]tokens.BridgeStrategy),
		mintBurnNames:   mapset.NewSet(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.add(defaultStrategy)
	r.routable = append(r.routable, defaultStrategy)
	for _, s := range routable {
		if s == nil || s.Name() == defaultStrategy.Name() {
			continue
		}
		if _, exist := r.strategies[s.Name()]; exist {
			return nil, fmt.Errorf("%w: duplicate bridge strategy %v", tokens.ErrInvalidParam, s.Name())
		}
		r.add(s)
		r.routable = append(r.routable, s)
	}
	for _, s := range []tokens.BridgeStrategy{r.sponsoredIntent, r.unsponsoredIntent, r.sponsoredMintBurn} {
		if s != nil {
			r.add(s)
		}
	}
	if err := r.checkOverrides(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) add(s tokens.BridgeStrategy) {
	r.strategies[s.Name()] = s
	if s.Capabilities().IsMintBurn {
		r.mintBurnNames.Add(s.Name())
	}
}

func (r *Registry) checkOverrides() error {
	routing := r.cfg.Routing
	if routing == nil {
		return nil
	}
	check := func(name string) error {
		if name == SponsorshipStrategyName {
			if r.unsponsoredIntent == nil {
				return fmt.Errorf("%w: sponsorship override without sponsorship strategies", tokens.ErrInvalidParam)
			}
			return nil
		}
		if _, exist := r.strategies[name]; !exist {
			return fmt.Errorf("%w: override names unknown bridge strategy %v", tokens.ErrInvalidParam, name)
		}
		return nil
	}
	for _, o := range routing.TokenPairOverrides {
		if err := check(o.Strategy); err != nil {
			return err
		}
	}
	for _, o := range routing.ChainPairOverrides {
		if err := check(o.Strategy); err != nil {
			return err
		}
	}
	if routing.MintBurn != nil {
		for symbol, name := range routing.MintBurn.Strategies {
			if !r.mintBurnNames.Contains(name) {
				return fmt.Errorf("%w: %v is not a mint burn strategy of %v", tokens.ErrInvalidParam, name, symbol)
			}
		}
	}
	return nil
}

// GetStrategy get strategy by name
func (r *Registry) GetStrategy(name string) (tokens.BridgeStrategy, bool) {
	s, exist := r.strategies[name]
	return s, exist
}

// DefaultStrategy default strategy
func (r *Registry) DefaultStrategy() tokens.BridgeStrategy {
	return r.defaultStrategy
}

// StrategyNames names of all registered strategies, routable ones first
func (r *Registry) StrategyNames() []string {
	names := make([]string, 0, len(r.strategies))
	seen := mapset.NewSet()
	for _, s := range r.routable {
		names = append(names, s.Name())
		seen.Add(s.Name())
	}
	for _, s := range []tokens.BridgeStrategy{r.sponsoredIntent, r.unsponsoredIntent, r.sponsoredMintBurn} {
		if s != nil && !seen.Contains(s.Name()) {
			names = append(names, s.Name())
			seen.Add(s.Name())
		}
	}
	return names
}

// ResolveStrategy resolve the bridge strategy of a route
func (r *Registry) ResolveStrategy(ctx context.Context, p *RouteParams) tokens.BridgeStrategy {
	return r.Resolve(ctx, p).Strategy
}

// Resolve resolve the bridge strategy of a route with the deciding rule.
// Overrides come first, then capability matching and the ladders.
func (r *Registry) Resolve(ctx context.Context, p *RouteParams) *Decision {
	decision := r.resolve(ctx, p)
	log.Debug("resolve bridge strategy",
		"originChainID", p.OriginChainID(), "destChainID", p.DestChainID(),
		"inputToken", p.InputToken.Symbol, "outputToken", p.OutputToken.Symbol,
		"amount", p.Amount, "strategy", decision.StrategyName(),
		"rule", decision.Rule, "reason", decision.Reason)
	metrics.IncRoutingDecision(decision.StrategyName(), decision.Rule)
	return decision
}

func (r *Registry) resolve(ctx context.Context, p *RouteParams) *Decision {
	if name, rule := r.findOverride(p); rule != "" {
		return r.resolveOverride(ctx, p, name, rule)
	}

	capable := make([]tokens.BridgeStrategy, 0, len(r.routable))
	for _, s := range r.routable {
		if s.IsRouteSupported(p.InputToken, p.OutputToken) {
			capable = append(capable, s)
		}
	}
	switch len(capable) {
	case 0:
		return &Decision{Strategy: r.defaultStrategy, Rule: RuleNoCapableStrategy, Reason: "no strategy supports route"}
	case 1:
		return &Decision{Strategy: capable[0], Rule: RuleSingleCapable, Reason: "only one strategy supports route"}
	}

	candidates := &Candidates{Default: r.defaultStrategy}
	var mintBurnName string
	if mintBurn := r.mintBurnConfig(); mintBurn != nil {
		mintBurnName = mintBurn.GetMintBurnStrategy(p.InputToken.Symbol)
	}
	for _, s := range capable {
		if !r.mintBurnNames.Contains(s.Name()) {
			continue
		}
		candidates.MintBurn = append(candidates.MintBurn, s)
		if s.Name() == mintBurnName {
			candidates.MintBurnBySymbol = s
		}
	}
	if len(candidates.MintBurn) == 0 {
		return &Decision{Strategy: r.defaultStrategy, Rule: RuleNoMintBurnCapable, Reason: "several strategies support route, none is mint burn"}
	}
	return r.resolveMintBurn(ctx, p, candidates)
}

// findOverride token pair overrides take precedence over chain pair overrides
func (r *Registry) findOverride(p *RouteParams) (name, rule string) {
	routing := r.cfg.Routing
	if routing == nil {
		return "", ""
	}
	for _, o := range routing.TokenPairOverrides {
		if o.DestChainID == p.DestChainID() &&
			tokens.EqualSymbol(o.InputSymbol, p.InputToken.Symbol) &&
			tokens.EqualSymbol(o.OutputSymbol, p.OutputToken.Symbol) {
			return o.Strategy, RuleTokenPairOverride
		}
	}
	for _, o := range routing.ChainPairOverrides {
		if o.OriginChainID == p.OriginChainID() && o.DestChainID == p.DestChainID() {
			return o.Strategy, RuleChainPairOverride
		}
	}
	return "", ""
}

func (r *Registry) resolveOverride(ctx context.Context, p *RouteParams, name, rule string) *Decision {
	if name == SponsorshipStrategyName {
		return r.resolveSponsorship(ctx, p)
	}
	return &Decision{Strategy: r.strategies[name], Rule: rule, Reason: "configured override"}
}

func (r *Registry) mintBurnConfig() *params.MintBurnConfig {
	if r.cfg.Routing == nil {
		return nil
	}
	return r.cfg.Routing.MintBurn
}

func (r *Registry) resolveMintBurn(ctx context.Context, p *RouteParams, candidates *Candidates) *Decision {
	mintBurn := r.mintBurnConfig()
	if mintBurn == nil || r.limits == nil {
		return &Decision{Strategy: r.defaultStrategy, Rule: RuleRouteFactsFailed, Reason: "mint burn routing not configured"}
	}
	facts, err := ComputeBridgeStrategyData(ctx, mintBurn, r.limits, p)
	if err != nil {
		log.Warn("compute route facts failed, use default strategy",
			"originChainID", p.OriginChainID(), "destChainID", p.DestChainID(),
			"token", p.InputToken.Symbol, "err", err)
		return &Decision{Strategy: r.defaultStrategy, Rule: RuleRouteFactsFailed, Reason: err.Error()}
	}
	decision, ok := EvaluateRules(MintBurnRules, candidates, facts)
	if !ok {
		return &Decision{Strategy: r.defaultStrategy, Rule: RuleNoMintBurnCapable, Reason: "no mint burn rule resolved"}
	}
	return decision
}

func (r *Registry) resolveSponsorship(ctx context.Context, p *RouteParams) *Decision {
	if r.cfg.Sponsorship == nil {
		return &Decision{Strategy: r.unsponsoredIntent, Rule: RuleSponsorshipMissing, Reason: "sponsorship not configured"}
	}
	candidates := &Candidates{
		Default:           r.defaultStrategy,
		SponsoredIntent:   r.sponsoredIntent,
		UnsponsoredIntent: r.unsponsoredIntent,
	}
	if r.sponsoredMintBurn != nil && r.sponsoredMintBurn.IsRouteSupported(p.InputToken, p.OutputToken) {
		candidates.SponsoredMintBurn = r.sponsoredMintBurn
	}
	checks := ComputeEligibilityPreChecks(ctx, r.cfg.Sponsorship, r.usage, r.accounts, p, r.now())
	decision, ok := EvaluateRules(SponsorshipRules, candidates, checks)
	if !ok {
		return &Decision{Strategy: r.unsponsoredIntent, Rule: RuleSponsorshipMissing, Reason: "no sponsorship rule resolved"}
	}
	return decision
}
