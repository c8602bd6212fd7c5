// Package bridge wires the bridge strategies into the router services and reloads gateways.
package bridge

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/anyswap/CrossSwap-Router/cache"
	"github.com/anyswap/CrossSwap-Router/crossswap"
	"github.com/anyswap/CrossSwap-Router/gasless"
	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/mongodb"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/router"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/across"
	"github.com/anyswap/CrossSwap-Router/tokens/cctp"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
	"github.com/anyswap/CrossSwap-Router/tokens/feesapi"
	"github.com/anyswap/CrossSwap-Router/tokens/hypercore"
	"github.com/anyswap/CrossSwap-Router/tokens/oft"
	"github.com/anyswap/CrossSwap-Router/tokens/sponsored"
	"github.com/anyswap/CrossSwap-Router/tokens/swapapi"
)

var (
	services     *Services
	servicesLock sync.RWMutex
)

// Services router services, read only after construction
type Services struct {
	Config   *params.RouterConfig
	Registry *router.Registry
	Composer *crossswap.Composer
	Gasless  *gasless.Builder
	Caller   *eth.Caller
}

// Deps external dependencies of the router services
type Deps struct {
	Provider tokens.BridgeQuoteProvider
	Caller   tokens.ContractCaller
	SwapAPIs []tokens.QuoteFetchStrategy
	Usage    router.SponsorshipUsageReader
}

// GetServices get router services
func GetServices() *Services {
	servicesLock.RLock()
	defer servicesLock.RUnlock()
	return services
}

// SetServices set router services
func SetServices(s *Services) {
	servicesLock.Lock()
	defer servicesLock.Unlock()
	services = s
}

// NewServices build strategies, registry and composer
func NewServices(cfg *params.RouterConfig, deps *Deps) (*Services, error) {
	reader := eth.NewContractReader(deps.Caller)
	builder := gasless.NewBuilder(cfg, reader)

	acrossStrategy := across.NewStrategy(cfg, deps.Provider, builder)
	hyperCoreStrategy := hypercore.NewStrategy(cfg, reader)
	routable := []tokens.BridgeStrategy{
		cctp.NewStrategy(cfg),
		oft.NewStrategy(cfg, reader),
		hyperCoreStrategy,
	}

	opts := []router.Option{router.WithLimitsProvider(deps.Provider)}
	if cfg.Sponsorship != nil {
		opts = append(opts, router.WithSponsorship(
			sponsored.NewIntentStrategy(cfg, true, acrossStrategy),
			sponsored.NewIntentStrategy(cfg, false, acrossStrategy),
			sponsored.NewSponsoredCCTPStrategy(cfg),
			deps.Usage, hyperCoreStrategy))
	}
	registry, err := router.NewRegistry(cfg, acrossStrategy, routable, opts...)
	if err != nil {
		return nil, err
	}

	s := &Services{
		Config:   cfg,
		Registry: registry,
		Composer: crossswap.NewComposer(cfg, registry, deps.SwapAPIs),
		Gasless:  builder,
	}
	if caller, ok := deps.Caller.(*eth.Caller); ok {
		s.Caller = caller
	}
	return s, nil
}

// InitRouterServices init router services from config
func InitRouterServices(cfg *params.RouterConfig, isServer bool) {
	log.Info("start init router services", "isServer", isServer)

	gateways, err := getGatewayConfigs(cfg)
	if err != nil {
		log.Fatal("init gateways failed", "err", err)
	}
	caller := eth.NewCaller(gateways)

	timeout := cfg.Providers.TimeoutSeconds
	var provider tokens.BridgeQuoteProvider = feesapi.NewClient(cfg.Providers.BridgeFeesAPI, timeout)
	if isServer {
		provider = initLimitsCache(cfg, provider)
	}

	swapAPIs := make([]tokens.QuoteFetchStrategy, 0, len(cfg.Providers.SwapAPIs))
	for _, apiCfg := range cfg.Providers.SwapAPIs {
		swapAPIs = append(swapAPIs, swapapi.NewStrategy(apiCfg, cfg, timeout))
	}

	var usage router.SponsorshipUsageReader
	if isServer && cfg.Server.MongoDB != nil {
		dbCfg := cfg.Server.MongoDB
		mongodb.MongoServerInit(cfg.Identifier, dbCfg.DBURLs, dbCfg.DBName, dbCfg.UserName, dbCfg.Password)
		usage = mongodb.UsageReader{}
	} else if cfg.Sponsorship != nil {
		log.Warn("sponsorship usage store is not configed, sponsorship is disabled")
	}

	s, err := NewServices(cfg, &Deps{
		Provider: provider,
		Caller:   caller,
		SwapAPIs: swapAPIs,
		Usage:    usage,
	})
	if err != nil {
		log.Fatal("init router services failed", "err", err)
	}
	SetServices(s)
	log.Info("init router services success", "strategies", s.Registry.StrategyNames(), "swapAPIs", len(swapAPIs))
}

func initLimitsCache(cfg *params.RouterConfig, provider tokens.BridgeQuoteProvider) tokens.BridgeQuoteProvider {
	redisCfg := cfg.Server.Redis
	if redisCfg == nil {
		return provider
	}
	client, err := cache.NewClient(redisCfg.URL)
	if err != nil {
		log.Fatal("init redis client failed", "err", err)
	}
	ttl := time.Duration(redisCfg.LimitsCacheTTL) * time.Second
	log.Info("init limits cache success", "ttl", ttl.String())
	return cache.NewLimitsCache(provider, client, ttl, cfg.Identifier)
}

func getGatewayConfigs(cfg *params.RouterConfig) (map[uint64][]string, error) {
	gateways := cfg.Gateways
	if cfg.GatewayConfigFile != "" {
		fileGateways, err := params.LoadGatewayConfigs(cfg.GatewayConfigFile)
		if err != nil {
			return nil, err
		}
		gateways = fileGateways
	}
	return convertGateways(gateways)
}

func convertGateways(gateways map[string][]string) (map[uint64][]string, error) {
	result := make(map[uint64][]string, len(gateways))
	for key, urls := range gateways {
		chainID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("wrong chain id '%v' in gateways", key)
		}
		result[chainID] = urls
	}
	return result, nil
}
