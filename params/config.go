// Package params provides the configuration of the cross swap router.
package params

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/anyswap/CrossSwap-Router/common"
	"github.com/anyswap/CrossSwap-Router/log"
)

// router constants
const (
	RouterSwapPrefixID = "crossswap"

	DefaultA2AChunkSize        = 2
	DefaultSwapChunkSize       = 2
	DefaultUtilizationPercent  = "0.8"
	DefaultOriginSwapMarkup    = "0.5"
	DefaultLimitsCacheTTL      = 30 // seconds
	DefaultMaxRequestsLimit    = 10
	DefaultProviderTimeoutSecs = 20
)

var locDataDir string

// RouterConfig config
type RouterConfig struct {
	Identifier string

	Server      *ServerConfig      `toml:",omitempty" json:",omitempty"`
	Routing     *RoutingConfig
	Sponsorship *SponsorshipConfig `toml:",omitempty" json:",omitempty"`
	Providers   *ProvidersConfig

	Chains []*ChainConfig
	Tokens []*TokenConfig
	Routes []*RouteConfig

	Gateways          map[string][]string // key is chain ID
	GatewayConfigFile string              `toml:",omitempty" json:",omitempty"`

	// cached values
	chainMap map[uint64]*ChainConfig
	tokenMap map[string]*TokenConfig // key is upper case symbol
	routeMap map[routeKey]*RouteConfig
}

// ServerConfig only for server
type ServerConfig struct {
	APIServer *APIServerConfig
	MongoDB   *MongoDBConfig `toml:",omitempty" json:",omitempty"`
	Redis     *RedisConfig   `toml:",omitempty" json:",omitempty"`
	Admins    []string       `toml:",omitempty" json:",omitempty"`
}

// HasAdmin has admin configed
func (s *ServerConfig) HasAdmin() bool {
	return s != nil && len(s.Admins) > 0
}

// IsAdmin is admin address
func (s *ServerConfig) IsAdmin(account string) bool {
	if s == nil {
		return false
	}
	for _, admin := range s.Admins {
		if strings.EqualFold(admin, account) {
			return true
		}
	}
	return false
}

// APIServerConfig api service config
type APIServerConfig struct {
	Port             int
	AllowedOrigins   []string
	MaxRequestsLimit int `toml:",omitempty" json:",omitempty"`
}

// MongoDBConfig mongodb config
type MongoDBConfig struct {
	DBURL    string   `toml:",omitempty" json:",omitempty"`
	DBURLs   []string `toml:",omitempty" json:",omitempty"`
	DBName   string
	UserName string `json:"-"`
	Password string `json:"-"`
}

// RedisConfig redis config
type RedisConfig struct {
	URL            string `json:"-"`
	LimitsCacheTTL uint64 `toml:",omitempty" json:",omitempty"` // seconds
}

// ProvidersConfig external quote providers
type ProvidersConfig struct {
	BridgeFeesAPI  string
	SwapAPIs       []*SwapAPIConfig
	SwapChunkSize  int `toml:",omitempty" json:",omitempty"`
	TimeoutSeconds int `toml:",omitempty" json:",omitempty"`
}

// SwapAPIConfig swap aggregator api config
type SwapAPIConfig struct {
	Name                      string
	BaseURL                   string
	APIKey                    string `json:"-"`
	ChainIDs                  []uint64
	Routers                   map[string]string // key is chain ID
	Sources                   []string `toml:",omitempty" json:",omitempty"`
	SupportsSellEntireBalance bool     `toml:",omitempty" json:",omitempty"`
}

// SupportsChain is chain supported
func (c *SwapAPIConfig) SupportsChain(chainID uint64) bool {
	return containsChainID(c.ChainIDs, chainID)
}

// GetRouter get router address on chain
func (c *SwapAPIConfig) GetRouter(chainID uint64) string {
	return c.Routers[strconv.FormatUint(chainID, 10)]
}

// ChainConfig chain config
type ChainConfig struct {
	ChainID             uint64
	Name                string
	WrappedNativeSymbol string

	SpokePool          string
	SpokePoolPeriphery string `toml:",omitempty" json:",omitempty"` // witness capable entry point
	SwapProxy          string `toml:",omitempty" json:",omitempty"` // entry point without witness support
	MulticallHandler   string `toml:",omitempty" json:",omitempty"`

	CCTP      *CCTPConfig      `toml:",omitempty" json:",omitempty"`
	OFT       *OFTConfig       `toml:",omitempty" json:",omitempty"`
	HyperCore *HyperCoreConfig `toml:",omitempty" json:",omitempty"`
}

// CCTPConfig cctp config
type CCTPConfig struct {
	Domain             uint32
	TokenMessenger     string
	FastFeeBps         uint64
	SponsoredPeriphery string `toml:",omitempty" json:",omitempty"`
}

// OFTConfig oft config
type OFTConfig struct {
	EndpointID     uint32
	Messengers     map[string]string // key is token symbol
	SharedDecimals uint8
}

// HyperCoreConfig config of the core chain reachable from this chain
type HyperCoreConfig struct {
	CoreChainID       uint64
	SystemAddresses   map[string]string // key is token symbol
	CoreUserExistsPre string            // precompile address
}

// TokenConfig token config
type TokenConfig struct {
	Symbol        string
	Decimals      uint8
	Addresses     map[string]string // key is chain ID
	ChainDecimals map[string]uint8  `toml:",omitempty" json:",omitempty"` // key is chain ID
}

// RouteConfig enabled bridge route
type RouteConfig struct {
	OriginChainID uint64
	DestChainID   uint64
	InputSymbol   string
	OutputSymbol  string
}

// RoutingConfig strategy routing config
type RoutingConfig struct {
	DefaultStrategy         string
	TokenPairOverrides      []*TokenPairOverride `toml:",omitempty" json:",omitempty"`
	ChainPairOverrides      []*ChainPairOverride `toml:",omitempty" json:",omitempty"`
	MintBurn                *MintBurnConfig      `toml:",omitempty" json:",omitempty"`
	PreferredBridgeTokens   []string             `toml:",omitempty" json:",omitempty"`
	A2AChunkSize            int                  `toml:",omitempty" json:",omitempty"`
	OriginSwapMarkupPercent string               `toml:",omitempty" json:",omitempty"`

	originSwapMarkup decimal.Decimal
}

// TokenPairOverride force strategy on (dest chain, input symbol, output symbol)
// strategy 'sponsorship' means evaluating the sponsorship ladder
type TokenPairOverride struct {
	DestChainID  uint64
	InputSymbol  string
	OutputSymbol string
	Strategy     string
}

// ChainPairOverride force strategy on (origin chain, dest chain)
type ChainPairOverride struct {
	OriginChainID uint64
	DestChainID   uint64
	Strategy      string
}

// MintBurnConfig mint and burn ladder config
type MintBurnConfig struct {
	Strategies           map[string]string // key is token symbol, value is strategy name
	LowLiquidityChains   []uint64
	LowLiquidityLimitUsd string
	UtilizationThreshold string `toml:",omitempty" json:",omitempty"`
	FastSettlingChains   []uint64
	FastSettlingMinUsd   string
	FastSettlingMaxUsd   string
	VeryLargeDepositUsd  string

	lowLiquidityLimitUsd decimal.Decimal
	utilizationThreshold decimal.Decimal
	fastSettlingMinUsd   decimal.Decimal
	fastSettlingMaxUsd   decimal.Decimal
	veryLargeDepositUsd  decimal.Decimal
}

// SponsorshipConfig sponsorship ladder config
type SponsorshipConfig struct {
	EligiblePairs             []*TokenPair
	GlobalDailyLimitUsd       string
	UserDailyLimitUsd         string
	AccountCreationDailyLimit uint64
	MintBurnThresholdUsd      string

	globalDailyLimitUsd  decimal.Decimal
	userDailyLimitUsd    decimal.Decimal
	mintBurnThresholdUsd decimal.Decimal
}

// TokenPair token pair by symbol
type TokenPair struct {
	InputSymbol  string
	OutputSymbol string
}

type routeKey struct {
	originChainID uint64
	destChainID   uint64
	inputSymbol   string
	outputSymbol  string
}

// GetOriginSwapMarkup get origin swap markup percent
func (c *RoutingConfig) GetOriginSwapMarkup() decimal.Decimal {
	return c.originSwapMarkup
}

// GetA2AChunkSize get chunk size of any to any route search
func (c *RoutingConfig) GetA2AChunkSize() int {
	if c.A2AChunkSize <= 0 {
		return DefaultA2AChunkSize
	}
	return c.A2AChunkSize
}

// IsPreferredBridgeToken is preferred bridge token
func (c *RoutingConfig) IsPreferredBridgeToken(symbol string) bool {
	for _, s := range c.PreferredBridgeTokens {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}

// GetLowLiquidityLimitUsd getter
func (c *MintBurnConfig) GetLowLiquidityLimitUsd() decimal.Decimal {
	return c.lowLiquidityLimitUsd
}

// GetUtilizationThreshold getter
func (c *MintBurnConfig) GetUtilizationThreshold() decimal.Decimal {
	return c.utilizationThreshold
}

// GetFastSettlingMinUsd getter
func (c *MintBurnConfig) GetFastSettlingMinUsd() decimal.Decimal {
	return c.fastSettlingMinUsd
}

// GetFastSettlingMaxUsd getter
func (c *MintBurnConfig) GetFastSettlingMaxUsd() decimal.Decimal {
	return c.fastSettlingMaxUsd
}

// GetVeryLargeDepositUsd getter
func (c *MintBurnConfig) GetVeryLargeDepositUsd() decimal.Decimal {
	return c.veryLargeDepositUsd
}

// IsLowLiquidityChain is low liquidity chain
func (c *MintBurnConfig) IsLowLiquidityChain(chainID uint64) bool {
	return containsChainID(c.LowLiquidityChains, chainID)
}

// IsFastSettlingChain is fast settling chain
func (c *MintBurnConfig) IsFastSettlingChain(chainID uint64) bool {
	return containsChainID(c.FastSettlingChains, chainID)
}

// GetMintBurnStrategy get mint burn strategy name by token symbol
func (c *MintBurnConfig) GetMintBurnStrategy(symbol string) string {
	for sym, name := range c.Strategies {
		if strings.EqualFold(sym, symbol) {
			return name
		}
	}
	return ""
}

// GetGlobalDailyLimitUsd getter
func (c *SponsorshipConfig) GetGlobalDailyLimitUsd() decimal.Decimal {
	return c.globalDailyLimitUsd
}

// GetUserDailyLimitUsd getter
func (c *SponsorshipConfig) GetUserDailyLimitUsd() decimal.Decimal {
	return c.userDailyLimitUsd
}

// GetMintBurnThresholdUsd getter
func (c *SponsorshipConfig) GetMintBurnThresholdUsd() decimal.Decimal {
	return c.mintBurnThresholdUsd
}

// IsEligiblePair is token pair eligible for sponsorship
func (c *SponsorshipConfig) IsEligiblePair(inputSymbol, outputSymbol string) bool {
	for _, pair := range c.EligiblePairs {
		if strings.EqualFold(pair.InputSymbol, inputSymbol) &&
			strings.EqualFold(pair.OutputSymbol, outputSymbol) {
			return true
		}
	}
	return false
}

// GetChainConfig get chain config
func (c *RouterConfig) GetChainConfig(chainID uint64) *ChainConfig {
	return c.chainMap[chainID]
}

// GetTokenConfig get token config by symbol
func (c *RouterConfig) GetTokenConfig(symbol string) *TokenConfig {
	return c.tokenMap[strings.ToUpper(symbol)]
}

// GetTokenAddress get token address and decimals on chain
func (c *RouterConfig) GetTokenAddress(chainID uint64, symbol string) (address string, decimals uint8, exist bool) {
	tokenCfg := c.GetTokenConfig(symbol)
	if tokenCfg == nil {
		return "", 0, false
	}
	key := strconv.FormatUint(chainID, 10)
	address, exist = tokenCfg.Addresses[key]
	if !exist {
		return "", 0, false
	}
	decimals = tokenCfg.Decimals
	if d, ok := tokenCfg.ChainDecimals[key]; ok {
		decimals = d
	}
	return address, decimals, true
}

// GetTokenSymbol get token symbol by address on chain
func (c *RouterConfig) GetTokenSymbol(chainID uint64, address string) string {
	key := strconv.FormatUint(chainID, 10)
	for _, tokenCfg := range c.Tokens {
		if addr, ok := tokenCfg.Addresses[key]; ok && strings.EqualFold(addr, address) {
			return tokenCfg.Symbol
		}
	}
	return ""
}

// HasRoute is route enabled
func (c *RouterConfig) HasRoute(originChainID, destChainID uint64, inputSymbol, outputSymbol string) bool {
	_, exist := c.routeMap[newRouteKey(originChainID, destChainID, inputSymbol, outputSymbol)]
	return exist
}

// GetRoutesBetween get all routes between two chains
func (c *RouterConfig) GetRoutesBetween(originChainID, destChainID uint64) []*RouteConfig {
	routes := make([]*RouteConfig, 0)
	for _, route := range c.Routes {
		if route.OriginChainID == originChainID && route.DestChainID == destChainID {
			routes = append(routes, route)
		}
	}
	return routes
}

// IsInputBridgeable has route with input symbol from origin to dest
func (c *RouterConfig) IsInputBridgeable(originChainID, destChainID uint64, inputSymbol string) bool {
	for _, route := range c.GetRoutesBetween(originChainID, destChainID) {
		if strings.EqualFold(route.InputSymbol, inputSymbol) {
			return true
		}
	}
	return false
}

// IsOutputBridgeable has route with output symbol from origin to dest
func (c *RouterConfig) IsOutputBridgeable(originChainID, destChainID uint64, outputSymbol string) bool {
	for _, route := range c.GetRoutesBetween(originChainID, destChainID) {
		if strings.EqualFold(route.OutputSymbol, outputSymbol) {
			return true
		}
	}
	return false
}

// GetGateways get gateways of chain
func (c *RouterConfig) GetGateways(chainID uint64) []string {
	return c.Gateways[strconv.FormatUint(chainID, 10)]
}

func newRouteKey(originChainID, destChainID uint64, inputSymbol, outputSymbol string) routeKey {
	return routeKey{
		originChainID: originChainID,
		destChainID:   destChainID,
		inputSymbol:   strings.ToUpper(inputSymbol),
		outputSymbol:  strings.ToUpper(outputSymbol),
	}
}

func containsChainID(chainIDs []uint64, chainID uint64) bool {
	for _, cid := range chainIDs {
		if cid == chainID {
			return true
		}
	}
	return false
}

// LoadRouterConfig load router config
func LoadRouterConfig(configFile string, isServer bool) *RouterConfig {
	if configFile == "" {
		log.Fatal("must specify config file")
	}
	log.Info("load router config file", "configFile", configFile, "isServer", isServer)
	if !common.FileExist(configFile) {
		log.Fatalf("LoadRouterConfig error: config file '%v' not exist", configFile)
	}
	config := &RouterConfig{}
	if _, err := toml.DecodeFile(configFile, &config); err != nil {
		log.Fatalf("LoadRouterConfig error (toml DecodeFile): %v", err)
	}

	if !isServer {
		config.Server = nil
	}

	var bs []byte
	if log.JSONFormat {
		bs, _ = json.Marshal(config)
	} else {
		bs, _ = json.MarshalIndent(config, "", "  ")
	}
	log.Println("LoadRouterConfig finished.", string(bs))

	if err := config.CheckConfig(isServer); err != nil {
		log.Fatalf("Check config failed. %v", err)
	}
	return config
}

// SetDataDir set data dir
func SetDataDir(dir string) {
	if dir == "" {
		return
	}
	currDir, err := common.CurrentDir()
	if err != nil {
		log.Fatal("get current dir failed", "err", err)
	}
	locDataDir = common.AbsolutePath(currDir, dir)
	log.Info("set data dir success", "datadir", locDataDir)
}

// GetDataDir get data dir
func GetDataDir() string {
	return locDataDir
}
