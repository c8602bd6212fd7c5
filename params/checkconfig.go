package params

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/anyswap/CrossSwap-Router/log"
)

var blankOrCommaSepRegexp = regexp.MustCompile(`[\s,]+`) // blank or comma separated

func splitStringByBlankOrComma(str string) []string {
	return blankOrCommaSepRegexp.Split(strings.TrimSpace(str), -1)
}

// CheckConfig check router config
func (config *RouterConfig) CheckConfig(isServer bool) (err error) {
	if !strings.HasPrefix(config.Identifier, RouterSwapPrefixID) || config.Identifier == RouterSwapPrefixID {
		return fmt.Errorf("wrong identifier '%v', missing prefix '%v'", config.Identifier, RouterSwapPrefixID)
	}
	log.Info("check identifier pass", "identifier", config.Identifier, "isServer", isServer)

	if isServer {
		if err = config.Server.CheckConfig(); err != nil {
			return err
		}
	}
	if config.Providers == nil {
		return errors.New("must config 'Providers'")
	}
	if err = config.Providers.CheckConfig(); err != nil {
		return err
	}
	if err = config.checkChainsAndTokens(); err != nil {
		return err
	}
	if err = config.checkRoutes(); err != nil {
		return err
	}
	if config.Routing == nil {
		return errors.New("must config 'Routing'")
	}
	if err = config.Routing.CheckConfig(); err != nil {
		return err
	}
	if config.Sponsorship != nil {
		if err = config.Sponsorship.CheckConfig(); err != nil {
			return err
		}
	}
	for chainID, urls := range config.Gateways {
		if _, err = strconv.ParseUint(chainID, 10, 64); err != nil {
			return fmt.Errorf("wrong chain id '%v' in 'Gateways'", chainID)
		}
		if len(urls) == 0 {
			return fmt.Errorf("chain %v has empty gateways", chainID)
		}
	}
	return nil
}

// CheckConfig check server config
func (s *ServerConfig) CheckConfig() error {
	if s == nil {
		return errors.New("server must config 'Server'")
	}
	if s.APIServer == nil {
		return errors.New("server must config 'APIServer'")
	}
	if s.APIServer.Port <= 0 {
		return errors.New("api server must config positive 'Port'")
	}
	if s.APIServer.MaxRequestsLimit <= 0 {
		s.APIServer.MaxRequestsLimit = DefaultMaxRequestsLimit
	}
	for _, admin := range s.Admins {
		if !ethcommon.IsHexAddress(admin) {
			return fmt.Errorf("wrong admin address '%v'", admin)
		}
	}
	if s.MongoDB != nil {
		if err := s.MongoDB.CheckConfig(); err != nil {
			return err
		}
	}
	if s.Redis != nil {
		if s.Redis.URL == "" {
			return errors.New("redis must config 'URL'")
		}
		if s.Redis.LimitsCacheTTL == 0 {
			s.Redis.LimitsCacheTTL = DefaultLimitsCacheTTL
		}
	}
	return nil
}

// CheckConfig check mongodb config
func (c *MongoDBConfig) CheckConfig() error {
	if c.DBName == "" {
		return errors.New("mongodb must config 'DBName'")
	}
	if c.DBURL == "" && len(c.DBURLs) == 0 {
		return errors.New("mongodb must config 'DBURL' or 'DBURLs'")
	}
	if c.DBURL != "" {
		if len(c.DBURLs) != 0 {
			return errors.New("mongodb can not config both 'DBURL' and 'DBURLs'")
		}
		c.DBURLs = splitStringByBlankOrComma(c.DBURL)
	}
	return nil
}

// CheckConfig check providers config
func (c *ProvidersConfig) CheckConfig() error {
	if c.BridgeFeesAPI == "" {
		return errors.New("providers must config 'BridgeFeesAPI'")
	}
	if c.SwapChunkSize <= 0 {
		c.SwapChunkSize = DefaultSwapChunkSize
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultProviderTimeoutSecs
	}
	names := make(map[string]struct{}, len(c.SwapAPIs))
	for _, swapAPI := range c.SwapAPIs {
		if swapAPI.Name == "" || swapAPI.BaseURL == "" {
			return errors.New("swap api must config 'Name' and 'BaseURL'")
		}
		if _, exist := names[swapAPI.Name]; exist {
			return fmt.Errorf("duplicate swap api name '%v'", swapAPI.Name)
		}
		names[swapAPI.Name] = struct{}{}
		if len(swapAPI.ChainIDs) == 0 {
			return fmt.Errorf("swap api '%v' must config 'ChainIDs'", swapAPI.Name)
		}
		for _, chainID := range swapAPI.ChainIDs {
			router := swapAPI.GetRouter(chainID)
			if !ethcommon.IsHexAddress(router) {
				return fmt.Errorf("swap api '%v' wrong router '%v' on chain %v", swapAPI.Name, router, chainID)
			}
		}
	}
	return nil
}

func (config *RouterConfig) checkChainsAndTokens() error {
	config.chainMap = make(map[uint64]*ChainConfig, len(config.Chains))
	for _, chainCfg := range config.Chains {
		if err := chainCfg.CheckConfig(); err != nil {
			return err
		}
		if _, exist := config.chainMap[chainCfg.ChainID]; exist {
			return fmt.Errorf("duplicate chain id '%v'", chainCfg.ChainID)
		}
		config.chainMap[chainCfg.ChainID] = chainCfg
	}

	config.tokenMap = make(map[string]*TokenConfig, len(config.Tokens))
	for _, tokenCfg := range config.Tokens {
		if err := tokenCfg.CheckConfig(); err != nil {
			return err
		}
		key := strings.ToUpper(tokenCfg.Symbol)
		if _, exist := config.tokenMap[key]; exist {
			return fmt.Errorf("duplicate token symbol '%v'", tokenCfg.Symbol)
		}
		config.tokenMap[key] = tokenCfg
	}
	return nil
}

func (config *RouterConfig) checkRoutes() error {
	config.routeMap = make(map[routeKey]*RouteConfig, len(config.Routes))
	for _, route := range config.Routes {
		if route.OriginChainID == route.DestChainID {
			return fmt.Errorf("route with same origin and dest chain %v", route.OriginChainID)
		}
		if _, _, exist := config.GetTokenAddress(route.OriginChainID, route.InputSymbol); !exist {
			return fmt.Errorf("route input token %v not configed on chain %v", route.InputSymbol, route.OriginChainID)
		}
		if _, _, exist := config.GetTokenAddress(route.DestChainID, route.OutputSymbol); !exist {
			return fmt.Errorf("route output token %v not configed on chain %v", route.OutputSymbol, route.DestChainID)
		}
		config.routeMap[newRouteKey(route.OriginChainID, route.DestChainID, route.InputSymbol, route.OutputSymbol)] = route
	}
	log.Info("check routes success", "count", len(config.routeMap))
	return nil
}

// CheckConfig check chain config
func (c *ChainConfig) CheckConfig() error {
	if c.ChainID == 0 {
		return errors.New("chain must config nonzero 'ChainID'")
	}
	if c.SpokePool != "" && !ethcommon.IsHexAddress(c.SpokePool) {
		return fmt.Errorf("chain %v has wrong 'SpokePool' %v", c.ChainID, c.SpokePool)
	}
	addrs := map[string]string{
		"SpokePoolPeriphery": c.SpokePoolPeriphery,
		"SwapProxy":          c.SwapProxy,
		"MulticallHandler":   c.MulticallHandler,
	}
	for name, addr := range addrs {
		if addr != "" && !ethcommon.IsHexAddress(addr) {
			return fmt.Errorf("chain %v has wrong '%v' %v", c.ChainID, name, addr)
		}
	}
	if c.CCTP != nil && !ethcommon.IsHexAddress(c.CCTP.TokenMessenger) {
		return fmt.Errorf("chain %v has wrong cctp 'TokenMessenger' %v", c.ChainID, c.CCTP.TokenMessenger)
	}
	if c.CCTP != nil && c.CCTP.FastFeeBps >= 10000 {
		return fmt.Errorf("chain %v has wrong cctp 'FastFeeBps' %v", c.ChainID, c.CCTP.FastFeeBps)
	}
	if c.OFT != nil {
		for symbol, messenger := range c.OFT.Messengers {
			if !ethcommon.IsHexAddress(messenger) {
				return fmt.Errorf("chain %v has wrong oft messenger of %v", c.ChainID, symbol)
			}
		}
		if c.OFT.SharedDecimals == 0 {
			c.OFT.SharedDecimals = 6
		}
	}
	if c.HyperCore != nil {
		if c.HyperCore.CoreChainID == 0 {
			return fmt.Errorf("chain %v hypercore must config 'CoreChainID'", c.ChainID)
		}
		for symbol, addr := range c.HyperCore.SystemAddresses {
			if !ethcommon.IsHexAddress(addr) {
				return fmt.Errorf("chain %v has wrong hypercore system address of %v", c.ChainID, symbol)
			}
		}
	}
	return nil
}

// CheckConfig check token config
func (c *TokenConfig) CheckConfig() error {
	if c.Symbol == "" {
		return errors.New("token must config 'Symbol'")
	}
	if len(c.Addresses) == 0 {
		return fmt.Errorf("token %v must config 'Addresses'", c.Symbol)
	}
	for chainID, addr := range c.Addresses {
		if _, err := strconv.ParseUint(chainID, 10, 64); err != nil {
			return fmt.Errorf("token %v has wrong chain id '%v'", c.Symbol, chainID)
		}
		if !ethcommon.IsHexAddress(addr) {
			return fmt.Errorf("token %v has wrong address '%v' on chain %v", c.Symbol, addr, chainID)
		}
	}
	return nil
}

// CheckConfig check routing config
func (c *RoutingConfig) CheckConfig() (err error) {
	if c.DefaultStrategy == "" {
		return errors.New("routing must config 'DefaultStrategy'")
	}
	if c.OriginSwapMarkupPercent == "" {
		c.OriginSwapMarkupPercent = DefaultOriginSwapMarkup
	}
	if c.originSwapMarkup, err = parseNonNegative("OriginSwapMarkupPercent", c.OriginSwapMarkupPercent); err != nil {
		return err
	}
	for _, o := range c.TokenPairOverrides {
		if o.Strategy == "" || o.InputSymbol == "" || o.OutputSymbol == "" {
			return fmt.Errorf("token pair override on chain %v is incomplete", o.DestChainID)
		}
	}
	for _, o := range c.ChainPairOverrides {
		if o.Strategy == "" {
			return fmt.Errorf("chain pair override %v->%v must config 'Strategy'", o.OriginChainID, o.DestChainID)
		}
	}
	if c.MintBurn != nil {
		return c.MintBurn.CheckConfig()
	}
	return nil
}

// CheckConfig check mint and burn config
func (c *MintBurnConfig) CheckConfig() (err error) {
	if len(c.Strategies) == 0 {
		return errors.New("mint burn must config 'Strategies'")
	}
	if c.UtilizationThreshold == "" {
		c.UtilizationThreshold = DefaultUtilizationPercent
	}
	if c.utilizationThreshold, err = parseNonNegative("UtilizationThreshold", c.UtilizationThreshold); err != nil {
		return err
	}
	if c.utilizationThreshold.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("'UtilizationThreshold' %v is greater than 1", c.UtilizationThreshold)
	}
	if c.lowLiquidityLimitUsd, err = parseNonNegative("LowLiquidityLimitUsd", c.LowLiquidityLimitUsd); err != nil {
		return err
	}
	if c.fastSettlingMinUsd, err = parseNonNegative("FastSettlingMinUsd", c.FastSettlingMinUsd); err != nil {
		return err
	}
	if c.fastSettlingMaxUsd, err = parseNonNegative("FastSettlingMaxUsd", c.FastSettlingMaxUsd); err != nil {
		return err
	}
	if c.fastSettlingMaxUsd.LessThan(c.fastSettlingMinUsd) {
		return errors.New("'FastSettlingMaxUsd' is less than 'FastSettlingMinUsd'")
	}
	if c.veryLargeDepositUsd, err = parseNonNegative("VeryLargeDepositUsd", c.VeryLargeDepositUsd); err != nil {
		return err
	}
	return nil
}

// CheckConfig check sponsorship config
func (c *SponsorshipConfig) CheckConfig() (err error) {
	if len(c.EligiblePairs) == 0 {
		return errors.New("sponsorship must config 'EligiblePairs'")
	}
	if c.globalDailyLimitUsd, err = parseNonNegative("GlobalDailyLimitUsd", c.GlobalDailyLimitUsd); err != nil {
		return err
	}
	if c.userDailyLimitUsd, err = parseNonNegative("UserDailyLimitUsd", c.UserDailyLimitUsd); err != nil {
		return err
	}
	if c.mintBurnThresholdUsd, err = parseNonNegative("MintBurnThresholdUsd", c.MintBurnThresholdUsd); err != nil {
		return err
	}
	return nil
}

func parseNonNegative(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, fmt.Errorf("must config '%v'", name)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wrong '%v' %v: %w", name, value, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("'%v' %v is negative", name, value)
	}
	return d, nil
}
