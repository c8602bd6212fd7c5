// Package swapapi is the quote fetch strategy over a swap aggregator http api.
package swapapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	cmn "github.com/anyswap/CrossSwap-Router/common"
	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/metrics"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/rpc/client"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

// api error codes
const (
	ErrCodeNoLiquidity         = "NO_LIQUIDITY"
	ErrCodeSourcesNotSupported = "SOURCES_NOT_SUPPORTED"
)

// default slippage percent when slippage is auto
var defaultAutoSlippage = decimal.RequireFromString("0.5")

var _ tokens.QuoteFetchStrategy = &Strategy{}

// Strategy swap aggregator api quote fetch strategy
type Strategy struct {
	config     *params.SwapAPIConfig
	routerCfg  *params.RouterConfig
	timeout    time.Duration
	sourcesSet mapset.Set
}

// NewStrategy new strategy
func NewStrategy(cfg *params.SwapAPIConfig, routerCfg *params.RouterConfig, timeoutSeconds int) *Strategy {
	if timeoutSeconds <= 0 {
		timeoutSeconds = client.GetDefaultTimeout()
	}
	sources := mapset.NewSet()
	for _, source := range cfg.Sources {
		sources.Add(strings.ToLower(source))
	}
	return &Strategy{
		config:     cfg,
		routerCfg:  routerCfg,
		timeout:    time.Duration(timeoutSeconds) * time.Second,
		sourcesSet: sources,
	}
}

// Name name
func (s *Strategy) Name() string {
	return s.config.Name
}

// SupportsChain is chain supported
func (s *Strategy) SupportsChain(chainID uint64) bool {
	return s.config.SupportsChain(chainID)
}

// GetRouter get aggregator router on chain
func (s *Strategy) GetRouter(chainID uint64) (common.Address, error) {
	router := s.config.GetRouter(chainID)
	if router == "" {
		return common.Address{}, fmt.Errorf("%w: swap api %v has no router on chain %v", tokens.ErrMissEntryPoint, s.Name(), chainID)
	}
	return common.HexToAddress(router), nil
}

// GetOriginEntryPoints get entry points of origin swaps
func (s *Strategy) GetOriginEntryPoints(chainID uint64) (*tokens.OriginEntryPoints, error) {
	chainCfg := s.routerCfg.GetChainConfig(chainID)
	if chainCfg == nil {
		return nil, fmt.Errorf("%w: chain %v", tokens.ErrMissEntryPoint, chainID)
	}
	entryPoints := &tokens.OriginEntryPoints{
		Deposit: tokens.EntryPoint{
			Name:    tokens.EntryPointSpokePool,
			Address: common.HexToAddress(chainCfg.SpokePool),
		},
	}
	switch {
	case chainCfg.SpokePoolPeriphery != "":
		entryPoints.SwapAndBridge = tokens.EntryPoint{
			Name:    tokens.EntryPointPeriphery,
			Address: common.HexToAddress(chainCfg.SpokePoolPeriphery),
		}
	case chainCfg.SwapProxy != "":
		entryPoints.SwapAndBridge = tokens.EntryPoint{
			Name:    tokens.EntryPointSwapProxy,
			Address: common.HexToAddress(chainCfg.SwapProxy),
		}
	default:
		return nil, fmt.Errorf("%w: no swap and bridge entry point on chain %v", tokens.ErrMissEntryPoint, chainID)
	}
	return entryPoints, nil
}

// GetSources get liquidity sources after filtering
func (s *Strategy) GetSources(chainID uint64, filter *tokens.SourcesFilter) ([]string, error) {
	if filter == nil || (len(filter.Include) == 0 && len(filter.Exclude) == 0) {
		return nil, nil
	}
	if s.sourcesSet.Cardinality() == 0 {
		return nil, fmt.Errorf("%w: swap api %v does not support sources filter", tokens.ErrSourcesNotSupported, s.Name())
	}
	result := make([]string, 0)
	if len(filter.Include) > 0 {
		for _, source := range filter.Include {
			if s.sourcesSet.Contains(strings.ToLower(source)) {
				result = append(result, strings.ToLower(source))
			}
		}
	} else {
		excluded := mapset.NewSet()
		for _, source := range filter.Exclude {
			excluded.Add(strings.ToLower(source))
		}
		for _, source := range s.config.Sources {
			if !excluded.Contains(strings.ToLower(source)) {
				result = append(result, strings.ToLower(source))
			}
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no sources left on chain %v of %v", tokens.ErrSourcesNotSupported, chainID, s.Name())
	}
	return result, nil
}

// AssertSellEntireBalanceSupported assert sell entire balance supported
func (s *Strategy) AssertSellEntireBalanceSupported() error {
	if !s.config.SupportsSellEntireBalance {
		return fmt.Errorf("%w: swap api %v does not support selling entire balance", tokens.ErrPreconditionFailed, s.Name())
	}
	return nil
}

type quoteResp struct {
	MaximumAmountIn   cmn.BigIntJSON `json:"maximumAmountIn"`
	MinAmountOut      cmn.BigIntJSON `json:"minAmountOut"`
	ExpectedAmountIn  cmn.BigIntJSON `json:"expectedAmountIn"`
	ExpectedAmountOut cmn.BigIntJSON `json:"expectedAmountOut"`
	SlippageTolerance string         `json:"slippageTolerance"`
	Sources           []string       `json:"sources"`
	Tx                *struct {
		To    string         `json:"to"`
		Data  string         `json:"data"`
		Value cmn.BigIntJSON `json:"value"`
	} `json:"tx"`
}

// Fetch fetch swap quote
func (s *Strategy) Fetch(ctx context.Context, swap *tokens.Swap, tradeType tokens.AmountType, opts *tokens.QuoteFetchOpts) (*tokens.SwapQuote, error) {
	if !s.SupportsChain(swap.ChainID) {
		return nil, fmt.Errorf("%w: swap api %v on chain %v", tokens.ErrRouteNotSupported, s.Name(), swap.ChainID)
	}
	if opts == nil {
		opts = &tokens.QuoteFetchOpts{}
	}
	if opts.SellEntireBalance {
		if err := s.AssertSellEntireBalanceSupported(); err != nil {
			return nil, err
		}
	}
	sources, err := s.GetSources(swap.ChainID, opts.Sources)
	if err != nil {
		return nil, err
	}
	slippage := swap.Slippage.Percent
	if swap.Slippage.Auto {
		slippage = defaultAutoSlippage
	}
	if opts.SplitSlippage {
		slippage = slippage.Div(decimal.NewFromInt(2))
	}

	query := url.Values{}
	query.Set("chainId", strconv.FormatUint(swap.ChainID, 10))
	query.Set("tokenIn", swapTokenAddress(swap.TokenIn, swap.IsInputNative).Hex())
	query.Set("tokenOut", swapTokenAddress(swap.TokenOut, swap.IsOutputNative).Hex())
	query.Set("amount", swap.Amount.String())
	query.Set("tradeType", string(tradeType))
	query.Set("swapper", swap.Depositor.Hex())
	query.Set("recipient", swap.Recipient.Hex())
	query.Set("slippageTolerance", slippage.String())
	if len(sources) > 0 {
		query.Set("sources", strings.Join(sources, ","))
	}
	if opts.UseIndicativeQuote {
		query.Set("indicative", "true")
	}
	if opts.SellEntireBalance {
		query.Set("sellEntireBalance", "true")
	}

	header := http.Header{}
	if s.config.APIKey != "" {
		header.Set("x-api-key", s.config.APIKey)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var result quoteResp
	err = client.JSONGetWithHeader(ctx, &result, s.config.BaseURL+"/quote", query, header)
	if err != nil {
		err = s.classifyError(err)
		metrics.IncProviderError(s.Name(), string(tokens.KindOf(err)))
		log.Debug("fetch swap quote failed", "api", s.Name(), "chainID", swap.ChainID,
			"tokenIn", swap.TokenIn.Symbol, "tokenOut", swap.TokenOut.Symbol, "amount", swap.Amount, "err", err)
		return nil, err
	}
	return s.convertQuote(swap, slippage, opts, &result)
}

func (s *Strategy) convertQuote(swap *tokens.Swap, slippage decimal.Decimal, opts *tokens.QuoteFetchOpts, result *quoteResp) (*tokens.SwapQuote, error) {
	if result.ExpectedAmountOut.Int == nil || result.MinAmountOut.Int == nil {
		return nil, fmt.Errorf("%w: swap api %v returned incomplete quote", tokens.ErrUpstreamUnavailable, s.Name())
	}
	if respSlippage, err := decimal.NewFromString(result.SlippageTolerance); err == nil {
		slippage = respSlippage
	}
	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}
	quote := &tokens.SwapQuote{
		TokenIn:           swap.TokenIn,
		TokenOut:          swap.TokenOut,
		MaximumAmountIn:   result.MaximumAmountIn.Value(),
		MinAmountOut:      result.MinAmountOut.Value(),
		ExpectedAmountIn:  result.ExpectedAmountIn.Value(),
		ExpectedAmountOut: result.ExpectedAmountOut.Value(),
		SlippageTolerance: slippage,
		SwapProvider: tokens.SwapProvider{
			Name:    s.Name(),
			Sources: sources,
		},
		IsIndicative: opts.UseIndicativeQuote,
	}
	if result.Tx != nil {
		data, err := hexutil.Decode(result.Tx.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: swap api %v returned wrong tx data", tokens.ErrUpstreamUnavailable, s.Name())
		}
		quote.SwapTxns = []*tokens.SwapTx{{
			ChainID: swap.ChainID,
			To:      common.HexToAddress(result.Tx.To),
			Data:    data,
			Value:   result.Tx.Value.Value(),
		}}
	} else if !opts.UseIndicativeQuote {
		return nil, fmt.Errorf("%w: swap api %v returned quote without tx", tokens.ErrUpstreamUnavailable, s.Name())
	}
	return quote, nil
}

func (s *Strategy) classifyError(err error) error {
	var statusErr *client.HTTPStatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("%w: %v: %v", tokens.ErrUpstreamTransient, s.Name(), err)
	}
	switch {
	case strings.Contains(statusErr.Body, ErrCodeNoLiquidity):
		return fmt.Errorf("%w: %v", tokens.ErrSwapLiquidityUnavailable, s.Name())
	case strings.Contains(statusErr.Body, ErrCodeSourcesNotSupported):
		return fmt.Errorf("%w: %v", tokens.ErrSourcesNotSupported, s.Name())
	case statusErr.IsServerError():
		return fmt.Errorf("%w: %v: %v", tokens.ErrUpstreamUnavailable, s.Name(), err)
	default:
		return fmt.Errorf("%w: %v: %v", tokens.ErrInvalidParam, s.Name(), err)
	}
}

func swapTokenAddress(token tokens.Token, isNative bool) common.Address {
	if isNative {
		return tokens.NativeTokenAddress
	}
	return token.Address
}
