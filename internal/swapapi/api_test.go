package swapapi

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	rpcjson "github.com/gorilla/rpc/v2/json2"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/internal/testutil"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/router/bridge"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/across"
)

var testUser = common.HexToAddress("0x00000000000000000000000000000000000000AB")

func tokenAddress(t *testing.T, cfg *params.RouterConfig, chainID uint64, symbol string) string {
	address, _, exist := cfg.GetTokenAddress(chainID, symbol)
	require.True(t, exist)
	return common.HexToAddress(address).Hex()
}

func newQuoteArgs(t *testing.T, cfg *params.RouterConfig, symbol, amount string) *QuoteArgs {
	return &QuoteArgs{
		Amount:             amount,
		InputToken:         tokenAddress(t, cfg, 1, symbol),
		OriginChainID:      1,
		OutputToken:        tokenAddress(t, cfg, 10, symbol),
		DestinationChainID: 10,
		Depositor:          testUser.Hex(),
	}
}

func TestParseQuoteArgs(t *testing.T) {
	cfg := testutil.LoadConfig(t)

	args := newQuoteArgs(t, cfg, "USDC", "100000000")
	crossSwap, err := ParseQuoteArgs(cfg, args)
	require.NoError(t, err)
	require.Equal(t, "USDC", crossSwap.InputToken.Symbol)
	require.Equal(t, uint64(10), crossSwap.OutputToken.ChainID)
	require.Equal(t, tokens.ExactInput, crossSwap.Type)
	require.Equal(t, testUser, crossSwap.Recipient)
	require.True(t, crossSwap.Slippage.Auto)
	require.Nil(t, crossSwap.AppFee)

	args.InputToken = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
	args.OutputToken = tokenAddress(t, cfg, 10, "WETH")
	args.TradeType = "minOutput"
	args.SlippageTolerance = "0.5"
	args.AppFee = "0.001"
	args.AppFeeRecipient = testUser.Hex()
	crossSwap, err = ParseQuoteArgs(cfg, args)
	require.NoError(t, err)
	require.True(t, crossSwap.IsInputNative)
	require.Equal(t, "WETH", crossSwap.InputToken.Symbol)
	require.Equal(t, tokens.MinOutput, crossSwap.Type)
	require.Equal(t, "0.5", crossSwap.Slippage.String())
	require.Equal(t, "0.001", crossSwap.AppFee.Fraction.String())
}

func TestParseQuoteArgsErrors(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	unknown := common.HexToAddress("0x000000000000000000000000000000000000dEaD").Hex()

	tests := []struct {
		name   string
		modify func(args *QuoteArgs)
	}{
		{"missing amount", func(args *QuoteArgs) { args.Amount = "" }},
		{"zero amount", func(args *QuoteArgs) { args.Amount = "0" }},
		{"decimal amount", func(args *QuoteArgs) { args.Amount = "1.5" }},
		{"same chain", func(args *QuoteArgs) { args.DestinationChainID = 1 }},
		{"unknown trade type", func(args *QuoteArgs) { args.TradeType = "exactAll" }},
		{"bad depositor", func(args *QuoteArgs) { args.Depositor = "0x1234" }},
		{"unsupported chain", func(args *QuoteArgs) { args.DestinationChainID = 424242 }},
		{"unknown token without decimals", func(args *QuoteArgs) { args.InputToken = unknown }},
		{"slippage out of range", func(args *QuoteArgs) { args.SlippageTolerance = "101" }},
		{"app fee too large", func(args *QuoteArgs) {
			args.AppFee = "1"
			args.AppFeeRecipient = testUser.Hex()
		}},
		{"app fee without recipient", func(args *QuoteArgs) { args.AppFee = "0.01" }},
		{"recipient without app fee", func(args *QuoteArgs) { args.AppFeeRecipient = testUser.Hex() }},
		{"include and exclude sources", func(args *QuoteArgs) {
			args.IncludeSources = []string{"uniswap_v3"}
			args.ExcludeSources = []string{"curve"}
		}},
		{"gasless without permit", func(args *QuoteArgs) { args.Gasless = true }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			args := newQuoteArgs(t, cfg, "USDC", "100000000")
			test.modify(args)
			_, err := ParseQuoteArgs(cfg, args)
			require.ErrorIs(t, err, tokens.ErrInvalidParam)
		})
	}

	args := newQuoteArgs(t, cfg, "USDC", "100000000")
	args.InputToken = unknown
	args.InputDecimals = 18
	crossSwap, err := ParseQuoteArgs(cfg, args)
	require.NoError(t, err)
	require.Empty(t, crossSwap.InputToken.Symbol)
	require.Equal(t, uint8(18), crossSwap.InputToken.Decimals)
}

func setupServices(t *testing.T) *params.RouterConfig {
	cfg := testutil.LoadConfig(t)
	s, err := bridge.NewServices(cfg, &bridge.Deps{
		Provider: &testutil.FakeBridgeProvider{FeeBps: 10},
		Caller:   testutil.NewFakeCaller(),
	})
	require.NoError(t, err)
	bridge.SetServices(s)
	t.Cleanup(func() { bridge.SetServices(nil) })
	return cfg
}

func TestGetQuote(t *testing.T) {
	cfg := setupServices(t)
	ctx := context.Background()

	args := newQuoteArgs(t, cfg, "WETH", "1000000000000000000")
	args.BuildTx = true
	result, err := GetQuote(ctx, args)
	require.NoError(t, err)
	require.NotEmpty(t, result.ID)
	require.Equal(t, tokens.BridgeableToBridgeable, result.Quotes.CrossSwapType)
	require.Equal(t, across.Name, result.Quotes.Strategy)
	require.Equal(t, "999000000000000000", result.Quotes.BridgeQuote.OutputAmount.String())
	require.Nil(t, result.Quotes.OriginSwapQuote)
	require.Nil(t, result.Quotes.DestinationSwapQuote)

	require.NotNil(t, result.SwapTx)
	require.Equal(t, common.HexToAddress(cfg.GetChainConfig(1).SpokePool), result.SwapTx.To)
	require.Len(t, result.SwapTx.Approvals, 1)
	require.Equal(t, big.NewInt(0), result.SwapTx.Value)
	require.Nil(t, result.GaslessTx)

	resolved, err := ResolveStrategy(ctx, args)
	require.NoError(t, err)
	require.Equal(t, across.Name, resolved.Strategy)

	info := GetServerInfo()
	require.Equal(t, cfg.Identifier, info.Identifier)
	require.Contains(t, info.Strategies, across.Name)
}

func TestGetQuoteWithoutServices(t *testing.T) {
	bridge.SetServices(nil)
	_, err := GetQuote(context.Background(), &QuoteArgs{})
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestErrorMapping(t *testing.T) {
	tooLow := tokens.NewAmountTooLowError("bridge output below destination swap input", big.NewInt(100), big.NewInt(90))
	require.Equal(t, http.StatusBadRequest, HTTPStatus(tooLow))
	require.Equal(t, http.StatusBadGateway, HTTPStatus(tokens.ErrSwapLiquidityUnavailable))
	require.Equal(t, http.StatusServiceUnavailable, HTTPStatus(tokens.ErrRPCQueryError))
	require.Equal(t, http.StatusNotFound, HTTPStatus(tokens.ErrNoQuoteFound))
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))

	err := ToRPCError(tooLow)
	var rpcErr *rpcjson.Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, CodeAmountTooLow, rpcErr.Code)
	data, ok := rpcErr.Data.(*ErrorData)
	require.True(t, ok)
	require.Equal(t, tokens.KindAmountTooLow, data.Kind)
	require.Equal(t, "10", data.Shortfall)

	err = ToRPCError(tokens.ErrRouteNotSupported)
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, CodeInvalidParam, rpcErr.Code)
	require.Nil(t, ToRPCError(nil))
}
