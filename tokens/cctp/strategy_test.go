package cctp

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/internal/testutil"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

var testUser = common.HexToAddress("0x1111111111111111111111111111111111111111")

func TestIsRouteSupported(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	s := NewStrategy(cfg)
	token := func(chainID uint64, symbol string) tokens.Token {
		return testutil.MustToken(t, cfg, chainID, symbol)
	}

	require.True(t, s.IsRouteSupported(token(1, "USDC"), token(10, "USDC")))
	require.True(t, s.IsRouteSupported(token(8453, "USDC"), token(1, "USDC")))
	require.False(t, s.IsRouteSupported(token(1, "USDC"), token(1, "USDC")))
	require.False(t, s.IsRouteSupported(token(1, "USDT"), token(42161, "USDT")))
	require.False(t, s.IsRouteSupported(token(1, "WETH"), token(10, "WETH")))
	require.False(t, s.IsRouteSupported(token(42161, "USDC"), token(1337, "USDH")))

	require.Equal(t, []tokens.CrossSwapType{tokens.BridgeableToBridgeable},
		s.GetCrossSwapTypes(&tokens.CrossSwapTypesParams{InputToken: token(1, "USDC"), OutputToken: token(10, "USDC")}))
	require.Empty(t, s.GetCrossSwapTypes(&tokens.CrossSwapTypesParams{InputToken: token(1, "WETH"), OutputToken: token(10, "USDC")}))
}

func TestQuotes(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	s := NewStrategy(cfg)
	input := testutil.MustToken(t, cfg, 1, "USDC")
	output := testutil.MustToken(t, cfg, 10, "USDC")

	quote, err := s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       input,
		OutputToken:      output,
		ExactInputAmount: big.NewInt(1000000),
		Recipient:        testUser,
	})
	require.NoError(t, err)
	require.Equal(t, "999900", quote.OutputAmount.String())
	require.Equal(t, "100", quote.Fees.Total.Total.String())
	require.True(t, quote.Fees.LP.Total.Sign() == 0)

	quote, err = s.GetQuoteForOutput(context.Background(), &tokens.OutputQuoteParams{
		InputToken:      input,
		OutputToken:     output,
		MinOutputAmount: big.NewInt(999900),
		Recipient:       testUser,
	})
	require.NoError(t, err)
	require.Equal(t, "1000000", quote.InputAmount.String())
	require.Equal(t, "999900", quote.OutputAmount.String())

	_, err = s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       input,
		OutputToken:      output,
		ExactInputAmount: big.NewInt(1),
	})
	require.ErrorIs(t, err, tokens.ErrAmountTooLow)
}

func TestPreconditions(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	s := NewStrategy(cfg)
	crossSwap := &tokens.CrossSwap{
		InputToken:  testutil.MustToken(t, cfg, 1, "USDC"),
		OutputToken: testutil.MustToken(t, cfg, 10, "USDC"),
		Recipient:   testUser,
	}
	recipient, err := s.GetBridgeQuoteRecipient(crossSwap, false)
	require.NoError(t, err)
	require.Equal(t, testUser, recipient)

	_, err = s.GetBridgeQuoteRecipient(crossSwap, true)
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)

	crossSwap.AppFee = &tokens.AppFee{Fraction: decimal.RequireFromString("0.01")}
	_, err = s.GetBridgeQuoteMessage(crossSwap, crossSwap.AppFee, nil)
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)
}

func TestBuildTx(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	s := NewStrategy(cfg)
	input := testutil.MustToken(t, cfg, 1, "USDC")
	output := testutil.MustToken(t, cfg, 10, "USDC")
	messenger := common.HexToAddress("0x28b5a0e9C621a5BadaA536219b3a228C8168cf5d")

	quote, err := s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       input,
		OutputToken:      output,
		ExactInputAmount: big.NewInt(1000000),
		Recipient:        testUser,
	})
	require.NoError(t, err)
	quotes := &tokens.CrossSwapQuotes{
		CrossSwap:   &tokens.CrossSwap{Depositor: testUser, Recipient: testUser, InputToken: input, OutputToken: output},
		BridgeQuote: quote,
	}
	tx, err := s.BuildTxForAllowanceHolder(context.Background(), quotes, "")
	require.NoError(t, err)
	require.Equal(t, messenger, tx.To)
	require.Equal(t, messenger, tx.Approvals[0].Spender)

	values, err := eth.TokenMessengerABI.UnpackInput("depositForBurn", tx.Data)
	require.NoError(t, err)
	require.Equal(t, "1000000", values[0].(*big.Int).String())
	require.Equal(t, uint32(2), values[1].(uint32))
	require.Equal(t, tokens.AddressToBytes32(testUser), values[2].([32]byte))
	require.Equal(t, "100", values[5].(*big.Int).String())
	require.Equal(t, FinalityThresholdFast, values[6].(uint32))

	quotes.OriginSwapQuote = &tokens.SwapQuote{}
	_, err = s.BuildTxForAllowanceHolder(context.Background(), quotes, "")
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)
}
