package across

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/internal/testutil"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

var (
	testUser    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testHandler = common.HexToAddress("0x924a9f036260DdD5808007E1AA95f08eD08aA569")
)

func TestGetCrossSwapTypes(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	s := NewStrategy(cfg, &testutil.FakeBridgeProvider{}, nil)
	token := func(chainID uint64, symbol string) tokens.Token {
		return testutil.MustToken(t, cfg, chainID, symbol)
	}
	unknown := tokens.Token{Address: common.HexToAddress("0x9999999999999999999999999999999999999999"), ChainID: 1, Decimals: 18}

	cases := []struct {
		name     string
		input    tokens.Token
		output   tokens.Token
		expected []tokens.CrossSwapType
	}{
		{"direct route", token(1, "USDC"), token(10, "USDC"), []tokens.CrossSwapType{tokens.BridgeableToBridgeable}},
		{"both bridgeable without route", token(1, "USDC"), token(10, "WETH"), []tokens.CrossSwapType{tokens.BridgeableToAny, tokens.AnyToBridgeable}},
		{"input bridgeable", token(8453, "DAI"), token(10, "WETH"), []tokens.CrossSwapType{tokens.BridgeableToAny}},
		{"output bridgeable", unknown, token(10, "USDC"), []tokens.CrossSwapType{tokens.AnyToBridgeable}},
		{"nothing bridgeable", token(8453, "WETH"), token(10, "USDC"), []tokens.CrossSwapType{tokens.AnyToAny}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			types := s.GetCrossSwapTypes(&tokens.CrossSwapTypesParams{InputToken: c.input, OutputToken: c.output})
			require.Equal(t, c.expected, types)
		})
	}
}

func TestGetQuoteForExactInput(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	provider := &testutil.FakeBridgeProvider{FeeBps: 10}
	s := NewStrategy(cfg, provider, nil)

	input := testutil.MustToken(t, cfg, 1, "USDC")
	output := testutil.MustToken(t, cfg, 10, "USDC")
	quote, err := s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       input,
		OutputToken:      output,
		ExactInputAmount: big.NewInt(1000000),
		Recipient:        testUser,
	})
	require.NoError(t, err)
	require.Equal(t, "999000", quote.OutputAmount.String())
	require.Equal(t, "1000", quote.Fees.Total.Total.String())
	require.Equal(t, "0.001", quote.Fees.Total.Pct.String())
	require.Equal(t, Name, quote.Provider)
	require.Equal(t, 10, quote.EstimatedFillTimeSec)

	// 6 decimals on hyperevm to 8 decimals on hypercore
	quote, err = s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       testutil.MustToken(t, cfg, 999, "USDC"),
		OutputToken:      testutil.MustToken(t, cfg, 1337, "USDC"),
		ExactInputAmount: big.NewInt(1000000),
		Recipient:        testUser,
	})
	require.NoError(t, err)
	require.Equal(t, "99900000", quote.OutputAmount.String())
}

func TestGetQuoteAmountTooLow(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	s := NewStrategy(cfg, &testutil.FakeBridgeProvider{FeeBps: 10, MinDeposit: big.NewInt(3000000)}, nil)

	_, err := s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       testutil.MustToken(t, cfg, 1, "USDC"),
		OutputToken:      testutil.MustToken(t, cfg, 10, "USDC"),
		ExactInputAmount: big.NewInt(1000000),
	})
	require.ErrorIs(t, err, tokens.ErrAmountTooLow)
	var tooLow *tokens.AmountTooLowError
	require.True(t, errors.As(err, &tooLow))
	require.Equal(t, "2000000", tooLow.Shortfall().String())

	// fee eats the whole input
	s = NewStrategy(cfg, &testutil.FakeBridgeProvider{FeeBps: 10000}, nil)
	_, err = s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       testutil.MustToken(t, cfg, 1, "USDC"),
		OutputToken:      testutil.MustToken(t, cfg, 10, "USDC"),
		ExactInputAmount: big.NewInt(1000000),
	})
	require.ErrorIs(t, err, tokens.ErrAmountTooLow)
}

func TestGetQuoteForOutput(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	provider := &testutil.FakeBridgeProvider{FeeBps: 10}
	s := NewStrategy(cfg, provider, nil)

	params := &tokens.OutputQuoteParams{
		InputToken:      testutil.MustToken(t, cfg, 1, "USDC"),
		OutputToken:     testutil.MustToken(t, cfg, 10, "USDC"),
		MinOutputAmount: big.NewInt(1000000),
		Recipient:       testUser,
	}
	quote, err := s.GetQuoteForOutput(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, "1001001", quote.InputAmount.String())
	require.Equal(t, "1000000", quote.OutputAmount.String())
	require.Equal(t, 2, provider.FeesCalls())

	params.ForceExactOutput = true
	quote, err = s.GetQuoteForOutput(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, "1000000", quote.OutputAmount.String())

	params.MinOutputAmount = big.NewInt(0)
	_, err = s.GetQuoteForOutput(context.Background(), params)
	require.ErrorIs(t, err, tokens.ErrInvalidParam)
}

func TestBridgeQuoteRecipientAndMessage(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	s := NewStrategy(cfg, &testutil.FakeBridgeProvider{}, nil)

	crossSwap := &tokens.CrossSwap{
		InputToken:  testutil.MustToken(t, cfg, 1, "USDC"),
		OutputToken: testutil.MustToken(t, cfg, 10, "USDC"),
		Recipient:   testUser,
	}
	recipient, err := s.GetBridgeQuoteRecipient(crossSwap, false)
	require.NoError(t, err)
	require.Equal(t, testUser, recipient)
	message, err := s.GetBridgeQuoteMessage(crossSwap, nil, nil)
	require.NoError(t, err)
	require.Empty(t, message)

	crossSwap.AppFee = &tokens.AppFee{Fraction: decimal.RequireFromString("0.01"), Recipient: testHandler}
	recipient, err = s.GetBridgeQuoteRecipient(crossSwap, false)
	require.NoError(t, err)
	require.Equal(t, testHandler, recipient)

	message, err = s.GetBridgeQuoteMessage(crossSwap, crossSwap.AppFee.WithAmount(big.NewInt(10)), nil)
	require.NoError(t, err)
	instructions, err := eth.DecodeInstructions(message)
	require.NoError(t, err)
	require.Len(t, instructions.Calls, 2)
	require.Equal(t, testUser, instructions.FallbackRecipient)
}

func TestBuildTxForAllowanceHolder(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	s := NewStrategy(cfg, &testutil.FakeBridgeProvider{FeeBps: 10}, nil)
	spokePool := common.HexToAddress("0x5c7BCd6E7De5423a257D81B442095A1a6ced35C5")

	input := testutil.MustToken(t, cfg, 1, "USDC")
	output := testutil.MustToken(t, cfg, 10, "USDC")
	crossSwap := &tokens.CrossSwap{
		Amount:      big.NewInt(1000000),
		InputToken:  input,
		OutputToken: output,
		Depositor:   testUser,
		Recipient:   testUser,
	}
	bridgeQuote, err := s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       input,
		OutputToken:      output,
		ExactInputAmount: crossSwap.Amount,
		Recipient:        testUser,
		CrossSwap:        crossSwap,
	})
	require.NoError(t, err)
	quotes := &tokens.CrossSwapQuotes{
		CrossSwap:     crossSwap,
		CrossSwapType: tokens.BridgeableToBridgeable,
		BridgeQuote:   bridgeQuote,
	}

	tx, err := s.BuildTxForAllowanceHolder(context.Background(), quotes, "0x0042")
	require.NoError(t, err)
	require.Equal(t, spokePool, tx.To)
	require.Equal(t, eth.SpokePoolABI.MethodID("depositV3"), []byte(tx.Data[:4]))
	require.True(t, bytes.HasSuffix(tx.Data, common.FromHex("0x1dc0de0042")))
	require.Len(t, tx.Approvals, 1)
	require.Equal(t, spokePool, tx.Approvals[0].Spender)
	require.Equal(t, "0", tx.Value.String())

	crossSwap.IsInputNative = true
	tx, err = s.BuildTxForAllowanceHolder(context.Background(), quotes, "")
	require.NoError(t, err)
	require.Empty(t, tx.Approvals)
	require.Equal(t, "1000000", tx.Value.String())
	crossSwap.IsInputNative = false

	weth := testutil.MustToken(t, cfg, 1, "WETH")
	periphery := common.HexToAddress("0x89415a82d909a7238d69094C3Dd1dCC1aCbDa85C")
	quotes.CrossSwapType = tokens.AnyToBridgeable
	quotes.OriginSwapQuote = &tokens.SwapQuote{
		TokenIn:         weth,
		TokenOut:        input,
		MaximumAmountIn: big.NewInt(500000000000000),
		MinAmountOut:    big.NewInt(1000000),
		SwapTxns:        []*tokens.SwapTx{{ChainID: 1, To: common.HexToAddress("0x66a9893cC07D91D95644AEDD05D03f95e1dBA8Af"), Data: common.FromHex("0xabcd")}},
	}
	_, err = s.BuildTxForAllowanceHolder(context.Background(), quotes, "")
	require.ErrorIs(t, err, tokens.ErrMissEntryPoint)

	quotes.Contracts.DepositEntryPoint = tokens.EntryPoint{Name: tokens.EntryPointPeriphery, Address: periphery}
	tx, err = s.BuildTxForAllowanceHolder(context.Background(), quotes, "")
	require.NoError(t, err)
	require.Equal(t, periphery, tx.To)
	require.Equal(t, eth.PeripheryABI.MethodID("swapAndBridge"), []byte(tx.Data[:4]))
	require.Equal(t, weth.Address, tx.Approvals[0].Token)
	require.Equal(t, "500000000000000", tx.Approvals[0].Amount.String())
}

func TestBuildGaslessTxDisabled(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	s := NewStrategy(cfg, &testutil.FakeBridgeProvider{}, nil)
	require.False(t, s.Capabilities().SupportsGasless)
	_, err := s.BuildGaslessTx(context.Background(), &tokens.CrossSwapQuotes{}, "", nil)
	require.ErrorIs(t, err, tokens.ErrNotImplemented)
}
