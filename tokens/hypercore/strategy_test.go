package hypercore

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

var (
	testUser          = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testOther         = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testSystemAddress = common.HexToAddress("0x2000000000000000000000000000000000000000")

	// precompile input has no method selector
	coreUserExistsKey = []byte{0, 0, 0, 0}
)

func newStrategy(t *testing.T, exists bool) *Strategy {
	cfg := testutil.LoadConfig(t)
	output, err := eth.CoreUserExistsABI.PackOutput("coreUserExists", exists)
	require.NoError(t, err)
	caller := testutil.NewFakeCaller().Return(coreUserExistsKey, output)
	return NewStrategy(cfg, eth.NewContractReader(caller))
}

func newCrossSwap(t *testing.T, s *Strategy) *tokens.CrossSwap {
	return &tokens.CrossSwap{
		Amount:      big.NewInt(5000000),
		InputToken:  testutil.MustToken(t, s.cfg, 999, "USDC"),
		OutputToken: testutil.MustToken(t, s.cfg, 1337, "USDC"),
		Depositor:   testUser,
		Recipient:   testUser,
		Type:        tokens.ExactInput,
	}
}

func TestIsRouteSupported(t *testing.T) {
	s := newStrategy(t, true)
	token := func(chainID uint64, symbol string) tokens.Token {
		return testutil.MustToken(t, s.cfg, chainID, symbol)
	}
	require.True(t, s.IsRouteSupported(token(999, "USDC"), token(1337, "USDC")))
	require.False(t, s.IsRouteSupported(token(42161, "USDC"), token(1337, "USDC")))
	require.False(t, s.IsRouteSupported(token(42161, "USDC"), token(1337, "USDH")))
	require.False(t, s.IsRouteSupported(token(999, "USDC"), token(42161, "USDC")))
}

func TestPreconditions(t *testing.T) {
	s := newStrategy(t, true)
	crossSwap := newCrossSwap(t, s)
	require.NoError(t, CheckPreconditions(crossSwap, false))
	require.ErrorIs(t, CheckPreconditions(crossSwap, true), tokens.ErrPreconditionFailed)

	other := *crossSwap
	other.Recipient = testOther
	_, err := s.GetBridgeQuoteRecipient(&other, false)
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)

	other = *crossSwap
	other.AppFee = &tokens.AppFee{Fraction: decimal.RequireFromString("0.001"), Recipient: testOther}
	_, err = s.GetBridgeQuoteMessage(&other, nil, nil)
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)

	other = *crossSwap
	other.EmbeddedActions = []*tokens.Action{{Target: testOther}}
	_, err = s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       other.InputToken,
		OutputToken:      other.OutputToken,
		ExactInputAmount: other.Amount,
		Recipient:        testUser,
		CrossSwap:        &other,
	})
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)
}

func TestQuotes(t *testing.T) {
	s := newStrategy(t, true)
	crossSwap := newCrossSwap(t, s)
	quote, err := s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       crossSwap.InputToken,
		OutputToken:      crossSwap.OutputToken,
		ExactInputAmount: crossSwap.Amount,
		Recipient:        testUser,
		CrossSwap:        crossSwap,
	})
	require.NoError(t, err)
	require.Equal(t, "500000000", quote.OutputAmount.String())
	require.Equal(t, 0, quote.Fees.Total.Total.Sign())

	// recipient without core account pays the activation fee
	s = newStrategy(t, false)
	quote, err = s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       crossSwap.InputToken,
		OutputToken:      crossSwap.OutputToken,
		ExactInputAmount: crossSwap.Amount,
		Recipient:        testUser,
		CrossSwap:        crossSwap,
	})
	require.NoError(t, err)
	require.Equal(t, "400000000", quote.OutputAmount.String())
	require.Equal(t, "1000000", quote.Fees.Total.Total.String())

	quote, err = s.GetQuoteForOutput(context.Background(), &tokens.OutputQuoteParams{
		InputToken:      crossSwap.InputToken,
		OutputToken:     crossSwap.OutputToken,
		MinOutputAmount: big.NewInt(300000001),
		Recipient:       testUser,
	})
	require.NoError(t, err)
	require.Equal(t, "4000001", quote.InputAmount.String())

	_, err = s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       crossSwap.InputToken,
		OutputToken:      crossSwap.OutputToken,
		ExactInputAmount: big.NewInt(1000000),
		Recipient:        testUser,
	})
	require.ErrorIs(t, err, tokens.ErrAmountTooLow)
}

func TestBuildTx(t *testing.T) {
	s := newStrategy(t, true)
	crossSwap := newCrossSwap(t, s)
	quote, err := s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       crossSwap.InputToken,
		OutputToken:      crossSwap.OutputToken,
		ExactInputAmount: crossSwap.Amount,
		Recipient:        testUser,
		CrossSwap:        crossSwap,
	})
	require.NoError(t, err)
	quotes := &tokens.CrossSwapQuotes{CrossSwap: crossSwap, BridgeQuote: quote}

	tx, err := s.BuildTxForAllowanceHolder(context.Background(), quotes, "")
	require.NoError(t, err)
	require.Equal(t, crossSwap.InputToken.Address, tx.To)
	require.Empty(t, tx.Approvals)
	values, err := eth.ERC20ABI.UnpackInput("transfer", tx.Data)
	require.NoError(t, err)
	require.Equal(t, testSystemAddress, values[0].(common.Address))
	require.Equal(t, "5000000", values[1].(*big.Int).String())

	quotes.DestinationSwapQuote = &tokens.SwapQuote{}
	_, err = s.BuildTxForAllowanceHolder(context.Background(), quotes, "")
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)
}

func TestAccountExists(t *testing.T) {
	s := newStrategy(t, false)
	exists, err := s.AccountExists(context.Background(), 1337, testUser)
	require.NoError(t, err)
	require.False(t, exists)

	// no evm chain is connected to chain 10
	exists, err = s.AccountExists(context.Background(), 10, testUser)
	require.NoError(t, err)
	require.True(t, exists)
}
