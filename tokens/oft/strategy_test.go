package oft

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/internal/testutil"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

var (
	testUser      = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testMessenger = common.HexToAddress("0x6C96dE32CEa08842dcc4058c14d3aaAD7Fa41dee")
)

func newStrategy(t *testing.T) (*Strategy, *testutil.FakeCaller) {
	cfg := testutil.LoadConfig(t)
	output, err := eth.OFTABI.PackOutput("quoteSend", eth.MessagingFee{NativeFee: big.NewInt(3000000000000), LzTokenFee: big.NewInt(0)})
	require.NoError(t, err)
	caller := testutil.NewFakeCaller().Return(eth.OFTABI.MethodID("quoteSend"), output)
	return NewStrategy(cfg, eth.NewContractReader(caller)), caller
}

func TestIsRouteSupported(t *testing.T) {
	s, _ := newStrategy(t)
	token := func(chainID uint64, symbol string) tokens.Token {
		return testutil.MustToken(t, s.cfg, chainID, symbol)
	}
	require.True(t, s.IsRouteSupported(token(1, "USDT"), token(42161, "USDT")))
	require.True(t, s.IsRouteSupported(token(42161, "USDT"), token(999, "USDT")))
	require.False(t, s.IsRouteSupported(token(1, "USDT"), token(10, "USDT")))
	require.False(t, s.IsRouteSupported(token(1, "USDC"), token(42161, "USDC")))
	require.False(t, s.IsRouteSupported(token(1, "USDT"), token(1, "USDT")))
}

func TestRemoveDust(t *testing.T) {
	require.Equal(t, "1234000000000000", RemoveDust(big.NewInt(1234567890123456), big.NewInt(1000000000000)).String())
	require.Equal(t, "0", RemoveDust(big.NewInt(999), big.NewInt(1000)).String())
	require.Equal(t, "5", RemoveDust(big.NewInt(5), big.NewInt(1)).String())
}

func TestQuotes(t *testing.T) {
	s, caller := newStrategy(t)
	input := testutil.MustToken(t, s.cfg, 1, "USDT")
	output := testutil.MustToken(t, s.cfg, 42161, "USDT")

	quote, err := s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       input,
		OutputToken:      output,
		ExactInputAmount: big.NewInt(2500000),
		Recipient:        testUser,
	})
	require.NoError(t, err)
	require.Equal(t, "2500000", quote.OutputAmount.String())
	require.Equal(t, "3000000000000", quote.MessagingFee.String())
	require.Equal(t, 0, quote.Fees.Total.Total.Sign())
	require.Equal(t, 1, caller.Calls(eth.OFTABI.MethodID("quoteSend")))

	quote, err = s.GetQuoteForOutput(context.Background(), &tokens.OutputQuoteParams{
		InputToken:      input,
		OutputToken:     output,
		MinOutputAmount: big.NewInt(700000),
		Recipient:       testUser,
	})
	require.NoError(t, err)
	require.Equal(t, "700000", quote.InputAmount.String())
}

func TestBuildTx(t *testing.T) {
	s, _ := newStrategy(t)
	input := testutil.MustToken(t, s.cfg, 1, "USDT")
	output := testutil.MustToken(t, s.cfg, 42161, "USDT")

	quote, err := s.GetQuoteForExactInput(context.Background(), &tokens.ExactInputQuoteParams{
		InputToken:       input,
		OutputToken:      output,
		ExactInputAmount: big.NewInt(2500000),
		Recipient:        testUser,
	})
	require.NoError(t, err)
	quotes := &tokens.CrossSwapQuotes{
		CrossSwap:   &tokens.CrossSwap{Depositor: testUser, Recipient: testUser, InputToken: input, OutputToken: output},
		BridgeQuote: quote,
	}
	tx, err := s.BuildTxForAllowanceHolder(context.Background(), quotes, "")
	require.NoError(t, err)
	require.Equal(t, testMessenger, tx.To)
	require.Equal(t, "3000000000000", tx.Value.String())
	require.Equal(t, eth.OFTABI.MethodID("send"), []byte(tx.Data[:4]))
	require.Len(t, tx.Approvals, 1)
	require.Equal(t, input.Address, tx.Approvals[0].Token)
	require.Equal(t, testMessenger, tx.Approvals[0].Spender)

	quotes.OriginSwapQuote = &tokens.SwapQuote{}
	_, err = s.BuildTxForAllowanceHolder(context.Background(), quotes, "")
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)
}
