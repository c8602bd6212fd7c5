package gasless

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/internal/testutil"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

var (
	testDepositor = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testPeriphery = common.HexToAddress("0x89415a82d909a7238d69094C3Dd1dCC1aCbDa85C")
	testUSDC      = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
)

func mustPack(t *testing.T, contractAbi *eth.Abi, method string, values ...interface{}) []byte {
	t.Helper()
	packed, err := contractAbi.PackOutput(method, values...)
	require.NoError(t, err)
	return packed
}

func newFakeCaller(t *testing.T) *testutil.FakeCaller {
	domain := apitypes.TypedData{
		Types: eip712Types,
		Domain: apitypes.TypedDataDomain{
			Name:              "USD Coin",
			Version:           "2",
			ChainId:           math.NewHexOrDecimal256(42161),
			VerifyingContract: testUSDC.Hex(),
		},
	}
	separator, err := domain.HashStruct("EIP712Domain", domain.Domain.Map())
	require.NoError(t, err)

	witnessOfCall := func(_ common.Address, data []byte) ([]byte, error) {
		var witness [32]byte = crypto.Keccak256Hash(data)
		return eth.PeripheryABI.PackOutput("hashDepositData", witness)
	}

	return testutil.NewFakeCaller().
		Return(eth.ERC20ABI.MethodID("DOMAIN_SEPARATOR"), mustPack(t, eth.ERC20ABI, "DOMAIN_SEPARATOR", [32]byte(common.BytesToHash(separator)))).
		Return(eth.ERC20ABI.MethodID("name"), mustPack(t, eth.ERC20ABI, "name", "USD Coin")).
		Return(eth.ERC20ABI.MethodID("version"), mustPack(t, eth.ERC20ABI, "version", "2")).
		Return(eth.SpokePoolABI.MethodID("getUnsafeDepositId"), mustPack(t, eth.SpokePoolABI, "getUnsafeDepositId", big.NewInt(42))).
		Handle(eth.PeripheryABI.MethodID("permitNonces"), func(contract common.Address, data []byte) ([]byte, error) {
			if contract != testPeriphery {
				return nil, fmt.Errorf("permitNonces of %v", contract.Hex())
			}
			return eth.PeripheryABI.PackOutput("permitNonces", big.NewInt(7))
		}).
		Handle(eth.PeripheryABI.MethodID("hashDepositData"), witnessOfCall).
		Handle(eth.PeripheryABI.MethodID("hashSwapAndDepositData"), witnessOfCall)
}

func testQuotes() *tokens.CrossSwapQuotes {
	input := tokens.Token{Address: testUSDC, ChainID: 42161, Symbol: "USDC", Decimals: 6}
	output := tokens.Token{Address: common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"), ChainID: 10, Symbol: "USDC", Decimals: 6}
	return &tokens.CrossSwapQuotes{
		CrossSwap: &tokens.CrossSwap{
			Amount:      big.NewInt(1000000),
			InputToken:  input,
			OutputToken: output,
			Depositor:   testDepositor,
			Recipient:   testDepositor,
			Type:        tokens.ExactInput,
		},
		CrossSwapType: tokens.BridgeableToBridgeable,
		BridgeQuote: &tokens.BridgeQuote{
			InputToken:   input,
			OutputToken:  output,
			InputAmount:  big.NewInt(1000000),
			OutputAmount: big.NewInt(990000),
			Recipient:    testDepositor,
		},
	}
}

func TestBuildDeposit(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	caller := newFakeCaller(t)
	builder := NewBuilder(cfg, eth.NewContractReader(caller))

	permit := &tokens.PermitParams{
		ValidAfter:    100,
		ValidBefore:   200,
		SubmissionFee: big.NewInt(500),
	}
	tx, err := builder.Build(context.Background(), testQuotes(), permit)
	require.NoError(t, err)

	require.Equal(t, tokens.GaslessDeposit, tx.Kind)
	require.Equal(t, testPeriphery, tx.To)
	require.Equal(t, "42", tx.DepositID.String())
	require.Equal(t, "7", tx.AuthorizationNonce.String())
	require.Equal(t, 1, caller.Calls(eth.PeripheryABI.MethodID("permitNonces")))
	require.NotNil(t, tx.DepositData)
	require.Nil(t, tx.SwapAndDepositData)

	hashInput, err := eth.EncodeHashDepositData(tx.DepositData)
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256Hash(hashInput), tx.Witness)

	message := tx.TypedData.Message
	require.Equal(t, hexutil.Encode(tx.Witness.Bytes()), message["nonce"])
	require.Equal(t, "1000500", message["value"])
	require.Equal(t, testPeriphery.Hex(), message["to"])
	require.Equal(t, "200", message["validBefore"])
	require.Equal(t, TransferWithAuthorizationType, tx.TypedData.PrimaryType)
	require.Equal(t, "USD Coin", tx.TypedData.Domain.Name)
}

func TestWitnessBindsNonce(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	builder := NewBuilder(cfg, eth.NewContractReader(newFakeCaller(t)))

	nonces := []*big.Int{big.NewInt(1), big.NewInt(2)}
	witnesses := make([]common.Hash, 0, len(nonces))
	for _, nonce := range nonces {
		nonce := nonce
		builder.NonceFunc = func() (*big.Int, error) { return nonce, nil }
		tx, err := builder.Build(context.Background(), testQuotes(), nil)
		require.NoError(t, err)
		require.Equal(t, nonce, tx.DepositData.Nonce)
		require.Equal(t, hexutil.Encode(tx.Witness.Bytes()), tx.TypedData.Message["nonce"])
		witnesses = append(witnesses, tx.Witness)
	}
	require.NotEqual(t, witnesses[0], witnesses[1])
}

func TestBuildSwapAndDeposit(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	builder := NewBuilder(cfg, eth.NewContractReader(newFakeCaller(t)))

	quotes := testQuotes()
	weth := tokens.Token{Address: common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"), ChainID: 42161, Symbol: "WETH", Decimals: 18}
	router := common.HexToAddress("0xA51afAFe0263b40EdaEf0Df8781eA9aa03E381a3")
	quotes.CrossSwapType = tokens.AnyToBridgeable
	quotes.OriginSwapQuote = &tokens.SwapQuote{
		TokenIn:         weth,
		TokenOut:        quotes.BridgeQuote.InputToken,
		MaximumAmountIn: big.NewInt(400000000000000),
		MinAmountOut:    big.NewInt(1000000),
		SwapTxns:        []*tokens.SwapTx{{ChainID: 42161, To: router, Data: common.FromHex("0x1234")}},
	}

	quotes.Contracts.DepositEntryPoint = tokens.EntryPoint{Name: tokens.EntryPointSwapProxy, Address: router}
	_, err := builder.Build(context.Background(), quotes, nil)
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)

	quotes.Contracts.DepositEntryPoint = tokens.EntryPoint{Name: tokens.EntryPointPeriphery, Address: testPeriphery}
	tx, err := builder.Build(context.Background(), quotes, nil)
	require.NoError(t, err)
	require.Equal(t, tokens.GaslessSwapAndDeposit, tx.Kind)
	require.Equal(t, router, tx.SwapAndDepositData.Exchange)
	require.Equal(t, weth.Address.Hex(), tx.TypedData.Domain.VerifyingContract)
	require.Equal(t, "7", tx.AuthorizationNonce.String())

	hashInput, err := eth.EncodeHashSwapAndDepositData(tx.SwapAndDepositData)
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256Hash(hashInput), tx.Witness)
}
