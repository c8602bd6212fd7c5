// Package gasless builds the unsigned gasless deposit payloads,
// the depositor signs a TransferWithAuthorization whose nonce is the deposit witness.
package gasless

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	cmn "github.com/anyswap/CrossSwap-Router/common"
	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
)

// TransferWithAuthorizationType eip-3009 primary type
const TransferWithAuthorizationType = "TransferWithAuthorization"

var (
	maxNonce = new(big.Int).Lsh(big.NewInt(1), 256)

	eip712Types = apitypes.Types{
		"EIP712Domain": []apitypes.Type{
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		TransferWithAuthorizationType: []apitypes.Type{
			{Name: "from", Type: "address"},
			{Name: "to", Type: "address"},
			{Name: "value", Type: "uint256"},
			{Name: "validAfter", Type: "uint256"},
			{Name: "validBefore", Type: "uint256"},
			{Name: "nonce", Type: "bytes32"},
		},
	}
)

// Builder gasless payload builder
type Builder struct {
	cfg    *params.RouterConfig
	reader *eth.ContractReader

	// NonceFunc generates the deposit nonce, random uint256 by default
	NonceFunc func() (*big.Int, error)
}

// NewBuilder new builder
func NewBuilder(cfg *params.RouterConfig, reader *eth.ContractReader) *Builder {
	return &Builder{
		cfg:       cfg,
		reader:    reader,
		NonceFunc: RandomNonce,
	}
}

// RandomNonce random uint256
func RandomNonce() (*big.Int, error) {
	return rand.Int(rand.Reader, maxNonce)
}

type authorization struct {
	token common.Address
	value *big.Int
}

// Build build gasless payload of composed quotes
func (b *Builder) Build(ctx context.Context, quotes *tokens.CrossSwapQuotes, permit *tokens.PermitParams) (*tokens.GaslessTx, error) {
	if quotes == nil || quotes.CrossSwap == nil || quotes.BridgeQuote == nil {
		return nil, fmt.Errorf("%w: incomplete quotes", tokens.ErrInvalidParam)
	}
	if permit == nil {
		permit = &tokens.PermitParams{}
	}
	crossSwap := quotes.CrossSwap
	chainID := crossSwap.InputToken.ChainID
	chainCfg := b.cfg.GetChainConfig(chainID)
	if chainCfg == nil {
		return nil, fmt.Errorf("%w: chain %v", tokens.ErrMissEntryPoint, chainID)
	}

	nonce, err := b.NonceFunc()
	if err != nil {
		return nil, err
	}
	spokePool := common.HexToAddress(chainCfg.SpokePool)
	base := buildBaseDepositData(quotes, permit)
	fees := tokens.SubmissionFees{
		Amount:    cmn.BigOrZero(permit.SubmissionFee),
		Recipient: permit.SubmissionFeeRecipient,
	}

	tx := &tokens.GaslessTx{ChainID: chainID}
	var auth authorization

	if quotes.OriginSwapQuote == nil {
		if chainCfg.SpokePoolPeriphery == "" {
			return nil, fmt.Errorf("%w: no periphery on chain %v", tokens.ErrPreconditionFailed, chainID)
		}
		tx.Kind = tokens.GaslessDeposit
		tx.To = common.HexToAddress(chainCfg.SpokePoolPeriphery)
		tx.DepositData = &tokens.DepositData{
			SubmissionFees:  fees,
			BaseDepositData: base,
			InputAmount:     quotes.BridgeQuote.InputAmount,
			SpokePool:       spokePool,
			Nonce:           nonce,
		}
		tx.Witness, err = b.reader.GetDepositWitness(ctx, chainID, tx.To, tx.DepositData)
		if err != nil {
			return nil, err
		}
		auth = authorization{
			token: quotes.BridgeQuote.InputToken.Address,
			value: new(big.Int).Add(cmn.BigOrZero(quotes.BridgeQuote.InputAmount), fees.Amount),
		}
	} else {
		entryPoint := quotes.Contracts.DepositEntryPoint
		if entryPoint.Name != tokens.EntryPointPeriphery {
			return nil, fmt.Errorf("%w: gasless swap needs %v entry point, got '%v'",
				tokens.ErrPreconditionFailed, tokens.EntryPointPeriphery, entryPoint.Name)
		}
		swapQuote := quotes.OriginSwapQuote
		if len(swapQuote.SwapTxns) == 0 {
			return nil, fmt.Errorf("%w: origin swap quote has no tx", tokens.ErrInvalidParam)
		}
		swapTx := swapQuote.SwapTxns[0]
		tx.Kind = tokens.GaslessSwapAndDeposit
		tx.To = entryPoint.Address
		tx.SwapAndDepositData = &tokens.SwapAndDepositData{
			SubmissionFees:               fees,
			DepositData:                  base,
			SwapToken:                    swapQuote.TokenIn.Address,
			Exchange:                     swapTx.To,
			TransferType:                 uint8(tokens.TransferTypeTransfer),
			SwapTokenAmount:              swapQuote.MaximumAmountIn,
			MinExpectedInputTokenAmount:  swapQuote.MinAmountOut,
			RouterCalldata:               swapTx.Data,
			EnableProportionalAdjustment: permit.EnableProportionalAdjst,
			SpokePool:                    spokePool,
			Nonce:                        nonce,
		}
		tx.Witness, err = b.reader.GetSwapAndDepositWitness(ctx, chainID, tx.To, tx.SwapAndDepositData)
		if err != nil {
			return nil, err
		}
		auth = authorization{
			token: swapQuote.TokenIn.Address,
			value: new(big.Int).Add(cmn.BigOrZero(swapQuote.MaximumAmountIn), fees.Amount),
		}
	}

	tx.AuthorizationNonce, err = b.reader.GetPermitNonce(ctx, chainID, tx.To, crossSwap.Depositor)
	if err != nil {
		return nil, err
	}
	tx.DomainSeparator, err = b.reader.GetDomainSeparator(ctx, chainID, auth.token)
	if err != nil {
		return nil, err
	}
	tx.DepositID, err = b.reader.GetUnsafeDepositID(ctx, chainID, spokePool, tx.To, crossSwap.Depositor, nonce)
	if err != nil {
		return nil, err
	}
	tx.TypedData, err = b.buildTypedData(ctx, chainID, auth, crossSwap.Depositor, tx.To, tx.Witness, permit)
	if err != nil {
		return nil, err
	}
	b.checkDomain(tx)

	log.Info("build gasless tx success", "kind", tx.Kind, "chainID", chainID,
		"depositor", crossSwap.Depositor.Hex(), "witness", tx.Witness.Hex(), "depositID", tx.DepositID)
	return tx, nil
}

func (b *Builder) buildTypedData(ctx context.Context, chainID uint64, auth authorization, from, to common.Address, witness common.Hash, permit *tokens.PermitParams) (*apitypes.TypedData, error) {
	name, err := b.reader.GetTokenName(ctx, chainID, auth.token)
	if err != nil {
		return nil, err
	}
	version, err := b.reader.GetTokenVersion(ctx, chainID, auth.token)
	if err != nil {
		log.Debug("read token version failed, use default", "chainID", chainID, "token", auth.token.Hex(), "err", err)
		version = "1"
	}
	return &apitypes.TypedData{
		Types:       eip712Types,
		PrimaryType: TransferWithAuthorizationType,
		Domain: apitypes.TypedDataDomain{
			Name:              name,
			Version:           version,
			ChainId:           math.NewHexOrDecimal256(int64(chainID)),
			VerifyingContract: auth.token.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"from":        from.Hex(),
			"to":          to.Hex(),
			"value":       auth.value.String(),
			"validAfter":  strconv.FormatUint(permit.ValidAfter, 10),
			"validBefore": strconv.FormatUint(permit.ValidBefore, 10),
			"nonce":       hexutil.Encode(witness.Bytes()),
		},
	}, nil
}

// checkDomain warns when the typed data domain does not hash to the token's separator
func (b *Builder) checkDomain(tx *tokens.GaslessTx) {
	hash, err := tx.TypedData.HashStruct("EIP712Domain", tx.TypedData.Domain.Map())
	if err != nil {
		log.Warn("hash typed data domain failed", "err", err)
		return
	}
	if common.BytesToHash(hash) != tx.DomainSeparator {
		log.Warn("typed data domain mismatch", "chainID", tx.ChainID,
			"token", tx.TypedData.Domain.VerifyingContract,
			"computed", common.BytesToHash(hash).Hex(), "onchain", tx.DomainSeparator.Hex())
	}
}

func buildBaseDepositData(quotes *tokens.CrossSwapQuotes, permit *tokens.PermitParams) tokens.BaseDepositData {
	bridgeQuote := quotes.BridgeQuote
	base := tokens.BaseDepositData{
		InputToken:           bridgeQuote.InputToken.Address,
		OutputToken:          tokens.AddressToBytes32(bridgeQuote.OutputToken.Address),
		OutputAmount:         bridgeQuote.OutputAmount,
		Depositor:            quotes.CrossSwap.Depositor,
		Recipient:            tokens.AddressToBytes32(bridgeQuote.Recipient),
		DestinationChainID:   new(big.Int).SetUint64(bridgeQuote.OutputToken.ChainID),
		QuoteTimestamp:       permit.QuoteTimestamp,
		FillDeadline:         permit.FillDeadline,
		ExclusivityParameter: permit.ExclusivityParameter,
		Message:              bridgeQuote.Message,
	}
	if fees := bridgeQuote.SuggestedFees; fees != nil {
		base.ExclusiveRelayer = tokens.AddressToBytes32(fees.ExclusiveRelayer)
		if base.QuoteTimestamp == 0 {
			base.QuoteTimestamp = fees.QuoteTimestamp
		}
		if base.FillDeadline == 0 {
			base.FillDeadline = fees.FillDeadline
		}
		if base.ExclusivityParameter == 0 {
			base.ExclusivityParameter = fees.ExclusivityDeadline
		}
	}
	return base
}
