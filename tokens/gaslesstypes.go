package tokens

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// GaslessKind kind of gasless payload
type GaslessKind string

// GaslessKind constants
const (
	GaslessDeposit        GaslessKind = "deposit"
	GaslessSwapAndDeposit GaslessKind = "swapAndDeposit"
)

// TransferType how the periphery moves swap tokens to the exchange
type TransferType uint8

// TransferType constants
const (
	TransferTypeApproval TransferType = iota
	TransferTypeTransfer
	TransferTypePermit2Approval
)

// SubmissionFees fee paid to the gasless submitter
type SubmissionFees struct {
	Amount    *big.Int       `abi:"amount" json:"amount"`
	Recipient common.Address `abi:"recipient" json:"recipient"`
}

// BaseDepositData spoke pool deposit params
type BaseDepositData struct {
	InputToken           common.Address `abi:"inputToken" json:"inputToken"`
	OutputToken          [32]byte       `abi:"outputToken" json:"outputToken"`
	OutputAmount         *big.Int       `abi:"outputAmount" json:"outputAmount"`
	Depositor            common.Address `abi:"depositor" json:"depositor"`
	Recipient            [32]byte       `abi:"recipient" json:"recipient"`
	DestinationChainID   *big.Int       `abi:"destinationChainId" json:"destinationChainId"`
	ExclusiveRelayer     [32]byte       `abi:"exclusiveRelayer" json:"exclusiveRelayer"`
	QuoteTimestamp       uint32         `abi:"quoteTimestamp" json:"quoteTimestamp"`
	FillDeadline         uint32         `abi:"fillDeadline" json:"fillDeadline"`
	ExclusivityParameter uint32         `abi:"exclusivityParameter" json:"exclusivityParameter"`
	Message              []byte         `abi:"message" json:"message"`
}

// DepositData gasless bridge only payload
type DepositData struct {
	SubmissionFees  SubmissionFees  `abi:"submissionFees" json:"submissionFees"`
	BaseDepositData BaseDepositData `abi:"baseDepositData" json:"baseDepositData"`
	InputAmount     *big.Int        `abi:"inputAmount" json:"inputAmount"`
	SpokePool       common.Address  `abi:"spokePool" json:"spokePool"`
	Nonce           *big.Int        `abi:"nonce" json:"nonce"`
}

// SwapAndDepositData gasless swap and bridge payload
type SwapAndDepositData struct {
	SubmissionFees               SubmissionFees  `abi:"submissionFees" json:"submissionFees"`
	DepositData                  BaseDepositData `abi:"depositData" json:"depositData"`
	SwapToken                    common.Address  `abi:"swapToken" json:"swapToken"`
	Exchange                     common.Address  `abi:"exchange" json:"exchange"`
	TransferType                 uint8           `abi:"transferType" json:"transferType"`
	SwapTokenAmount              *big.Int        `abi:"swapTokenAmount" json:"swapTokenAmount"`
	MinExpectedInputTokenAmount  *big.Int        `abi:"minExpectedInputTokenAmount" json:"minExpectedInputTokenAmount"`
	RouterCalldata               []byte          `abi:"routerCalldata" json:"routerCalldata"`
	EnableProportionalAdjustment bool            `abi:"enableProportionalAdjustment" json:"enableProportionalAdjustment"`
	SpokePool                    common.Address  `abi:"spokePool" json:"spokePool"`
	Nonce                        *big.Int        `abi:"nonce" json:"nonce"`
}

// GaslessTx unsigned gasless payload, the witness is the authorization nonce
type GaslessTx struct {
	Kind               GaslessKind         `json:"kind"`
	ChainID            uint64              `json:"chainId"`
	To                 common.Address      `json:"to"`
	TypedData          *apitypes.TypedData `json:"typedData"`
	DomainSeparator    common.Hash         `json:"domainSeparator"`
	AuthorizationNonce *big.Int            `json:"authorizationNonce"`
	DepositID          *big.Int            `json:"depositId"`
	Witness            common.Hash         `json:"witness"`
	DepositData        *DepositData        `json:"depositData,omitempty"`
	SwapAndDepositData *SwapAndDepositData `json:"swapAndDepositData,omitempty"`
}

// AddressToBytes32 left pad address to bytes32
func AddressToBytes32(address common.Address) (result [32]byte) {
	copy(result[12:], address.Bytes())
	return result
}
