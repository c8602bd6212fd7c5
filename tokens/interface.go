// Package tokens defines the cross swap data model, the strategy interfaces
// and the supported bridge strategies in sub directories.
package tokens

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SourcesFilter liquidity sources filter
type SourcesFilter struct {
	Include []string
	Exclude []string
}

// QuoteFetchOpts options of fetching swap quote
type QuoteFetchOpts struct {
	UseIndicativeQuote bool
	SellEntireBalance  bool
	Sources            *SourcesFilter
	SplitSlippage      bool
}

// QuoteFetchStrategy swap quote provider on a chain
type QuoteFetchStrategy interface {
	Name() string
	GetRouter(chainID uint64) (common.Address, error)
	GetOriginEntryPoints(chainID uint64) (*OriginEntryPoints, error)
	Fetch(ctx context.Context, swap *Swap, tradeType AmountType, opts *QuoteFetchOpts) (*SwapQuote, error)
	GetSources(chainID uint64, filter *SourcesFilter) ([]string, error)
	AssertSellEntireBalanceSupported() error
	SupportsChain(chainID uint64) bool
}

// SuggestedFeesRequest bridge fees request
type SuggestedFeesRequest struct {
	InputToken  Token
	OutputToken Token
	Amount      *big.Int
	Recipient   common.Address
	Depositor   common.Address
	Message     []byte
}

// LimitsRequest bridge limits request
type LimitsRequest struct {
	InputToken  Token
	OutputToken Token
}

// SuggestedFees bridge fees, pct values are 1e18 scaled fractions
type SuggestedFees struct {
	TotalRelayFee        RawFee
	RelayerCapitalFee    RawFee
	RelayerGasFee        RawFee
	LpFee                RawFee
	OutputAmount         *big.Int
	QuoteTimestamp       uint32
	FillDeadline         uint32
	ExclusiveRelayer     common.Address
	ExclusivityDeadline  uint32
	EstimatedFillTimeSec int
	IsAmountTooLow       bool
	SpokePool            common.Address
	Limits               *Limits
}

// RawFee fee as reported by provider
type RawFee struct {
	Pct   *big.Int
	Total *big.Int
}

// Limits bridge route limits and reserves
type Limits struct {
	MinDeposit           *big.Int
	MaxDeposit           *big.Int
	MaxDepositInstant    *big.Int
	MaxDepositShortDelay *big.Int
	LiquidReserves       *big.Int
	UtilizedReserves     *big.Int
}

// BridgeQuoteProvider bridge quote provider
type BridgeQuoteProvider interface {
	SuggestedFees(ctx context.Context, req *SuggestedFeesRequest) (*SuggestedFees, error)
	Limits(ctx context.Context, req *LimitsRequest) (*Limits, error)
}

// ContractCaller read only contract calling
type ContractCaller interface {
	CallContract(ctx context.Context, chainID uint64, contract common.Address, data []byte) ([]byte, error)
}

// Capabilities strategy capabilities
type Capabilities struct {
	IsMintBurn      bool
	SupportsGasless bool
	SupportsMessage bool
}

// CrossSwapTypesParams params of GetCrossSwapTypes
type CrossSwapTypesParams struct {
	InputToken     Token
	OutputToken    Token
	IsInputNative  bool
	IsOutputNative bool
}

// ExactInputQuoteParams params of GetQuoteForExactInput
type ExactInputQuoteParams struct {
	InputToken       Token
	OutputToken      Token
	ExactInputAmount *big.Int
	Recipient        common.Address
	Message          []byte
	CrossSwap        *CrossSwap
}

// OutputQuoteParams params of GetQuoteForOutput
type OutputQuoteParams struct {
	InputToken       Token
	OutputToken      Token
	MinOutputAmount  *big.Int
	ForceExactOutput bool
	Recipient        common.Address
	Message          []byte
	CrossSwap        *CrossSwap
}

// BridgeStrategy one bridge transport
type BridgeStrategy interface {
	Name() string
	Capabilities() Capabilities
	OriginTxNeedsAllowance() bool
	IsRouteSupported(inputToken, outputToken Token) bool
	GetCrossSwapTypes(params *CrossSwapTypesParams) []CrossSwapType
	GetBridgeQuoteRecipient(crossSwap *CrossSwap, hasOriginSwap bool) (common.Address, error)
	GetBridgeQuoteMessage(crossSwap *CrossSwap, appFee *AppFee, originSwapQuote *SwapQuote) ([]byte, error)
	GetQuoteForExactInput(ctx context.Context, params *ExactInputQuoteParams) (*BridgeQuote, error)
	GetQuoteForOutput(ctx context.Context, params *OutputQuoteParams) (*BridgeQuote, error)
	BuildTxForAllowanceHolder(ctx context.Context, quotes *CrossSwapQuotes, integratorID string) (*OriginTx, error)
}

// GaslessBridgeStrategy strategy supporting gasless tx
type GaslessBridgeStrategy interface {
	BridgeStrategy
	BuildGaslessTx(ctx context.Context, quotes *CrossSwapQuotes, integratorID string, permit *PermitParams) (*GaslessTx, error)
}
