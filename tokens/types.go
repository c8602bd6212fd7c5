package tokens

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// Token token on a specified chain
type Token struct {
	Address  common.Address `json:"address"`
	ChainID  uint64         `json:"chainId"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

func (t Token) String() string {
	return fmt.Sprintf("%v:%v(%v)", t.ChainID, t.Symbol, t.Address.Hex())
}

// IsSameAsset is same asset ignoring chain
func (t Token) IsSameAsset(other Token) bool {
	return strings.EqualFold(t.Symbol, other.Symbol)
}

// AmountType amount semantics of a request
type AmountType string

// AmountType constants
const (
	ExactInput  AmountType = "exactInput"
	ExactOutput AmountType = "exactOutput"
	MinOutput   AmountType = "minOutput"
)

// ParseAmountType parse amount type
func ParseAmountType(s string) (AmountType, error) {
	switch AmountType(s) {
	case ExactInput, ExactOutput, MinOutput:
		return AmountType(s), nil
	case "":
		return ExactInput, nil
	default:
		return "", fmt.Errorf("%w: unknown amount type '%v'", ErrInvalidParam, s)
	}
}

// IsOutputDirected amount is of the output side
func (t AmountType) IsOutputDirected() bool {
	return t == ExactOutput || t == MinOutput
}

// Slippage slippage tolerance, a percent number or 'auto'
type Slippage struct {
	Auto    bool
	Percent decimal.Decimal
}

// AutoSlippage auto slippage
var AutoSlippage = Slippage{Auto: true}

// NewSlippage new slippage from percent
func NewSlippage(percent float64) Slippage {
	return Slippage{Percent: decimal.NewFromFloat(percent)}
}

func (s Slippage) String() string {
	if s.Auto {
		return "auto"
	}
	return s.Percent.String()
}

// MarshalJSON json marshal
func (s Slippage) MarshalJSON() ([]byte, error) {
	if s.Auto {
		return []byte(`"auto"`), nil
	}
	return []byte(s.Percent.String()), nil
}

// UnmarshalJSON json unmarshal
func (s *Slippage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var str string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
	} else {
		str = string(data)
	}
	if strings.EqualFold(str, "auto") {
		*s = AutoSlippage
		return nil
	}
	percent, err := decimal.NewFromString(str)
	if err != nil {
		return fmt.Errorf("%w: wrong slippage '%v'", ErrInvalidParam, str)
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: slippage %v out of range", ErrInvalidParam, str)
	}
	*s = Slippage{Percent: percent}
	return nil
}

// Action embedded call executed after bridging on destination chain
type Action struct {
	Target           common.Address `json:"target"`
	CallData         hexutil.Bytes  `json:"callData"`
	Value            *big.Int       `json:"value"`
	IsNativeTransfer bool           `json:"isNativeTransfer"`
}

// AppFee app fee spec, fraction is of the output amount.
// Amount is the charged amount in output token once it is known.
type AppFee struct {
	Fraction  decimal.Decimal `json:"fraction"`
	Recipient common.Address  `json:"recipient"`
	Amount    *big.Int        `json:"amount,omitempty"`
}

// IsZero no app fee charged
func (f *AppFee) IsZero() bool {
	return f == nil || f.Fraction.IsZero()
}

// WithAmount returns a copy charging amount
func (f *AppFee) WithAmount(amount *big.Int) *AppFee {
	if f == nil {
		return nil
	}
	cp := *f
	cp.Amount = amount
	return &cp
}

// FeeOf app fee of output amount
func (f *AppFee) FeeOf(outputAmount *big.Int) *big.Int {
	if f.IsZero() {
		return big.NewInt(0)
	}
	return decimal.NewFromBigInt(outputAmount, 0).Mul(f.Fraction).Floor().BigInt()
}

// GrossUp output amount needed so that the amount left after app fee is net
func (f *AppFee) GrossUp(net *big.Int) *big.Int {
	if f.IsZero() {
		return net
	}
	denominator := decimal.NewFromInt(1).Sub(f.Fraction)
	return decimal.NewFromBigInt(net, 0).Div(denominator).Ceil().BigInt()
}

// CrossSwap normalized cross swap request
type CrossSwap struct {
	Amount          *big.Int       `json:"amount"`
	InputToken      Token          `json:"inputToken"`
	OutputToken     Token          `json:"outputToken"`
	Depositor       common.Address `json:"depositor"`
	Recipient       common.Address `json:"recipient"`
	Slippage        Slippage       `json:"slippageTolerance"`
	Type            AmountType     `json:"type"`
	IsInputNative   bool           `json:"isInputNative"`
	IsOutputNative  bool           `json:"isOutputNative"`
	RefundOnOrigin  bool           `json:"refundOnOrigin"`
	RefundAddress   common.Address `json:"refundAddress"`
	EmbeddedActions []*Action      `json:"embeddedActions,omitempty"`
	AppFee          *AppFee        `json:"appFee,omitempty"`
	ExcludeSources  []string       `json:"excludeSources,omitempty"`
	IncludeSources  []string       `json:"includeSources,omitempty"`
}

// IsOutputDirected is output directed request
func (c *CrossSwap) IsOutputDirected() bool {
	return c.Type.IsOutputDirected()
}

// HasEmbeddedActions has embedded actions
func (c *CrossSwap) HasEmbeddedActions() bool {
	return len(c.EmbeddedActions) > 0
}

// GetRefundAddress get refund address
func (c *CrossSwap) GetRefundAddress() common.Address {
	if c.RefundAddress != (common.Address{}) {
		return c.RefundAddress
	}
	return c.Depositor
}

// GetSourcesFilter get sources filter
func (c *CrossSwap) GetSourcesFilter() *SourcesFilter {
	if len(c.IncludeSources) == 0 && len(c.ExcludeSources) == 0 {
		return nil
	}
	return &SourcesFilter{
		Include: c.IncludeSources,
		Exclude: c.ExcludeSources,
	}
}

// Swap one swap leg request
type Swap struct {
	ChainID        uint64
	TokenIn        Token
	TokenOut       Token
	Amount         *big.Int
	Depositor      common.Address
	Recipient      common.Address
	Slippage       Slippage
	IsInputNative  bool
	IsOutputNative bool
}

// SwapTx executable transaction descriptor
type SwapTx struct {
	ChainID uint64         `json:"chainId"`
	To      common.Address `json:"to"`
	Data    hexutil.Bytes  `json:"data"`
	Value   *big.Int       `json:"value"`
}

// SwapProvider provenance of a swap quote
type SwapProvider struct {
	Name    string   `json:"name"`
	Sources []string `json:"sources"`
}

// SwapQuote swap quote
type SwapQuote struct {
	TokenIn           Token           `json:"tokenIn"`
	TokenOut          Token           `json:"tokenOut"`
	MaximumAmountIn   *big.Int        `json:"maximumAmountIn"`
	MinAmountOut      *big.Int        `json:"minAmountOut"`
	ExpectedAmountIn  *big.Int        `json:"expectedAmountIn"`
	ExpectedAmountOut *big.Int        `json:"expectedAmountOut"`
	SlippageTolerance decimal.Decimal `json:"slippageTolerance"`
	SwapTxns          []*SwapTx       `json:"swapTxns"`
	SwapProvider      SwapProvider    `json:"swapProvider"`
	IsIndicative      bool            `json:"-"`
}

// FeeAmount fee total and fraction of the input amount
type FeeAmount struct {
	Total *big.Int        `json:"total"`
	Pct   decimal.Decimal `json:"pct"`
}

// FeeBreakdown normalized bridge fees
type FeeBreakdown struct {
	Token          Token     `json:"token"`
	LP             FeeAmount `json:"lp"`
	RelayerCapital FeeAmount `json:"relayerCapital"`
	RelayerGas     FeeAmount `json:"relayerGas"`
	Total          FeeAmount `json:"total"`
}

// BridgeQuote bridge quote
type BridgeQuote struct {
	InputToken           Token          `json:"inputToken"`
	OutputToken          Token          `json:"outputToken"`
	InputAmount          *big.Int       `json:"inputAmount"`
	OutputAmount         *big.Int       `json:"outputAmount"`
	MinOutputAmount      *big.Int       `json:"minOutputAmount"`
	EstimatedFillTimeSec int            `json:"estimatedFillTimeSec"`
	Fees                 FeeBreakdown   `json:"fees"`
	Provider             string         `json:"provider"`
	Recipient            common.Address `json:"recipient"`
	Message              hexutil.Bytes  `json:"message"`
	SuggestedFees        *SuggestedFees `json:"-"`
	MessagingFee         *big.Int       `json:"messagingFee,omitempty"` // native fee paid as tx value
}

// WithMessage returns a copy with the message replaced
func (q *BridgeQuote) WithMessage(message []byte) *BridgeQuote {
	cp := *q
	cp.Message = append(hexutil.Bytes(nil), message...)
	return &cp
}

// EntryPointName origin entry point kind
type EntryPointName string

// EntryPointName constants
const (
	EntryPointSpokePool       EntryPointName = "SpokePool"
	EntryPointPeriphery       EntryPointName = "SpokePoolPeriphery"
	EntryPointSwapProxy       EntryPointName = "SwapProxy"
	EntryPointTokenMessenger  EntryPointName = "TokenMessenger"
	EntryPointOFTMessenger    EntryPointName = "OFTMessenger"
	EntryPointHyperCoreSystem EntryPointName = "HyperCoreSystemAddress"
)

// EntryPoint origin contract called by the origin tx
type EntryPoint struct {
	Name    EntryPointName `json:"name"`
	Address common.Address `json:"address"`
}

// OriginEntryPoints entry points used by origin swaps
type OriginEntryPoints struct {
	SwapAndBridge EntryPoint `json:"swapAndBridge"`
	Deposit       EntryPoint `json:"deposit"`
}

// Contracts contracts involved in a cross swap
type Contracts struct {
	DepositEntryPoint EntryPoint     `json:"depositEntryPoint"`
	SpokePool         common.Address `json:"spokePool,omitempty"`
	OriginRouter      common.Address `json:"originRouter,omitempty"`
	DestinationRouter common.Address `json:"destinationRouter,omitempty"`
	MulticallHandler  common.Address `json:"multicallHandler,omitempty"`
}

// CrossSwapQuotes composed quotes, unused legs stay nil
type CrossSwapQuotes struct {
	CrossSwap            *CrossSwap    `json:"crossSwap"`
	CrossSwapType        CrossSwapType `json:"crossSwapType"`
	Strategy             string        `json:"strategy"`
	BridgeQuote          *BridgeQuote  `json:"bridgeQuote"`
	OriginSwapQuote      *SwapQuote    `json:"originSwapQuote,omitempty"`
	DestinationSwapQuote *SwapQuote    `json:"destinationSwapQuote,omitempty"`
	Contracts            Contracts     `json:"contracts"`
	AppFee               *AppFee       `json:"appFee,omitempty"`
}

// NeedsMulticallHandler bridge output must go through the multicall handler
func (c *CrossSwap) NeedsMulticallHandler(hasDestinationSwap bool) bool {
	return hasDestinationSwap || c.HasEmbeddedActions() || !c.AppFee.IsZero()
}

// Approval erc20 approval needed before sending origin tx
type Approval struct {
	Token   common.Address `json:"token"`
	Spender common.Address `json:"spender"`
	Amount  *big.Int       `json:"amount"`
}

// OriginTx origin chain transaction
type OriginTx struct {
	ChainID   uint64         `json:"chainId"`
	From      common.Address `json:"from"`
	To        common.Address `json:"to"`
	Data      hexutil.Bytes  `json:"data"`
	Value     *big.Int       `json:"value"`
	Approvals []*Approval    `json:"approvals,omitempty"`
}

// PermitParams parameters of a gasless authorization
type PermitParams struct {
	ValidAfter              uint64         `json:"validAfter"`
	ValidBefore             uint64         `json:"validBefore"`
	SubmissionFee           *big.Int       `json:"submissionFee"`
	SubmissionFeeRecipient  common.Address `json:"submissionFeeRecipient"`
	QuoteTimestamp          uint32         `json:"quoteTimestamp"`
	FillDeadline            uint32         `json:"fillDeadline"`
	ExclusivityParameter    uint32         `json:"exclusivityParameter"`
	EnableProportionalAdjst bool           `json:"enableProportionalAdjustment"`
}
