package eth

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/anyswap/CrossSwap-Router/tokens"
)

// IntegratorIDLength integrator id byte length
const IntegratorIDLength = 2

// IntegratorIDDelimiter delimiter before integrator id in calldata
var IntegratorIDDelimiter = common.FromHex("0x1dc0de")

// DepositV3Args spoke pool depositV3 arguments
type DepositV3Args struct {
	Depositor           common.Address
	Recipient           common.Address
	InputToken          common.Address
	OutputToken         common.Address
	InputAmount         *big.Int
	OutputAmount        *big.Int
	DestinationChainID  uint64
	ExclusiveRelayer    common.Address
	QuoteTimestamp      uint32
	FillDeadline        uint32
	ExclusivityDeadline uint32
	Message             []byte
}

// SendParam oft send param
type SendParam struct {
	DstEid       uint32   `abi:"dstEid"`
	To           [32]byte `abi:"to"`
	AmountLD     *big.Int `abi:"amountLD"`
	MinAmountLD  *big.Int `abi:"minAmountLD"`
	ExtraOptions []byte   `abi:"extraOptions"`
	ComposeMsg   []byte   `abi:"composeMsg"`
	OftCmd       []byte   `abi:"oftCmd"`
}

// MessagingFee oft messaging fee
type MessagingFee struct {
	NativeFee  *big.Int `abi:"nativeFee"`
	LzTokenFee *big.Int `abi:"lzTokenFee"`
}

// Call multicall handler call
type Call struct {
	Target   common.Address `abi:"target"`
	CallData []byte         `abi:"callData"`
	Value    *big.Int       `abi:"value"`
}

// Instructions multicall handler message
type Instructions struct {
	Calls             []Call         `abi:"calls"`
	FallbackRecipient common.Address `abi:"fallbackRecipient"`
}

// BurnArgs cctp depositForBurn arguments
type BurnArgs struct {
	Amount               *big.Int
	DestinationDomain    uint32
	MintRecipient        common.Address
	BurnToken            common.Address
	DestinationCaller    common.Address
	MaxFee               *big.Int
	MinFinalityThreshold uint32
	HookData             []byte
}

// EncodeDepositV3 encode depositV3 call data
func EncodeDepositV3(args *DepositV3Args) ([]byte, error) {
	return SpokePoolABI.PackInput("depositV3",
		args.Depositor,
		args.Recipient,
		args.InputToken,
		args.OutputToken,
		nonNil(args.InputAmount),
		nonNil(args.OutputAmount),
		new(big.Int).SetUint64(args.DestinationChainID),
		args.ExclusiveRelayer,
		args.QuoteTimestamp,
		args.FillDeadline,
		args.ExclusivityDeadline,
		nonNilBytes(args.Message),
	)
}

// EncodeSwapAndBridge encode periphery swapAndBridge call data
func EncodeSwapAndBridge(data *tokens.SwapAndDepositData) ([]byte, error) {
	return PeripheryABI.PackInput("swapAndBridge", *normalizeSwapAndDepositData(data))
}

// EncodeHashDepositData encode periphery hashDepositData call data
func EncodeHashDepositData(data *tokens.DepositData) ([]byte, error) {
	return PeripheryABI.PackInput("hashDepositData", *normalizeDepositData(data))
}

// EncodeHashSwapAndDepositData encode periphery hashSwapAndDepositData call data
func EncodeHashSwapAndDepositData(data *tokens.SwapAndDepositData) ([]byte, error) {
	return PeripheryABI.PackInput("hashSwapAndDepositData", *normalizeSwapAndDepositData(data))
}

// EncodeGetUnsafeDepositID encode spoke pool getUnsafeDepositId call data
func EncodeGetUnsafeDepositID(msgSender, depositor common.Address, nonce *big.Int) ([]byte, error) {
	return SpokePoolABI.PackInput("getUnsafeDepositId", msgSender, tokens.AddressToBytes32(depositor), nonNil(nonce))
}

// EncodeApprove encode erc20 approve call data
func EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return ERC20ABI.PackInput("approve", spender, nonNil(amount))
}

// EncodeTransfer encode erc20 transfer call data
func EncodeTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return ERC20ABI.PackInput("transfer", to, nonNil(amount))
}

// EncodeDepositForBurn encode cctp token messenger call data,
// uses depositForBurnWithHook if hook data is not empty
func EncodeDepositForBurn(args *BurnArgs) ([]byte, error) {
	params := []interface{}{
		nonNil(args.Amount),
		args.DestinationDomain,
		tokens.AddressToBytes32(args.MintRecipient),
		args.BurnToken,
		tokens.AddressToBytes32(args.DestinationCaller),
		nonNil(args.MaxFee),
		args.MinFinalityThreshold,
	}
	if len(args.HookData) == 0 {
		return TokenMessengerABI.PackInput("depositForBurn", params...)
	}
	params = append(params, args.HookData)
	return TokenMessengerABI.PackInput("depositForBurnWithHook", params...)
}

// EncodeOFTSend encode oft send call data
func EncodeOFTSend(param *SendParam, fee *MessagingFee, refundAddress common.Address) ([]byte, error) {
	return OFTABI.PackInput("send", *normalizeSendParam(param), *normalizeMessagingFee(fee), refundAddress)
}

// EncodeOFTQuoteSend encode oft quoteSend call data
func EncodeOFTQuoteSend(param *SendParam) ([]byte, error) {
	return OFTABI.PackInput("quoteSend", *normalizeSendParam(param), false)
}

// EncodeDrainLeftoverTokens encode multicall handler drainLeftoverTokens call data
func EncodeDrainLeftoverTokens(token, destination common.Address) ([]byte, error) {
	return MulticallHandlerABI.PackInput("drainLeftoverTokens", token, destination)
}

// EncodeInstructions abi encode multicall handler instructions message
func EncodeInstructions(instructions *Instructions) ([]byte, error) {
	calls := make([]Call, len(instructions.Calls))
	for i, call := range instructions.Calls {
		calls[i] = Call{
			Target:   call.Target,
			CallData: nonNilBytes(call.CallData),
			Value:    nonNil(call.Value),
		}
	}
	return MulticallHandlerABI.PackArgs("instructions", Instructions{
		Calls:             calls,
		FallbackRecipient: instructions.FallbackRecipient,
	})
}

// DecodeInstructions decode multicall handler instructions message
func DecodeInstructions(message []byte) (*Instructions, error) {
	m := MulticallHandlerABI.contractAbi.Methods["instructions"]
	values, err := m.Inputs.Unpack(message)
	if err != nil {
		return nil, fmt.Errorf("%w: decode instructions failed: %v", tokens.ErrInvalidParam, err)
	}
	result := new(Instructions)
	convertType(values[0], result)
	return result, nil
}

// EncodeCoreUserExists encode core user exists precompile input
func EncodeCoreUserExists(user common.Address) ([]byte, error) {
	return CoreUserExistsABI.PackArgs("coreUserExists", user)
}

// TagIntegratorID append integrator id to call data
func TagIntegratorID(data []byte, integratorID string) ([]byte, error) {
	if integratorID == "" {
		return data, nil
	}
	id, err := hexutil.Decode(integratorID)
	if err != nil || len(id) != IntegratorIDLength {
		return nil, fmt.Errorf("%w: integrator id must be %v bytes hex, got '%v'", tokens.ErrInvalidParam, IntegratorIDLength, integratorID)
	}
	tagged := make([]byte, 0, len(data)+len(IntegratorIDDelimiter)+IntegratorIDLength)
	tagged = append(tagged, data...)
	tagged = append(tagged, IntegratorIDDelimiter...)
	tagged = append(tagged, id...)
	return tagged, nil
}

func normalizeBaseDepositData(data tokens.BaseDepositData) tokens.BaseDepositData {
	data.OutputAmount = nonNil(data.OutputAmount)
	data.DestinationChainID = nonNil(data.DestinationChainID)
	data.Message = nonNilBytes(data.Message)
	return data
}

func normalizeFees(fees tokens.SubmissionFees) tokens.SubmissionFees {
	fees.Amount = nonNil(fees.Amount)
	return fees
}

func normalizeDepositData(data *tokens.DepositData) *tokens.DepositData {
	cp := *data
	cp.SubmissionFees = normalizeFees(cp.SubmissionFees)
	cp.BaseDepositData = normalizeBaseDepositData(cp.BaseDepositData)
	cp.InputAmount = nonNil(cp.InputAmount)
	cp.Nonce = nonNil(cp.Nonce)
	return &cp
}

func normalizeSwapAndDepositData(data *tokens.SwapAndDepositData) *tokens.SwapAndDepositData {
	cp := *data
	cp.SubmissionFees = normalizeFees(cp.SubmissionFees)
	cp.DepositData = normalizeBaseDepositData(cp.DepositData)
	cp.SwapTokenAmount = nonNil(cp.SwapTokenAmount)
	cp.MinExpectedInputTokenAmount = nonNil(cp.MinExpectedInputTokenAmount)
	cp.RouterCalldata = nonNilBytes(cp.RouterCalldata)
	cp.Nonce = nonNil(cp.Nonce)
	return &cp
}

func normalizeSendParam(param *SendParam) *SendParam {
	cp := *param
	cp.AmountLD = nonNil(cp.AmountLD)
	cp.MinAmountLD = nonNil(cp.MinAmountLD)
	cp.ExtraOptions = nonNilBytes(cp.ExtraOptions)
	cp.ComposeMsg = nonNilBytes(cp.ComposeMsg)
	cp.OftCmd = nonNilBytes(cp.OftCmd)
	return &cp
}

func normalizeMessagingFee(fee *MessagingFee) *MessagingFee {
	if fee == nil {
		return &MessagingFee{NativeFee: big.NewInt(0), LzTokenFee: big.NewInt(0)}
	}
	return &MessagingFee{NativeFee: nonNil(fee.NativeFee), LzTokenFee: nonNil(fee.LzTokenFee)}
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
