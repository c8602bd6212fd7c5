package eth

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// abi json of the contracts called by the router
const (
	spokePoolABIJSON = `[
{"type":"function","name":"depositV3","stateMutability":"payable","inputs":[
 {"name":"depositor","type":"address"},{"name":"recipient","type":"address"},
 {"name":"inputToken","type":"address"},{"name":"outputToken","type":"address"},
 {"name":"inputAmount","type":"uint256"},{"name":"outputAmount","type":"uint256"},
 {"name":"destinationChainId","type":"uint256"},{"name":"exclusiveRelayer","type":"address"},
 {"name":"quoteTimestamp","type":"uint32"},{"name":"fillDeadline","type":"uint32"},
 {"name":"exclusivityDeadline","type":"uint32"},{"name":"message","type":"bytes"}],"outputs":[]},
{"type":"function","name":"getUnsafeDepositId","stateMutability":"pure","inputs":[
 {"name":"msgSender","type":"address"},{"name":"depositor","type":"bytes32"},
 {"name":"depositNonce","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

	baseDepositDataComponents = `[
 {"name":"inputToken","type":"address"},{"name":"outputToken","type":"bytes32"},
 {"name":"outputAmount","type":"uint256"},{"name":"depositor","type":"address"},
 {"name":"recipient","type":"bytes32"},{"name":"destinationChainId","type":"uint256"},
 {"name":"exclusiveRelayer","type":"bytes32"},{"name":"quoteTimestamp","type":"uint32"},
 {"name":"fillDeadline","type":"uint32"},{"name":"exclusivityParameter","type":"uint32"},
 {"name":"message","type":"bytes"}]`

	feesComponents = `[{"name":"amount","type":"uint256"},{"name":"recipient","type":"address"}]`

	depositDataTuple = `{"name":"depositData","type":"tuple","components":[
 {"name":"submissionFees","type":"tuple","components":` + feesComponents + `},
 {"name":"baseDepositData","type":"tuple","components":` + baseDepositDataComponents + `},
 {"name":"inputAmount","type":"uint256"},{"name":"spokePool","type":"address"},
 {"name":"nonce","type":"uint256"}]}`

	swapAndDepositDataTuple = `{"name":"swapAndDepositData","type":"tuple","components":[
 {"name":"submissionFees","type":"tuple","components":` + feesComponents + `},
 {"name":"depositData","type":"tuple","components":` + baseDepositDataComponents + `},
 {"name":"swapToken","type":"address"},{"name":"exchange","type":"address"},
 {"name":"transferType","type":"uint8"},{"name":"swapTokenAmount","type":"uint256"},
 {"name":"minExpectedInputTokenAmount","type":"uint256"},{"name":"routerCalldata","type":"bytes"},
 {"name":"enableProportionalAdjustment","type":"bool"},{"name":"spokePool","type":"address"},
 {"name":"nonce","type":"uint256"}]}`

	peripheryABIJSON = `[
{"type":"function","name":"swapAndBridge","stateMutability":"payable","inputs":[` + swapAndDepositDataTuple + `],"outputs":[]},
{"type":"function","name":"hashDepositData","stateMutability":"view","inputs":[` + depositDataTuple + `],"outputs":[{"name":"","type":"bytes32"}]},
{"type":"function","name":"hashSwapAndDepositData","stateMutability":"view","inputs":[` + swapAndDepositDataTuple + `],"outputs":[{"name":"","type":"bytes32"}]},
{"type":"function","name":"permitNonces","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

	erc20ABIJSON = `[
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"DOMAIN_SEPARATOR","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"version","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
]`

	tokenMessengerABIJSON = `[
{"type":"function","name":"depositForBurn","stateMutability":"nonpayable","inputs":[
 {"name":"amount","type":"uint256"},{"name":"destinationDomain","type":"uint32"},
 {"name":"mintRecipient","type":"bytes32"},{"name":"burnToken","type":"address"},
 {"name":"destinationCaller","type":"bytes32"},{"name":"maxFee","type":"uint256"},
 {"name":"minFinalityThreshold","type":"uint32"}],"outputs":[]},
{"type":"function","name":"depositForBurnWithHook","stateMutability":"nonpayable","inputs":[
 {"name":"amount","type":"uint256"},{"name":"destinationDomain","type":"uint32"},
 {"name":"mintRecipient","type":"bytes32"},{"name":"burnToken","type":"address"},
 {"name":"destinationCaller","type":"bytes32"},{"name":"maxFee","type":"uint256"},
 {"name":"minFinalityThreshold","type":"uint32"},{"name":"hookData","type":"bytes"}],"outputs":[]}
]`

	sendParamTuple = `{"name":"sendParam","type":"tuple","components":[
 {"name":"dstEid","type":"uint32"},{"name":"to","type":"bytes32"},
 {"name":"amountLD","type":"uint256"},{"name":"minAmountLD","type":"uint256"},
 {"name":"extraOptions","type":"bytes"},{"name":"composeMsg","type":"bytes"},
 {"name":"oftCmd","type":"bytes"}]}`

	messagingFeeComponents = `[{"name":"nativeFee","type":"uint256"},{"name":"lzTokenFee","type":"uint256"}]`

	oftABIJSON = `[
{"type":"function","name":"send","stateMutability":"payable","inputs":[` + sendParamTuple + `,
 {"name":"fee","type":"tuple","components":` + messagingFeeComponents + `},
 {"name":"refundAddress","type":"address"}],"outputs":[]},
{"type":"function","name":"quoteSend","stateMutability":"view","inputs":[` + sendParamTuple + `,
 {"name":"payInLzToken","type":"bool"}],"outputs":[{"name":"msgFee","type":"tuple","components":` + messagingFeeComponents + `}]}
]`

	multicallHandlerABIJSON = `[
{"type":"function","name":"drainLeftoverTokens","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"destination","type":"address"}],"outputs":[]},
{"type":"function","name":"instructions","stateMutability":"pure","inputs":[{"name":"instructions","type":"tuple","components":[
 {"name":"calls","type":"tuple[]","components":[{"name":"target","type":"address"},{"name":"callData","type":"bytes"},{"name":"value","type":"uint256"}]},
 {"name":"fallbackRecipient","type":"address"}]}],"outputs":[]}
]`

	coreUserExistsABIJSON = `[
{"type":"function","name":"coreUserExists","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"exists","type":"bool"}]}
]`
)

// parsed contract abis
var (
	SpokePoolABI        = mustNewAbi(spokePoolABIJSON)
	PeripheryABI        = mustNewAbi(peripheryABIJSON)
	ERC20ABI            = mustNewAbi(erc20ABIJSON)
	TokenMessengerABI   = mustNewAbi(tokenMessengerABIJSON)
	OFTABI              = mustNewAbi(oftABIJSON)
	MulticallHandlerABI = mustNewAbi(multicallHandlerABIJSON)
	CoreUserExistsABI   = mustNewAbi(coreUserExistsABIJSON)
)

// Abi contract abi wrapper
type Abi struct {
	contractAbi abi.ABI
}

// NewAbi parse abi json
func NewAbi(abiStr string) (*Abi, error) {
	a, err := abi.JSON(strings.NewReader(abiStr))
	if err != nil {
		return nil, err
	}
	return &Abi{contractAbi: a}, nil
}

func mustNewAbi(abiStr string) *Abi {
	a, err := NewAbi(abiStr)
	if err != nil {
		panic(err)
	}
	return a
}

// PackInput pack method call data
func (a *Abi) PackInput(method string, params ...interface{}) ([]byte, error) {
	input, err := a.contractAbi.Pack(method, params...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %v", method)
	}
	return input, nil
}

// PackArgs pack method arguments without selector
func (a *Abi) PackArgs(method string, params ...interface{}) ([]byte, error) {
	m, exist := a.contractAbi.Methods[method]
	if !exist {
		return nil, errors.Errorf("method '%v' not found", method)
	}
	packed, err := m.Inputs.Pack(params...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack args of %v", method)
	}
	return packed, nil
}

// UnpackOutput unpack single value output into ret
func (a *Abi) UnpackOutput(method string, ret interface{}, output []byte) error {
	outputs := a.contractAbi.Methods[method].Outputs
	unpack, err := outputs.Unpack(output)
	if err != nil {
		return errors.Wrap(err, "unpack output")
	}
	if err = outputs.Copy(ret, unpack); err != nil {
		return errors.Wrap(err, "copy output")
	}
	return nil
}

// UnpackTupleOutput unpack single tuple output into struct pointer ret
func (a *Abi) UnpackTupleOutput(method string, ret interface{}, output []byte) error {
	outputs := a.contractAbi.Methods[method].Outputs
	unpack, err := outputs.Unpack(output)
	if err != nil {
		return errors.Wrap(err, "unpack output")
	}
	if len(unpack) != 1 {
		return errors.Errorf("unpack %v: expect 1 output, got %v", method, len(unpack))
	}
	convertType(unpack[0], ret)
	return nil
}

// PackOutput pack method return values
func (a *Abi) PackOutput(method string, values ...interface{}) ([]byte, error) {
	m, exist := a.contractAbi.Methods[method]
	if !exist {
		return nil, errors.Errorf("method '%v' not found", method)
	}
	packed, err := m.Outputs.Pack(values...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack outputs of %v", method)
	}
	return packed, nil
}

// UnpackInput unpack call data (with selector) into values
func (a *Abi) UnpackInput(method string, data []byte) ([]interface{}, error) {
	if len(data) < 4 {
		return nil, errors.New("call data too short")
	}
	m, exist := a.contractAbi.Methods[method]
	if !exist {
		return nil, errors.Errorf("method '%v' not found", method)
	}
	values, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, errors.Wrap(err, "unpack input")
	}
	return values, nil
}

// MethodID method selector
func (a *Abi) MethodID(method string) []byte {
	return a.contractAbi.Methods[method].ID
}

func convertType(in, out interface{}) {
	abi.ConvertType(in, out)
}
