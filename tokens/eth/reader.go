package eth

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/anyswap/CrossSwap-Router/tokens"
)

// ContractReader typed contract reads over a contract caller
type ContractReader struct {
	caller tokens.ContractCaller
}

// NewContractReader new contract reader
func NewContractReader(caller tokens.ContractCaller) *ContractReader {
	return &ContractReader{caller: caller}
}

func (r *ContractReader) call(ctx context.Context, chainID uint64, contract common.Address, contractAbi *Abi, method string, ret interface{}, params ...interface{}) error {
	input, err := contractAbi.PackInput(method, params...)
	if err != nil {
		return err
	}
	output, err := r.caller.CallContract(ctx, chainID, contract, input)
	if err != nil {
		return err
	}
	return contractAbi.UnpackOutput(method, ret, output)
}

// GetDomainSeparator call "DOMAIN_SEPARATOR()" of token
func (r *ContractReader) GetDomainSeparator(ctx context.Context, chainID uint64, token common.Address) (common.Hash, error) {
	var result [32]byte
	err := r.call(ctx, chainID, token, ERC20ABI, "DOMAIN_SEPARATOR", &result)
	return common.Hash(result), err
}

// GetTokenName call "name()" of token
func (r *ContractReader) GetTokenName(ctx context.Context, chainID uint64, token common.Address) (string, error) {
	var result string
	err := r.call(ctx, chainID, token, ERC20ABI, "name", &result)
	return result, err
}

// GetTokenVersion call "version()" of token
func (r *ContractReader) GetTokenVersion(ctx context.Context, chainID uint64, token common.Address) (string, error) {
	var result string
	err := r.call(ctx, chainID, token, ERC20ABI, "version", &result)
	return result, err
}

// GetDepositWitness call periphery "hashDepositData"
func (r *ContractReader) GetDepositWitness(ctx context.Context, chainID uint64, periphery common.Address, data *tokens.DepositData) (common.Hash, error) {
	var result [32]byte
	err := r.call(ctx, chainID, periphery, PeripheryABI, "hashDepositData", &result, *normalizeDepositData(data))
	return common.Hash(result), err
}

// GetSwapAndDepositWitness call periphery "hashSwapAndDepositData"
func (r *ContractReader) GetSwapAndDepositWitness(ctx context.Context, chainID uint64, periphery common.Address, data *tokens.SwapAndDepositData) (common.Hash, error) {
	var result [32]byte
	err := r.call(ctx, chainID, periphery, PeripheryABI, "hashSwapAndDepositData", &result, *normalizeSwapAndDepositData(data))
	return common.Hash(result), err
}

// GetPermitNonce call periphery "permitNonces" of user
func (r *ContractReader) GetPermitNonce(ctx context.Context, chainID uint64, periphery, user common.Address) (*big.Int, error) {
	var result *big.Int
	err := r.call(ctx, chainID, periphery, PeripheryABI, "permitNonces", &result, user)
	return result, err
}

// GetUnsafeDepositID call spoke pool "getUnsafeDepositId"
func (r *ContractReader) GetUnsafeDepositID(ctx context.Context, chainID uint64, spokePool, msgSender, depositor common.Address, nonce *big.Int) (*big.Int, error) {
	var result *big.Int
	err := r.call(ctx, chainID, spokePool, SpokePoolABI, "getUnsafeDepositId", &result,
		msgSender, tokens.AddressToBytes32(depositor), nonNil(nonce))
	return result, err
}

// QuoteOFTSend call oft "quoteSend"
func (r *ContractReader) QuoteOFTSend(ctx context.Context, chainID uint64, messenger common.Address, param *SendParam) (*MessagingFee, error) {
	input, err := EncodeOFTQuoteSend(param)
	if err != nil {
		return nil, err
	}
	output, err := r.caller.CallContract(ctx, chainID, messenger, input)
	if err != nil {
		return nil, err
	}
	fee := new(MessagingFee)
	if err = OFTABI.UnpackTupleOutput("quoteSend", fee, output); err != nil {
		return nil, err
	}
	return normalizeMessagingFee(fee), nil
}

// CoreUserExists call core user exists precompile
func (r *ContractReader) CoreUserExists(ctx context.Context, chainID uint64, precompile, user common.Address) (bool, error) {
	input, err := EncodeCoreUserExists(user)
	if err != nil {
		return false, err
	}
	output, err := r.caller.CallContract(ctx, chainID, precompile, input)
	if err != nil {
		return false, err
	}
	var exists bool
	err = CoreUserExistsABI.UnpackOutput("coreUserExists", &exists, output)
	return exists, err
}
