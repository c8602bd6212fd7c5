// Package admin signs and verifies router admin calls.
package admin

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/anyswap/CrossSwap-Router/tools"
)

// MaxCallAge admin call older than this is rejected
const MaxCallAge = 5 * time.Minute

var (
	keyWrapper *keystore.Key

	errMissSignature = errors.New("admin call miss signature")
	errCallExpired   = errors.New("admin call is expired")
)

// CallArgs admin call args
type CallArgs struct {
	Method    string   `json:"method"`
	Params    []string `json:"params"`
	Timestamp int64    `json:"timestamp"`
}

// SignedCall admin call with signature
type SignedCall struct {
	Args      *CallArgs     `json:"args"`
	Signature hexutil.Bytes `json:"signature"`
}

// LoadKeyStore load keystore
func LoadKeyStore(keyfile, passfile string) (err error) {
	keyWrapper, err = tools.LoadKeyStore(keyfile, passfile)
	return err
}

// SetPrivateKey set signing key
func SetPrivateKey(key *ecdsa.PrivateKey) {
	keyWrapper = &keystore.Key{
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}
}

// Sign sign admin call with loaded key
func Sign(method string, params []string) (string, error) {
	if keyWrapper == nil {
		return "", errors.New("keystore is not loaded")
	}
	return SignWithKey(keyWrapper.PrivateKey, &CallArgs{
		Method:    method,
		Params:    params,
		Timestamp: time.Now().Unix(),
	})
}

// SignWithKey sign admin call, returns hex encoded signed call
func SignWithKey(key *ecdsa.PrivateKey, args *CallArgs) (string, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	signature, err := crypto.Sign(accounts.TextHash(payload), key)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(&SignedCall{Args: args, Signature: signature})
	if err != nil {
		return "", err
	}
	return hexutil.Encode(data), nil
}

// DecodeCall decode hex encoded signed call
func DecodeCall(rawCall string) (*SignedCall, error) {
	data, err := hexutil.Decode(rawCall)
	if err != nil {
		return nil, fmt.Errorf("decode admin call failed: %w", err)
	}
	call := &SignedCall{}
	if err = json.Unmarshal(data, call); err != nil {
		return nil, fmt.Errorf("unmarshal admin call failed: %w", err)
	}
	if call.Args == nil || len(call.Signature) != crypto.SignatureLength {
		return nil, errMissSignature
	}
	return call, nil
}

// VerifyCall recover signer and check call age
func VerifyCall(call *SignedCall, now time.Time) (common.Address, *CallArgs, error) {
	signedTime := time.Unix(call.Args.Timestamp, 0)
	if now.Sub(signedTime) > MaxCallAge || signedTime.Sub(now) > MaxCallAge {
		return common.Address{}, nil, errCallExpired
	}
	payload, err := json.Marshal(call.Args)
	if err != nil {
		return common.Address{}, nil, err
	}
	pubKey, err := crypto.SigToPub(accounts.TextHash(payload), call.Signature)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("recover admin call signer failed: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), call.Args, nil
}
