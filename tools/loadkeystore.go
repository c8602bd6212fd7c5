// Package tools provides small helpers of the command line tools.
package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
)

// LoadKeyStore load keystore from keyfile and passfile
func LoadKeyStore(keyfile, passfile string) (*keystore.Key, error) {
	keyjson, err := os.ReadFile(keyfile)
	if err != nil {
		return nil, fmt.Errorf("read keystore fail %w", err)
	}
	passdata, err := os.ReadFile(passfile)
	if err != nil {
		return nil, fmt.Errorf("read password fail %w", err)
	}
	passwd := strings.TrimSpace(string(passdata))
	key, err := keystore.DecryptKey(keyjson, passwd)
	if err != nil {
		return nil, fmt.Errorf("decrypt key fail %w", err)
	}
	return key, nil
}
