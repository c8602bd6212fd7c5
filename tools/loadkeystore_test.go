package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/stretchr/testify/require"
)

func TestLoadKeyStore(t *testing.T) {
	dir := t.TempDir()
	account, err := keystore.StoreKey(dir, "secret", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)

	passfile := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(passfile, []byte("secret\n"), 0o600))

	key, err := LoadKeyStore(account.URL.Path, passfile)
	require.NoError(t, err)
	require.Equal(t, account.Address, key.Address)

	require.NoError(t, os.WriteFile(passfile, []byte("wrong"), 0o600))
	_, err = LoadKeyStore(account.URL.Path, passfile)
	require.Error(t, err)

	_, err = LoadKeyStore(filepath.Join(dir, "missing"), passfile)
	require.Error(t, err)
}
