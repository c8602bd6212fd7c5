// Package testutil shared test helpers.
package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/params"
)

// ConfigFile path of the example config
func ConfigFile() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("get caller file failed")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "params", "testdata", "config.toml")
}

// LoadConfig load and check the example config
func LoadConfig(t testing.TB) *params.RouterConfig {
	t.Helper()
	config := &params.RouterConfig{}
	_, err := toml.DecodeFile(ConfigFile(), config)
	require.NoError(t, err)
	require.NoError(t, config.CheckConfig(true))
	return config
}
