package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, contents string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "deedd_config_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "deedd.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTestConfig(t, `
[market]
treasury_account = "0001020304050607080900010203040506070809"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.RPCAddr)
	assert.Equal(t, "pebble", cfg.Storage.Backend)
	assert.Equal(t, "sqlite", cfg.Audit.Backend)
	assert.Equal(t, uint64(1), cfg.Market.FeePercent)
	assert.Equal(t, uint32(100), cfg.Market.MinTokens)
	assert.Equal(t, path, cfg.GetConfigPath())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeTestConfig(t, `
[server]
rpc_addr = "0.0.0.0:9999"

[storage]
backend = "leveldb"

[market]
treasury_account = "0001020304050607080900010203040506070809"
fee_percent = 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.Server.RPCAddr)
	assert.Equal(t, "leveldb", cfg.Storage.Backend)
	assert.Equal(t, uint64(5), cfg.Market.FeePercent)
}

func TestLoadRejectsMissingTreasuryAccount(t *testing.T) {
	path := writeTestConfig(t, ``)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnsupportedStorageBackend(t *testing.T) {
	path := writeTestConfig(t, `
[storage]
backend = "bbolt"

[market]
treasury_account = "0001020304050607080900010203040506070809"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsFeePercentAtOrAboveHundred(t *testing.T) {
	path := writeTestConfig(t, `
[market]
treasury_account = "0001020304050607080900010203040506070809"
fee_percent = 100
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidTokenRange(t *testing.T) {
	path := writeTestConfig(t, `
[market]
treasury_account = "0001020304050607080900010203040506070809"
min_tokens = 300
max_tokens = 250
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadToleratesMissingFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "deedd_config_test_missing")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	_, err = Load(filepath.Join(dir, "does-not-exist.toml"))
	// no file and no treasury account default: still fails validation, not I/O
	assert.Error(t, err)
}
