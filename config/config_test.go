package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func loadIsolated(t *testing.T) *Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadIsolated(t)

	require.Equal(t, "sandbox", cfg.Environment)
	require.Equal(t, "0.5", cfg.Slippage)
	require.Contains(t, cfg.Environments, "sandbox")
	require.Contains(t, cfg.Environments, "staging")
	require.Contains(t, cfg.Environments, "production")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("TRADE_SERVICE_ENVIRONMENT", "staging")
	t.Setenv("TRADE_SERVICE_SECRET", "user-secret")

	cfg := loadIsolated(t)
	require.Equal(t, "staging", cfg.Environment)
	require.Equal(t, "user-secret", cfg.Secret)

	envCfg, err := cfg.Env("staging")
	require.NoError(t, err)
	require.Equal(t, "user-secret", envCfg.APIKey, "user secret must override the configured key")
}

func TestInvalidEnvironmentFailsFast(t *testing.T) {
	t.Setenv("TRADE_SERVICE_ENVIRONMENT", "testnet")

	_, err := Load()
	require.Error(t, err, "an unrecognized environment must fail, not fall back")
}

func TestEnvUnknownName(t *testing.T) {
	cfg := loadIsolated(t)

	_, err := cfg.Env("devnet")
	require.Error(t, err)
}

func TestEnvRequiresAPIKey(t *testing.T) {
	cfg := loadIsolated(t)
	cfg.Secret = ""
	cfg.Environments["sandbox"] = EnvironmentConfig{BaseURL: "https://example.com"}

	_, err := cfg.Env("sandbox")
	require.Error(t, err)
}

func TestEVMNetworkFor(t *testing.T) {
	cfg := loadIsolated(t)
	cfg.EVM = map[string]EVMNetwork{
		"eip155:8453": {RPCUrl: "https://base.example.com", ChainID: 8453},
	}

	network, err := cfg.EVMNetworkFor("eip155:8453")
	require.NoError(t, err)
	require.Equal(t, int64(8453), network.ChainID)

	_, err = cfg.EVMNetworkFor("eip155:1")
	require.Error(t, err)
}
