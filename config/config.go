package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvironmentConfig holds the base URL and API key for one trade-service
// environment.
type EnvironmentConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
}

// EVMNetwork holds connection and signing settings for one eip155 chain,
// keyed in the config by its CAIP-2 id (e.g. "eip155:8453").
type EVMNetwork struct {
	RPCUrl     string  `mapstructure:"rpc_url"`
	ChainID    int64   `mapstructure:"chain_id"`
	PrivateKey string  `mapstructure:"private_key"`
	GasLimit   *uint64 `mapstructure:"gas_limit"`
	GasPrice   *int64  `mapstructure:"gas_price"`
}

// SolanaNetwork holds connection and signing settings for Solana.
type SolanaNetwork struct {
	RPCUrl        string `mapstructure:"rpc_url"`
	PrivateKey    string `mapstructure:"private_key"`
	Commitment    string `mapstructure:"commitment"`
	SkipPreflight bool   `mapstructure:"skip_preflight"`
}

// Config holds the application configuration.
type Config struct {
	// Environment selects which trade-service backend to talk to:
	// sandbox, staging or production.
	Environment string `mapstructure:"environment" validate:"required,oneof=sandbox staging production"`

	// Secret, when set, overrides the environment API key. Intended for
	// sandbox testing with a user-supplied credential.
	Secret string `mapstructure:"secret"`

	Environments map[string]EnvironmentConfig `mapstructure:"environments" validate:"required,dive"`

	// Slippage is the default slippage percentage sent with call-data
	// requests, as a decimal string.
	Slippage string `mapstructure:"slippage"`

	EVM    map[string]EVMNetwork `mapstructure:"evm"`
	Solana SolanaNetwork         `mapstructure:"solana"`

	HistoryFile string `mapstructure:"history_file"`
}

var globalConfig *Config

// Load reads configuration from environment variables and the optional
// .chain-swap.yaml config file. The TRADE_SERVICE_SECRET and
// TRADE_SERVICE_ENVIRONMENT variables override the file values.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".chain-swap")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	// Set default values
	v.SetDefault("environment", "sandbox")
	v.SetDefault("slippage", "0.5")
	v.SetDefault("environments.sandbox.base_url", "https://sandbox-api.trade.okto.tech/api")
	v.SetDefault("environments.staging.base_url", "https://staging-api.trade.okto.tech/api")
	v.SetDefault("environments.production.base_url", "https://api.trade.okto.tech/api")

	// Read from environment variables
	v.SetEnvPrefix("CHAIN_SWAP")
	v.AutomaticEnv()

	// Read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Convenience overrides persisted outside the config file.
	if env := os.Getenv("TRADE_SERVICE_ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}
	if secret := os.Getenv("TRADE_SERVICE_SECRET"); secret != "" {
		cfg.Secret = secret
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	globalConfig = cfg
	return cfg, nil
}

// Env resolves the named trade-service environment. An unrecognized name is
// an error, never a silent fallback. The user-supplied secret, when present,
// takes precedence over the configured API key.
func (c *Config) Env(name string) (EnvironmentConfig, error) {
	envCfg, ok := c.Environments[name]
	if !ok {
		return EnvironmentConfig{}, fmt.Errorf("invalid environment %q: must be sandbox, staging or production", name)
	}
	if c.Secret != "" {
		envCfg.APIKey = c.Secret
	}
	if envCfg.APIKey == "" {
		return EnvironmentConfig{}, fmt.Errorf("no API key configured for environment %q: set environments.%s.api_key or TRADE_SERVICE_SECRET", name, name)
	}
	return envCfg, nil
}

// EVMNetworkFor returns the configured network for an eip155 CAIP-2 id.
func (c *Config) EVMNetworkFor(caipID string) (EVMNetwork, error) {
	network, ok := c.EVM[caipID]
	if !ok {
		return EVMNetwork{}, fmt.Errorf("chain %s not configured: add an evm.%q entry to the config", caipID, caipID)
	}
	return network, nil
}

// Get returns the global configuration.
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration.
func Set(cfg *Config) {
	globalConfig = cfg
}
