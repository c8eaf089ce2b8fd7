// Package config loads deedd's configuration the way the teacher loads
// its own: layered viper defaults, a TOML file, then environment
// overrides, unmarshaled into a typed struct.
package config

import "fmt"

// Config is deedd's complete runtime configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Storage  StorageConfig  `toml:"storage" mapstructure:"storage"`
	Audit    AuditConfig    `toml:"audit" mapstructure:"audit"`
	Market   MarketConfig   `toml:"market" mapstructure:"market"`
	LogLevel string         `toml:"log_level" mapstructure:"log_level"`

	configPath string
}

// ServerConfig holds the JSON-RPC, websocket, and gRPC listen addresses.
type ServerConfig struct {
	RPCAddr  string `toml:"rpc_addr" mapstructure:"rpc_addr"`
	WSAddr   string `toml:"ws_addr" mapstructure:"ws_addr"`
	GRPCAddr string `toml:"grpc_addr" mapstructure:"grpc_addr"`
}

// StorageConfig selects and configures the state persistence backend.
type StorageConfig struct {
	Backend string `toml:"backend" mapstructure:"backend"` // "pebble" or "leveldb"
	Path    string `toml:"path" mapstructure:"path"`
	// HistoryPath roots the per-account event index (internal/storage/
	// auditindex), opened through pebble.Manager regardless of the state
	// backend above. Empty disables get_account_history.
	HistoryPath string `toml:"history_path" mapstructure:"history_path"`
}

// AuditConfig selects and configures the committed-event audit sink.
type AuditConfig struct {
	Backend string `toml:"backend" mapstructure:"backend"` // "postgres" or "sqlite"
	DSN     string `toml:"dsn" mapstructure:"dsn"`
}

// MarketConfig carries the external percentage/limit constants spec.md §6
// leaves to configuration, plus the region cache size and treasury account.
type MarketConfig struct {
	FeePercent            uint64 `toml:"fee_percent" mapstructure:"fee_percent"`
	ListingDepositPercent uint64 `toml:"listing_deposit_percent" mapstructure:"listing_deposit_percent"`
	MinTokens             uint32 `toml:"min_tokens" mapstructure:"min_tokens"`
	MaxTokens             uint32 `toml:"max_tokens" mapstructure:"max_tokens"`
	RegionCacheSize       int    `toml:"region_cache_size" mapstructure:"region_cache_size"`
	TreasuryAccount       string `toml:"treasury_account" mapstructure:"treasury_account"`
}

// GetConfigPath returns the file this config was loaded from, if any.
func (c *Config) GetConfigPath() string { return c.configPath }

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "pebble", "leveldb":
	default:
		return fmt.Errorf("config: unsupported storage backend %q", c.Storage.Backend)
	}
	switch c.Audit.Backend {
	case "postgres", "sqlite", "":
	default:
		return fmt.Errorf("config: unsupported audit backend %q", c.Audit.Backend)
	}
	if c.Market.FeePercent >= 100 {
		return fmt.Errorf("config: fee_percent must be < 100, got %d", c.Market.FeePercent)
	}
	if c.Market.MinTokens == 0 || c.Market.MinTokens > c.Market.MaxTokens {
		return fmt.Errorf("config: invalid token range [%d,%d]", c.Market.MinTokens, c.Market.MaxTokens)
	}
	if c.Market.TreasuryAccount == "" {
		return fmt.Errorf("config: market.treasury_account is required")
	}
	return nil
}
