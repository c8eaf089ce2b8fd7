package config

import "github.com/spf13/viper"

// setDefaults mirrors the teacher's setDefaults: every key the struct can
// hold gets a sane value before the file and environment layers apply.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.rpc_addr", "127.0.0.1:8080")
	v.SetDefault("server.ws_addr", "127.0.0.1:8081")
	v.SetDefault("server.grpc_addr", "127.0.0.1:9090")

	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "./data/state")
	v.SetDefault("storage.history_path", "./data/history")

	v.SetDefault("audit.backend", "sqlite")
	v.SetDefault("audit.dsn", "./data/audit.db")

	v.SetDefault("market.fee_percent", 1)
	v.SetDefault("market.listing_deposit_percent", 2)
	v.SetDefault("market.min_tokens", 100)
	v.SetDefault("market.max_tokens", 250)
	v.SetDefault("market.region_cache_size", 256)

	v.SetDefault("log_level", "info")
}
