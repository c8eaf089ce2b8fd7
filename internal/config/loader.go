package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from, in priority order: (1) defaults, (2) the
// TOML file at path if it exists, (3) DEEDD_-prefixed environment
// variables. The same layering the teacher's LoadConfig uses for
// xrpld.toml.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if _, err := os.Stat(path); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix("DEEDD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.configPath = path

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
