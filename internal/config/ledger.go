package config

import (
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither the config file nor the environment
// provide a value. The base URL matches the Ledger Service's development
// listen address.
const (
	DefaultBaseURL   = "http://localhost:5000"
	DefaultTimeout   = 30 * time.Second
	DefaultCachePath = "~/.local/share/billprep/cache.db"
)

// Ledger holds the connection settings for the Ledger Service and the
// local cache location.
type Ledger struct {
	BaseURL   string
	CachePath string
	Timeout   time.Duration
}

// LoadLedgerConfig reads the ledger connection settings from Viper.
// Values come from the config file or BILLPREP_ environment variables.
func LoadLedgerConfig() Ledger {
	cfg := Ledger{
		BaseURL:   viper.GetString("ledger.base_url"),
		Timeout:   viper.GetDuration("ledger.timeout"),
		CachePath: viper.GetString("cache.path"),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CachePath == "" {
		cfg.CachePath = DefaultCachePath
	}
	cfg.CachePath = ExpandPath(cfg.CachePath)

	return cfg
}
