// Package config loads CLI configuration from a .habitkit file or
// HABITKIT_* environment variables. Credentials are never read from
// here, they live in the OS keyring.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/habitkit/habitkit/internal/constants"
)

// Store backends.
const (
	StoreDiskv  = "diskv"
	StoreSQLite = "sqlite"
)

// Remote backend kinds.
const (
	RemoteNone     = "none"
	RemoteREST     = "rest"
	RemotePostgres = "postgres"
)

// Config holds everything the CLI needs to assemble its stores and backends.
type Config struct {
	StoreBackend  string `json:"store_backend"`
	StorePath     string `json:"store_path"`
	RemoteKind    string `json:"remote_kind"`
	RemoteAddress string `json:"remote_address"`
	ProbeURL      string `json:"probe_url"`
	Debug         bool   `json:"debug"`
}

// Load reads configuration, falling back to defaults when no config
// file exists. Lookup order: HABITKIT_CONFIG_PATH, the home directory,
// then the working directory.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	viper.SetDefault("store_backend", StoreDiskv)
	viper.SetDefault("store_path", filepath.Join(home, "."+constants.AppName, "store"))
	viper.SetDefault("remote_kind", RemoteNone)
	viper.SetDefault("remote_address", "")
	viper.SetDefault("probe_url", "")
	viper.SetDefault("debug", false)

	viper.SetConfigName("." + constants.AppName) // .yaml is implicit
	viper.SetEnvPrefix("HABITKIT")
	viper.AutomaticEnv()

	if override := os.Getenv("HABITKIT_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath(home)
	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		StoreBackend:  viper.GetString("store_backend"),
		StorePath:     viper.GetString("store_path"),
		RemoteKind:    viper.GetString("remote_kind"),
		RemoteAddress: viper.GetString("remote_address"),
		ProbeURL:      viper.GetString("probe_url"),
		Debug:         viper.GetBool("debug"),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreDiskv, StoreSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	switch c.RemoteKind {
	case RemoteNone, RemoteREST, RemotePostgres:
	default:
		return fmt.Errorf("unknown remote kind %q", c.RemoteKind)
	}
	if c.RemoteKind == RemoteREST && c.RemoteAddress == "" {
		return fmt.Errorf("remote_address is required for the rest backend")
	}
	return nil
}

// StoreFile returns the path holding the store data on disk. For the
// sqlite backend this is a single database file next to the diskv root.
func (c *Config) StoreFile() string {
	if c.StoreBackend == StoreSQLite {
		return c.StorePath + ".db"
	}
	return c.StorePath
}
