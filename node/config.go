// Package node wires the validation core to its operational surroundings:
// configuration, logging, and the persistent UTXO and role store.
package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config carries the node-level settings.
type Config struct {
	DataDir      string `json:"data_dir"`
	LogLevel     string `json:"log_level"`
	LogFile      string `json:"log_file"`
	AccountsFile string `json:"accounts_file"`
}

var allowedLogLevels = map[string]struct{}{
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// DefaultDataDir returns the default data directory under the user's
// home, falling back to a relative directory when home is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".tessera"
	}
	return filepath.Join(home, ".tessera")
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
	}
}

// ValidateConfig checks cfg for inconsistencies.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	return nil
}

// AccountsPath returns the managed-account registry file path.
func (cfg Config) AccountsPath() string {
	if cfg.AccountsFile != "" {
		return cfg.AccountsFile
	}
	return filepath.Join(cfg.DataDir, "accounts.dat")
}

// StorePath returns the UTXO store database path.
func (cfg Config) StorePath() string {
	return filepath.Join(cfg.DataDir, "db", "utxo.db")
}
