package node

import (
	"path/filepath"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if err := ValidateConfig(DefaultConfig()); err != nil {
			t.Fatalf("default config invalid: %v", err)
		}
	})

	t.Run("missing data dir", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DataDir = " "
		if err := ValidateConfig(cfg); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LogLevel = "loud"
		if err := ValidateConfig(cfg); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("log level case insensitive", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LogLevel = "Debug"
		if err := ValidateConfig(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestConfigPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join("some", "dir")

	if got, want := cfg.AccountsPath(), filepath.Join("some", "dir", "accounts.dat"); got != want {
		t.Fatalf("AccountsPath = %q, want %q", got, want)
	}
	if got, want := cfg.StorePath(), filepath.Join("some", "dir", "db", "utxo.db"); got != want {
		t.Fatalf("StorePath = %q, want %q", got, want)
	}

	cfg.AccountsFile = "/custom/accounts.dat"
	if got := cfg.AccountsPath(); got != "/custom/accounts.dat" {
		t.Fatalf("AccountsPath = %q", got)
	}
}

func TestSetLogLevels(t *testing.T) {
	if err := SetLogLevels("debug"); err != nil {
		t.Fatalf("SetLogLevels: %v", err)
	}
	if err := SetLogLevels("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := SetLogLevels("info"); err != nil {
		t.Fatalf("SetLogLevels: %v", err)
	}
}
