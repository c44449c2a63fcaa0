// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
		{"SigOpCount", cfg.SigOpCount, uint8(1)},
		{"MinimumSignatures", cfg.MinimumSignatures, uint16(1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
}

func TestDefaultDataDir_Suffix(t *testing.T) {
	dir := DefaultDataDir()
	if !strings.HasSuffix(dir, ".bitfs-txgen") {
		t.Errorf("DefaultDataDir() = %q, want suffix %q", dir, ".bitfs-txgen")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	original := Config{
		DataDir:           "/tmp/test-txgen",
		Network:           "testnet",
		LogLevel:          "debug",
		LogFile:           "/tmp/txgen.log",
		SigOpCount:        3,
		MinimumSignatures: 2,
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded != original {
		t.Errorf("loaded = %+v, want %+v", loaded, original)
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}

func TestSaveConfig_OutputFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "# BitFS Transaction Generator Configuration") {
		t.Error("saved config should start with the header comment")
	}
	for _, key := range []string{"datadir", "network", "loglevel", "logfile", "sigops", "minsigs"} {
		if !strings.Contains(content, key+" = ") {
			t.Errorf("saved config should contain key %q", key)
		}
	}
}

// ---------------------------------------------------------------------------
// LoadConfig parser tests
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no_equals", "this-is-not-key-value\n"},
		{"empty_key", " = testnet\n"},
		{"sigops_not_number", "sigops = many\n"},
		{"sigops_overflow", "sigops = 256\n"},
		{"minsigs_negative", "minsigs = -1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			if !errors.Is(err, ErrInvalidConfigLine) {
				t.Errorf("LoadConfig: got %v, want ErrInvalidConfigLine", err)
			}
		})
	}
}

func TestLoadConfigCommentsAndBlanks(t *testing.T) {
	content := `# This is a comment
network = testnet

# Another comment
loglevel = debug
`
	cfg, err := LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	// Unset fields should retain defaults.
	if cfg.SigOpCount != 1 {
		t.Errorf("SigOpCount = %d, want default 1", cfg.SigOpCount)
	}
}

func TestLoadConfigUnknownKeysIgnored(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "futurekey = futurevalue\nnetwork = regtest\n"))
	if err != nil {
		t.Fatalf("LoadConfig with unknown key: %v", err)
	}
	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want %q", cfg.Network, "regtest")
	}
}

func TestLoadConfig_MultipleEquals(t *testing.T) {
	// parseKeyValue should split on the first '=' only.
	cfg, err := LoadConfig(writeConfig(t, "logfile=/tmp/a=b.log\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogFile != "/tmp/a=b.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "/tmp/a=b.log")
	}
}

func TestLoadConfig_WhitespaceAndCase(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "  NETWORK = testnet  \n  MinSigs=2\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.MinimumSignatures != 2 {
		t.Errorf("MinimumSignatures = %d, want 2", cfg.MinimumSignatures)
	}
}

func TestLoadConfig_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("cannot test permission denial as root")
	}

	path := writeConfig(t, "network=testnet\n")
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(path, 0600) })

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig on unreadable file: expected error, got nil")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("LoadConfig on unreadable file should not return ErrConfigNotFound")
	}
}

// ---------------------------------------------------------------------------
// Environment overlay tests
// ---------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	t.Setenv("TXGEN_NETWORK", "testnet")
	t.Setenv("TXGEN_LOG_LEVEL", "warn")
	t.Setenv("TXGEN_SIG_OP_COUNT", "4")

	base := DefaultConfig()
	cfg, err := ApplyEnv(base)
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if cfg.SigOpCount != 4 {
		t.Errorf("SigOpCount = %d, want 4", cfg.SigOpCount)
	}
	// Unset variables leave the base values alone.
	if cfg.DataDir != base.DataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, base.DataDir)
	}
	if cfg.MinimumSignatures != base.MinimumSignatures {
		t.Errorf("MinimumSignatures = %d, want %d", cfg.MinimumSignatures, base.MinimumSignatures)
	}
}

func TestApplyEnv_BadNumber(t *testing.T) {
	t.Setenv("TXGEN_MINIMUM_SIGNATURES", "lots")
	if _, err := ApplyEnv(DefaultConfig()); err == nil {
		t.Error("ApplyEnv with non-numeric minimum signatures: expected error")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TXGEN_NETWORK", "regtest")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want env override %q", cfg.Network, "regtest")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Network = "testnet"
	cfg.LogLevel = "debug"
	if err := SaveConfig(ConfigPath(dir), cfg); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TXGEN_LOG_LEVEL", "error")

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Network != "testnet" {
		t.Errorf("Network = %q, want file value %q", got.Network, "testnet")
	}
	if got.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want env value %q", got.LogLevel, "error")
	}
}

func TestLoad_FileDataDirRelocates(t *testing.T) {
	dir := t.TempDir()
	elsewhere := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(ConfigPath(dir), []byte("datadir = "+elsewhere+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != elsewhere {
		t.Errorf("DataDir = %q, want file value %q", cfg.DataDir, elsewhere)
	}

	t.Setenv("TXGEN_DATA_DIR", dir)
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want env value %q", cfg.DataDir, dir)
	}
}

func TestLoad_FileWithoutDataDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(ConfigPath(dir), []byte("network = testnet\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "empty_datadir",
			modify:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrEmptyDataDir,
		},
		{
			name:    "bad_network",
			modify:  func(c *Config) { c.Network = "devnet" },
			wantErr: ErrInvalidNetwork,
		},
		{
			name:    "empty_network",
			modify:  func(c *Config) { c.Network = "" },
			wantErr: ErrInvalidNetwork,
		},
		{
			name:    "bad_loglevel",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "zero_sigops",
			modify:  func(c *Config) { c.SigOpCount = 0 },
			wantErr: ErrInvalidSigning,
		},
		{
			name:    "zero_minsigs",
			modify:  func(c *Config) { c.MinimumSignatures = 0 },
			wantErr: ErrInvalidSigning,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigValidNetworks(t *testing.T) {
	for _, network := range []string{"mainnet", "testnet", "teratestnet", "regtest"} {
		cfg := DefaultConfig()
		cfg.Network = network
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with network %q: %v", network, err)
		}
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"INFO", "Debug", "WARN", "Error", "dEbUg"} {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = level
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with LogLevel %q: %v", level, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// NetworkConfig / ConfigPath tests
// ---------------------------------------------------------------------------

func TestConfigNetworkConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "testnet"
	n, err := cfg.NetworkConfig()
	if err != nil {
		t.Fatalf("NetworkConfig: %v", err)
	}
	if n.Name != "testnet" {
		t.Errorf("Name = %q, want %q", n.Name, "testnet")
	}

	cfg.Network = "devnet"
	if _, err := cfg.NetworkConfig(); !errors.Is(err, ErrInvalidNetwork) {
		t.Errorf("NetworkConfig(devnet): got %v, want ErrInvalidNetwork", err)
	}
}

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.bitfs-txgen")
	want := filepath.Join("/home/user/.bitfs-txgen", "config")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestConfigPath_WithTrailingSlash(t *testing.T) {
	got := ConfigPath("/foo/")
	want := filepath.Join("/foo", "config")
	if got != want {
		t.Errorf("ConfigPath(%q) = %q, want %q", "/foo/", got, want)
	}
}

// ---------------------------------------------------------------------------
// NewLogger tests
// ---------------------------------------------------------------------------

func TestNewLogger_Level(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	logger, closeFn, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer closeFn()

	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
	if logger.Out != os.Stderr {
		t.Error("logger without LogFile should write to stderr")
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if _, _, err := NewLogger(cfg); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("NewLogger: got %v, want ErrInvalidLogLevel", err)
	}
}

func TestNewLogger_File(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "txgen.log")

	logger, closeFn, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.WithField("context_id", "abc").Info("hello")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"context_id":"abc"`) {
		t.Errorf("log file = %q, want JSON entry with context_id", data)
	}
}
