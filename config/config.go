// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads, saves and validates the transaction generator
// configuration. The on-disk format is a flat "key = value" file with '#'
// comments; TXGEN_* environment variables override file values.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/bitfsorg/bitfs-txgen/wallet"
)

// EnvPrefix is the prefix of environment variables read by ApplyEnv.
const EnvPrefix = "TXGEN"

// configFileName is the name of the config file inside the data directory.
const configFileName = "config"

// Config holds the generator configuration.
type Config struct {
	DataDir           string `split_words:"true"`
	Network           string `split_words:"true"`
	LogLevel          string `split_words:"true"`
	LogFile           string `split_words:"true"`
	SigOpCount        uint8  `split_words:"true"`
	MinimumSignatures uint16 `split_words:"true"`
}

// DefaultDataDir returns ~/.bitfs-txgen, or a relative .bitfs-txgen when the
// home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bitfs-txgen"
	}
	return filepath.Join(home, ".bitfs-txgen")
}

// DefaultConfig returns a configuration for a single-key mainnet wallet.
func DefaultConfig() Config {
	return Config{
		DataDir:           DefaultDataDir(),
		Network:           "mainnet",
		LogLevel:          "info",
		SigOpCount:        1,
		MinimumSignatures: 1,
	}
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), configFileName)
}

// LoadConfig reads the config file at path on top of DefaultConfig. Unknown
// keys are ignored so older binaries can read newer files.
func LoadConfig(path string) (Config, error) {
	return loadConfig(path, DefaultConfig())
}

// loadConfig reads the file at path on top of base.
func loadConfig(path string, cfg Config) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# BitFS Transaction Generator Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	b.WriteString("\n# Signing parameters of the default account\n")
	fmt.Fprintf(&b, "sigops = %d\n", cfg.SigOpCount)
	fmt.Fprintf(&b, "minsigs = %d\n", cfg.MinimumSignatures)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays TXGEN_* environment variables (TXGEN_DATA_DIR,
// TXGEN_NETWORK, TXGEN_LOG_LEVEL, TXGEN_LOG_FILE, TXGEN_SIG_OP_COUNT,
// TXGEN_MINIMUM_SIGNATURES) onto cfg. Unset variables leave fields alone.
func ApplyEnv(cfg Config) (Config, error) {
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("config: process env: %w", err)
	}
	return cfg, nil
}

// Load reads the config file in dataDir, falling back to defaults when it
// does not exist, then applies the environment overlay. DataDir defaults to
// dataDir; a datadir key in the file relocates the data, and TXGEN_DATA_DIR
// overrides both.
func Load(dataDir string) (Config, error) {
	base := DefaultConfig()
	base.DataDir = dataDir
	cfg, err := loadConfig(ConfigPath(dataDir), base)
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return cfg, err
	}
	return ApplyEnv(cfg)
}

// NetworkConfig resolves the configured network name.
func (c Config) NetworkConfig() (*wallet.NetworkConfig, error) {
	n, err := wallet.GetNetwork(c.Network)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, c.Network)
	}
	return n, nil
}

// parseKeyValue splits a line on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "sigops":
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return fmt.Errorf("sigops: %w", err)
		}
		c.SigOpCount = uint8(n)
	case "minsigs":
		n, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return fmt.Errorf("minsigs: %w", err)
		}
		c.MinimumSignatures = uint16(n)
	}
	return nil
}
