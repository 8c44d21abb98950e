/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/reviewchain/pkg/ledger"
)

// DevnetEndpoint is the public devnet RPC endpoint.
const DevnetEndpoint = "https://api.devnet.solana.com"

// Config represents the reviewchain configuration
type Config struct {
	ProgramID   string  `yaml:"program_id"`
	DataDir     string  `yaml:"data_dir"`
	ListWorkers int     `yaml:"list_workers"`
	RPC         RPC     `yaml:"rpc"`
	Wallet      Wallet  `yaml:"wallet"`
	Cache       Cache   `yaml:"cache"`
	Server      Server  `yaml:"server"`
	Logging     Logging `yaml:"logging"`
}

// RPC contains ledger RPC settings
type RPC struct {
	Endpoint          string `yaml:"endpoint"`
	RequestsPerSecond int    `yaml:"requests_per_second"`
}

// Wallet points at the signer keypair. An empty path means no wallet.
type Wallet struct {
	KeypairPath string `yaml:"keypair_path"`
}

// Cache controls the local account cache
type Cache struct {
	Enabled bool `yaml:"enabled"`
}

// Server contains HTTP API settings
type Server struct {
	Bind   string `yaml:"bind"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		ProgramID:   ledger.DefaultProgramID,
		DataDir:     "./data",
		ListWorkers: 8,
		RPC: RPC{
			Endpoint:          DevnetEndpoint,
			RequestsPerSecond: 10,
		},
		Cache: Cache{
			Enabled: true,
		},
		Server: Server{
			Bind: "127.0.0.1",
			Port: 8080,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// ProgramKey parses the configured program id.
func (c *Config) ProgramKey() (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program_id %q: %w", c.ProgramID, err)
	}
	return key, nil
}

// Validate checks the configuration for values the client cannot run with
func (c *Config) Validate() error {
	if _, err := c.ProgramKey(); err != nil {
		return err
	}
	if c.RPC.Endpoint == "" {
		return fmt.Errorf("rpc.endpoint is required")
	}
	if c.RPC.RequestsPerSecond <= 0 {
		return fmt.Errorf("rpc.requests_per_second must be positive, got %d", c.RPC.RequestsPerSecond)
	}
	if c.ListWorkers <= 0 {
		return fmt.Errorf("list_workers must be positive, got %d", c.ListWorkers)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Cache.Enabled && c.DataDir == "" {
		return fmt.Errorf("data_dir is required when the cache is enabled")
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Fields missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key and saves it
func BootstrapConfig(configPath, dataDir, keypairPath string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}
	config.Wallet.KeypairPath = keypairPath

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./reviewchain.yaml"
	}

	// For Linux/macOS, use ~/.config/reviewchain/config.yaml
	return filepath.Join(homeDir, ".config", "reviewchain", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
