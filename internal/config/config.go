package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	GRPC     GRPCConfig
	Auth     AuthConfig
	Admin    AdminConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	DataDir string // directory holding chrono_manager.db
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string // gRPC server listen address (e.g., "127.0.0.1:50051")
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string // JWT signing secret
}

// AdminConfig names a bootstrap admin created at startup when missing.
type AdminConfig struct {
	Email string
	Name  string
}

// Load loads configuration from environment variables with sensible defaults.
// A .env file in the working directory, if present, is read first; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg := load("")

	// Validate critical settings
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	if cfg.Database.DataDir == "" {
		return nil, fmt.Errorf("CHRONO_DATA_DIR is not set and no user config directory is available")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg := load("dev-secret-change-me")
	if cfg.Database.DataDir == "" {
		cfg.Database.DataDir = "data"
	}
	return cfg, nil
}

func load(defaultSecret string) *Config {
	return &Config{
		Database: DatabaseConfig{
			DataDir: getEnv("CHRONO_DATA_DIR", defaultDataDir()),
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", "127.0.0.1:50051"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", defaultSecret),
		},
		Admin: AdminConfig{
			Email: getEnv("ADMIN_EMAIL", ""),
			Name:  getEnv("ADMIN_NAME", "Administrator"),
		},
	}
}

// loadDotEnv reads KEY=VALUE pairs from path without overriding the environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// defaultDataDir resolves the per-user application data directory.
func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "chrono-manager")
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DataDir: %s, gRPC: %s, Admin: %q, Auth: *** (masked) ***}", c.Database.DataDir, c.GRPC.Address, c.Admin.Email)
}
