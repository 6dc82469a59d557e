// Package config loads the server configuration from a TOML file, with
// environment variables overriding file values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	DataDir   string `toml:"data_dir"`
	ConfigDir string `toml:"config_dir"`
	LogLevel  string `toml:"log_level"`
}

type AuthConfig struct {
	Username       string   `toml:"username"`
	Password       string   `toml:"password"`
	JWTSecret      string   `toml:"jwt_secret"`
	JWTExpireHours int      `toml:"jwt_expire_hours"`
	// APITokens are server-level push tokens with access to every job.
	APITokens []string `toml:"api_tokens"`
}

type Config struct {
	Server ServerConfig `toml:"server"`
	Auth   AuthConfig   `toml:"auth"`
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      8000,
			DataDir:   "./data",
			ConfigDir: "./config",
			LogLevel:  "info",
		},
		Auth: AuthConfig{
			Username:       "admin",
			Password:       "admin",
			JWTExpireHours: 24,
		},
	}
}

// Load reads the config file at path (missing file falls back to defaults)
// and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Server.Host = getEnv("BORGWATCH_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("BORGWATCH_PORT", cfg.Server.Port)
	cfg.Server.DataDir = getEnv("BORGWATCH_DATA_DIR", cfg.Server.DataDir)
	cfg.Server.ConfigDir = getEnv("BORGWATCH_CONFIG_DIR", cfg.Server.ConfigDir)
	cfg.Server.LogLevel = getEnv("BORGWATCH_LOG_LEVEL", cfg.Server.LogLevel)
	cfg.Auth.JWTSecret = getEnv("BORGWATCH_JWT_SECRET", cfg.Auth.JWTSecret)

	return cfg, nil
}

// Validate checks the fields the server cannot run without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (or set BORGWATCH_JWT_SECRET)")
	}
	if c.Server.DataDir == "" {
		return fmt.Errorf("server.data_dir is required")
	}
	if c.Server.ConfigDir == "" {
		return fmt.Errorf("server.config_dir is required")
	}
	return nil
}

// ListenAddr renders the host:port pair for http.Server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
