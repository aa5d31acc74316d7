package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the demo server settings loaded from YAML and env.
// The submission policy itself (five per rolling hour) is fixed in code,
// not configured.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// ClientKeyHeader is the header the proxy sets to identify a client;
	// requests without it fall back to the remote address.
	ClientKeyHeader string `yaml:"client_key_header"`
}

// RedisConfig selects the submission log store. When disabled, logs live in
// process memory and reset on restart.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggingConfig controls log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			ListenAddr:      "localhost:8080",
			ClientKeyHeader: "X-Forwarded-For",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads YAML config (if present) and overrides with env vars.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse yaml: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	cfg.Server.ListenAddr = envString("CONTACT_LISTEN_ADDR", cfg.Server.ListenAddr)
	cfg.Server.ClientKeyHeader = envString("CONTACT_CLIENT_KEY_HEADER", cfg.Server.ClientKeyHeader)
	cfg.Redis.Enabled = envBool("CONTACT_REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = envString("CONTACT_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envString("CONTACT_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Logging.Level = envString("CONTACT_LOG_LEVEL", cfg.Logging.Level)
}

func (c *AppConfig) validate() error {
	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr must be set")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr must be set when redis is enabled")
	}
	return nil
}
