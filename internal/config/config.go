package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 8320
	defaultEnv        = "development"
	defaultDSN        = "root:password@tcp(127.0.0.1:3306)/plumablog?charset=utf8mb4&parseTime=True&loc=Local"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int      `yaml:"port"`
	DSN            string   `yaml:"dsn"` // MySQL DSN
	RedisURL       string   `yaml:"redis_url"`
	Env            string   `yaml:"env"` // "development" | "production"
	JWTSecret      string   `yaml:"jwt_secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	S3             S3Config `yaml:"s3"`
}

// S3Config configures the object storage used for image uploads. Upload is
// disabled when Bucket is empty.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"` // base url prepended to object keys
}

// Load reads the YAML config file. A missing file yields defaults so the
// server can start against a local database.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{
		Port: defaultPort,
		DSN:  defaultDSN,
		Env:  defaultEnv,
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.DSN == "" {
		cfg.DSN = defaultDSN
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }
