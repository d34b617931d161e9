package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Storage
	Backend string `mapstructure:"backend"` // "sqlite" or "memory"
	DataDir string `mapstructure:"data_dir"`
	DBPath  string `mapstructure:"db_path"`

	// Native bridge socket
	SocketPath string `mapstructure:"socket_path"`

	// Optional HTTP API
	APIEnabled   bool     `mapstructure:"api_enabled"`
	APIHost      string   `mapstructure:"api_host"`
	APIPort      int      `mapstructure:"api_port"`
	JWTSecretKey string   `mapstructure:"jwt_secret_key"`
	JWTAlgorithm string   `mapstructure:"jwt_algorithm"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	SSLCert      string   `mapstructure:"ssl_cert"`
	SSLKey       string   `mapstructure:"ssl_key"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// ConfigPath is the file that was read, or empty when defaults were used.
	ConfigPath string `mapstructure:"-"`
}

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	EnvPrefix           = "CLIENTBOOK"
	DefaultBackend      = BackendSQLite
	DefaultAPIHost      = "127.0.0.1"
	DefaultAPIPort      = 8335
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultJWTAlgorithm = "HS256"

	dbFileName     = "clientbook.db"
	socketFileName = "clientbook.sock"
)

// DefaultConfigPath is $HOME/.config/clientbook/config.yml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".clientbook", "config.yml")
	}
	return filepath.Join(dir, "clientbook", "config.yml")
}

// DefaultDataDir is $HOME/.local/share/clientbook, falling back to the
// config directory.
func DefaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "clientbook")
	}
	return filepath.Dir(DefaultConfigPath())
}

// Load reads configuration from configPath, the environment and defaults.
// A missing file at the default location is not an error; a missing file
// that was asked for explicitly is.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath()
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("db_path", "")
	v.SetDefault("socket_path", "")
	v.SetDefault("api_enabled", false)
	v.SetDefault("api_host", DefaultAPIHost)
	v.SetDefault("api_port", DefaultAPIPort)
	v.SetDefault("jwt_secret_key", "")
	v.SetDefault("jwt_algorithm", DefaultJWTAlgorithm)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("ssl_cert", "")
	v.SetDefault("ssl_key", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("log_file", "")

	// Allow environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	readPath := configPath
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		readPath = ""
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigPath = readPath
	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDerived fills paths that default to locations inside DataDir.
func (c *Config) applyDerived() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, dbFileName)
	}
	if c.SocketPath == "" {
		c.SocketPath = filepath.Join(c.DataDir, socketFileName)
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("backend must be '%s' or '%s'", BackendSQLite, BackendMemory)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.APIEnabled {
		if c.JWTSecretKey == "" {
			return fmt.Errorf("jwt_secret_key is required when api_enabled is set")
		}
		if c.APIPort <= 0 || c.APIPort > 65535 {
			return fmt.Errorf("api_port must be between 1 and 65535")
		}
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("jwt_algorithm must be one of HS256, HS384, HS512")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json'")
	}

	// Validate SSL config if provided
	if c.SSLCert != "" || c.SSLKey != "" {
		if c.SSLCert == "" || c.SSLKey == "" {
			return fmt.Errorf("both ssl_cert and ssl_key must be provided")
		}
		if _, err := os.Stat(c.SSLCert); os.IsNotExist(err) {
			return fmt.Errorf("ssl_cert file does not exist: %s", c.SSLCert)
		}
		if _, err := os.Stat(c.SSLKey); os.IsNotExist(err) {
			return fmt.Errorf("ssl_key file does not exist: %s", c.SSLKey)
		}
	}

	return nil
}

func (c *Config) IsDevMode() bool {
	return os.Getenv(EnvPrefix+"_DEV_MODE") == "1"
}
