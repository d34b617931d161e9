package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, `
backend: memory
data_dir: `+dataDir+`
api_enabled: true
api_port: 9000
jwt_secret_key: secret
cors_origins:
  - http://localhost:1420
log_level: debug
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.True(t, cfg.APIEnabled)
	assert.Equal(t, 9000, cfg.APIPort)
	assert.Equal(t, DefaultAPIHost, cfg.APIHost)
	assert.Equal(t, []string{"http://localhost:1420"}, cfg.CORSOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dataDir, "clientbook.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dataDir, "clientbook.sock"), cfg.SocketPath)
	assert.Equal(t, path, cfg.ConfigPath)
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.False(t, cfg.APIEnabled)
	assert.Equal(t, DefaultJWTAlgorithm, cfg.JWTAlgorithm)
	assert.Empty(t, cfg.ConfigPath)
	assert.Equal(t, "clientbook.db", filepath.Base(cfg.DBPath))
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "backend: sqlite\ndata_dir: "+t.TempDir()+"\n")
	t.Setenv("CLIENTBOOK_BACKEND", "memory")
	t.Setenv("CLIENTBOOK_DB_PATH", "/tmp/custom.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Backend:      BackendSQLite,
			DataDir:      "/tmp",
			APIPort:      DefaultAPIPort,
			JWTAlgorithm: DefaultJWTAlgorithm,
			LogFormat:    DefaultLogFormat,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad backend", func(c *Config) { c.Backend = "postgres" }, "backend must be"},
		{"no data dir", func(c *Config) { c.DataDir = "" }, "data_dir is required"},
		{"api without secret", func(c *Config) { c.APIEnabled = true }, "jwt_secret_key is required"},
		{"api bad port", func(c *Config) { c.APIEnabled = true; c.JWTSecretKey = "s"; c.APIPort = 0 }, "api_port"},
		{"bad algorithm", func(c *Config) { c.JWTAlgorithm = "RS256" }, "jwt_algorithm"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"half ssl", func(c *Config) { c.SSLCert = "/tmp/cert.pem" }, "both ssl_cert and ssl_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
