package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// clearEnv unsets every variable Load reads and restores it afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONTENTDESK_BACKEND", "COSMIC_BUCKET_SLUG", "COSMIC_READ_KEY", "COSMIC_WRITE_KEY",
		"CONTENTDESK_COSMIC_API_URL", "CONTENTDESK_COSMIC_WRITE_URL", "CONTENTDESK_COSMIC_TIMEOUT",
		"CONTENTDESK_ADDR", "CONTENTDESK_SHUTDOWN_TIMEOUT", "CONTENTDESK_READ_TIMEOUT", "CONTENTDESK_WRITE_TIMEOUT", "CONTENTDESK_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// Keep a stray .env in the working directory out of the test.
	t.Chdir(t.TempDir())
}

func TestLoadWritesDefaultFile(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "nested")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Cosmic.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadReadsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := `backend: cosmic
data_dir: /srv/data
cosmic:
  bucket_slug: agency
  read_key: file-read
server:
  addr: ":9000"
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendCosmic, cfg.Backend)
	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, "agency", cfg.Cosmic.BucketSlug)
	assert.Equal(t, "file-read", cfg.Cosmic.ReadKey)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
}

func TestEnvWinsOverFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("backend: sqlite\ncosmic:\n  read_key: file-read\n"), 0o644))
	t.Setenv("CONTENTDESK_BACKEND", "cosmic")
	t.Setenv("COSMIC_BUCKET_SLUG", "env-bucket")
	t.Setenv("COSMIC_READ_KEY", "env-read")
	t.Setenv("CONTENTDESK_COSMIC_TIMEOUT", "3s")
	t.Setenv("CONTENTDESK_WRITE_TIMEOUT", "90s")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendCosmic, cfg.Backend)
	assert.Equal(t, "env-bucket", cfg.Cosmic.BucketSlug)
	assert.Equal(t, "env-read", cfg.Cosmic.ReadKey)
	assert.Equal(t, 3*time.Second, cfg.Cosmic.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("COSMIC_BUCKET_SLUG=dotenv-bucket\nCOSMIC_WRITE_KEY=dotenv-write\n"), 0o644))
	t.Setenv("COSMIC_BUCKET_SLUG", "real-bucket")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "real-bucket", cfg.Cosmic.BucketSlug)
	assert.Equal(t, "dotenv-write", cfg.Cosmic.WriteKey)
	os.Unsetenv("COSMIC_WRITE_KEY")
}

func TestValidate(t *testing.T) {
	base := Config{Backend: types.BackendCosmic, Server: ServerConfig{Addr: ":8080"}}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing bucket", func(c *Config) {}, ErrCosmicBucket},
		{"missing read key", func(c *Config) { c.Cosmic.BucketSlug = "b" }, ErrCosmicRead},
		{"cosmic ok", func(c *Config) { c.Cosmic.BucketSlug = "b"; c.Cosmic.ReadKey = "r" }, nil},
		{"sqlite needs no keys", func(c *Config) { c.Backend = types.BackendSQLite }, nil},
		{"unknown backend", func(c *Config) { c.Backend = "mongo" }, types.ErrBackendUnknown},
		{"missing addr", func(c *Config) { c.Backend = types.BackendSQLite; c.Server.Addr = "" }, ErrServerAddr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
