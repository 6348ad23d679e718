package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, DefaultBaseURL, cfg.Backend.BaseURL)
	require.Equal(t, 60*time.Second, cfg.Backend.Timeout)
	require.Equal(t, 10*time.Second, cfg.Backend.DialTimeout)
	require.Equal(t, entity.FormatPDF, cfg.DefaultFormat())
	require.Equal(t, "memory", cfg.Blob.Backend)
	require.True(t, cfg.Blob.Serve)
	require.Equal(t, "127.0.0.1:17321", cfg.Blob.ListenAddr)
	require.Equal(t, time.Hour, cfg.Blob.S3.PresignExpiry)
	require.Equal(t, filepath.Join(home, ".reportctl", "reportctl.log"), cfg.Log.FilePath)
	require.False(t, cfg.Session.Hydrate)
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  base_url: http://localhost:8000
  timeout: 5s
user:
  id: u-42
report:
  default_format: markdown
log:
  level: debug
  file_path: ~/logs/r.log
`), 0o600))

	t.Setenv("REPORTCTL_USER_PROJECT_ID", "p-7")
	t.Setenv("REPORTCTL_SESSION_HYDRATE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	require.Equal(t, "u-42", cfg.User.ID)
	require.Equal(t, "p-7", cfg.User.ProjectID)
	require.Equal(t, entity.FormatMarkdown, cfg.DefaultFormat())
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Session.Hydrate)

	home, _ := os.UserHomeDir()
	require.Equal(t, filepath.Join(home, "logs", "r.log"), cfg.Log.FilePath)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolateHome(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Backend: BackendConfig{BaseURL: DefaultBaseURL, Timeout: time.Minute},
			Report:  ReportConfig{DefaultFormat: "PDF"},
			Blob:    BlobConfig{Backend: "memory", Serve: true, ListenAddr: "127.0.0.1:0"},
			Log:     LogConfig{Level: "info", Format: "text", Output: "stderr"},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.Backend.BaseURL = " " }, errContains: "base_url"},
		{name: "negative timeout", mutate: func(c *Config) { c.Backend.Timeout = -time.Second }, errContains: "negative"},
		{name: "unknown format", mutate: func(c *Config) { c.Report.DefaultFormat = "RTF" }, errContains: "default_format"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, errContains: "log level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, errContains: "log format"},
		{name: "file output without path", mutate: func(c *Config) { c.Log.Output = "file" }, errContains: "file_path"},
		{name: "bad listen addr", mutate: func(c *Config) { c.Blob.ListenAddr = "localhost" }, errContains: "listen_addr"},
		{name: "listen addr ignored when not serving", mutate: func(c *Config) { c.Blob.Serve = false; c.Blob.ListenAddr = "" }},
		{name: "unknown blob backend", mutate: func(c *Config) { c.Blob.Backend = "disk" }, errContains: "blob.backend"},
		{
			name:        "s3 without bucket",
			mutate:      func(c *Config) { c.Blob.Backend = "s3"; c.Blob.S3.Endpoint = "localhost:9000" },
			errContains: "bucket",
		},
		{
			name: "s3 without credentials",
			mutate: func(c *Config) {
				c.Blob.Backend = "s3"
				c.Blob.S3 = S3Config{Endpoint: "localhost:9000", Bucket: "reports", PresignExpiry: time.Hour}
			},
			errContains: "access_key",
		},
		{
			name: "s3 complete",
			mutate: func(c *Config) {
				c.Blob.Backend = "s3"
				c.Blob.S3 = S3Config{Endpoint: "localhost:9000", Bucket: "reports", AccessKey: "a", SecretKey: "s", PresignExpiry: time.Hour}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Backend.BaseURL = "http://127.0.0.1:9999"
	cfg.Backend.Timeout = 90 * time.Second
	cfg.User.ID = "u-1"
	cfg.User.ProjectID = "p-1"
	cfg.Report.DefaultFormat = "HTML"

	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Backend.BaseURL, loaded.Backend.BaseURL)
	require.Equal(t, 90*time.Second, loaded.Backend.Timeout)
	require.Equal(t, "u-1", loaded.User.ID)
	require.Equal(t, "p-1", loaded.User.ProjectID)
	require.Equal(t, entity.FormatHTML, loaded.DefaultFormat())
}
