package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

const (
	// EnvPrefix prefixes every environment override, e.g. REPORTCTL_BACKEND_BASE_URL
	EnvPrefix = "REPORTCTL"

	// DefaultBaseURL is the hosted report backend
	DefaultBaseURL = "https://aakar-backend.onrender.com"

	configDirName  = ".reportctl"
	configFileName = "config"
	logFileName    = "reportctl.log"
)

// Config is the reportctl configuration
type Config struct {
	Backend       BackendConfig       `mapstructure:"backend"`
	User          UserConfig          `mapstructure:"user"`
	Report        ReportConfig        `mapstructure:"report"`
	Blob          BlobConfig          `mapstructure:"blob"`
	Log           LogConfig           `mapstructure:"log"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Session       SessionConfig       `mapstructure:"session"`
}

// BackendConfig locates the report generation service
type BackendConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`      // whole request, 0 disables
	DialTimeout time.Duration `mapstructure:"dial_timeout"` // connection setup
}

// UserConfig identifies who reports are generated for
type UserConfig struct {
	ID        string `mapstructure:"id"`
	ProjectID string `mapstructure:"project_id"`
}

// ReportConfig holds report defaults
type ReportConfig struct {
	DefaultFormat string `mapstructure:"default_format"` // PDF, HTML, MARKDOWN, DOCX, TEXT
}

// BlobConfig selects where binary reports are kept while displayed
type BlobConfig struct {
	Backend    string   `mapstructure:"backend"` // memory, s3
	Serve      bool     `mapstructure:"serve"`   // run the local blob server (memory backend)
	ListenAddr string   `mapstructure:"listen_addr"`
	S3         S3Config `mapstructure:"s3"`
}

// S3Config configures the S3/minio blob backend
type S3Config struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Region        string        `mapstructure:"region"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	EnableMetrics bool `mapstructure:"enable_metrics"`
}

// SessionConfig controls session hydration at chat start
type SessionConfig struct {
	Hydrate bool `mapstructure:"hydrate"`
}

// Dir returns the configuration directory (~/.reportctl)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// DefaultPath returns the default configuration file path (~/.reportctl/config.yaml)
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName+".yaml"), nil
}

func setDefaults(v *viper.Viper) {
	logFile := logFileName
	if dir, err := Dir(); err == nil {
		logFile = filepath.Join(dir, logFileName)
	}

	v.SetDefault("backend.base_url", DefaultBaseURL)
	v.SetDefault("backend.timeout", 60*time.Second)
	v.SetDefault("backend.dial_timeout", 10*time.Second)
	v.SetDefault("user.id", "")
	v.SetDefault("user.project_id", "")
	v.SetDefault("report.default_format", string(entity.FormatPDF))
	v.SetDefault("blob.backend", "memory")
	v.SetDefault("blob.serve", true)
	v.SetDefault("blob.listen_addr", "127.0.0.1:17321")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.region", "")
	v.SetDefault("blob.s3.access_key", "")
	v.SetDefault("blob.s3.secret_key", "")
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.use_ssl", true)
	v.SetDefault("blob.s3.presign_expiry", time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file_path", logFile)
	v.SetDefault("log.add_source", false)
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("session.hydrate", false)
}

// Load reads the configuration. A .env file in the working directory is
// loaded into the environment first. With an empty configPath the default
// file is used if it exists; an explicit path must exist.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Log.FilePath = expandHome(cfg.Log.FilePath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Backend.Timeout < 0 || c.Backend.DialTimeout < 0 {
		return fmt.Errorf("backend timeouts must not be negative")
	}

	if _, err := entity.ParseRequestFormat(c.Report.DefaultFormat); err != nil {
		return fmt.Errorf("report.default_format: %w", err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			return fmt.Errorf("log.file_path is required when log.output is 'file'")
		}
	default:
		return fmt.Errorf("invalid log output: %s, must be 'stdout', 'stderr' or 'file'", c.Log.Output)
	}

	switch c.Blob.Backend {
	case "memory":
		if c.Blob.Serve {
			if _, _, err := net.SplitHostPort(c.Blob.ListenAddr); err != nil {
				return fmt.Errorf("invalid blob.listen_addr %q: %w", c.Blob.ListenAddr, err)
			}
		}
	case "s3":
		s3 := c.Blob.S3
		if s3.Endpoint == "" || s3.Bucket == "" {
			return fmt.Errorf("blob.s3.endpoint and blob.s3.bucket are required for the s3 backend")
		}
		if s3.AccessKey == "" || s3.SecretKey == "" {
			return fmt.Errorf("blob.s3.access_key and blob.s3.secret_key are required for the s3 backend")
		}
		if s3.PresignExpiry <= 0 {
			return fmt.Errorf("blob.s3.presign_expiry must be positive")
		}
	default:
		return fmt.Errorf("invalid blob.backend: %s, must be 'memory' or 's3'", c.Blob.Backend)
	}

	return nil
}

// DefaultFormat returns the configured default report format
func (c *Config) DefaultFormat() entity.RequestFormat {
	f, err := entity.ParseRequestFormat(c.Report.DefaultFormat)
	if err != nil {
		return entity.FormatPDF
	}
	return f
}

// Save writes the user-facing keys to path (0600), creating its directory
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("backend.base_url", c.Backend.BaseURL)
	v.Set("backend.timeout", c.Backend.Timeout.String())
	v.Set("user.id", c.User.ID)
	v.Set("user.project_id", c.User.ProjectID)
	v.Set("report.default_format", c.Report.DefaultFormat)
	v.Set("blob.backend", c.Blob.Backend)
	v.Set("blob.serve", c.Blob.Serve)
	v.Set("log.level", c.Log.Level)
	v.SetConfigPermissions(0o600)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
