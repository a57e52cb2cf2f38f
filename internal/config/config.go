// Package config loads application configuration and sets up logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/audience-cli/internal/snapshot"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the snapshot store backend.
type StoreConfig struct {
	Driver      string              `yaml:"driver" mapstructure:"driver"`
	Path        string              `yaml:"path" mapstructure:"path"`
	DatabaseURL string              `yaml:"database_url" mapstructure:"database_url"`
	Pool        snapshot.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// IngestConfig configures the upload pipeline.
type IngestConfig struct {
	MaxRows     int `yaml:"max_rows" mapstructure:"max_rows"`
	MaxUploadMB int `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	StaticDir   string   `yaml:"static_dir" mapstructure:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	UploadRPS   float64  `yaml:"upload_rps" mapstructure:"upload_rps"`
	UploadBurst int      `yaml:"upload_burst" mapstructure:"upload_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AUDIENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "audience.db")
	v.SetDefault("ingest.max_rows", snapshot.DefaultMaxRows)
	v.SetDefault("ingest.max_upload_mb", 25)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "public")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.upload_rps", 2.0)
	v.SetDefault("server.upload_burst", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
