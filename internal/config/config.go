// Package config loads the daemon configuration from an optional YAML file,
// an optional .env file and AMBIANCE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// AMBIANCE_API_ADDR for api.addr.
const EnvPrefix = "AMBIANCE"

// Config holds all application configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	API      APIConfig      `mapstructure:"api"`
	Zeroconf ZeroconfConfig `mapstructure:"zeroconf"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Library  LibraryConfig  `mapstructure:"library"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StorageConfig selects the durable key-value backend.
type StorageConfig struct {
	Backend string      `mapstructure:"backend"` // bolt, json, redis or memory
	Dir     string      `mapstructure:"dir"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// APIConfig configures the HTTP control surface.
type APIConfig struct {
	Addr      string  `mapstructure:"addr"`
	RateLimit float64 `mapstructure:"rate_limit"` // mutating requests per second, <= 0 disables
	Burst     int     `mapstructure:"burst"`
	KeysFile  string  `mapstructure:"keys_file"` // empty means open mode
}

type ZeroconfConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name"`
}

// SyncConfig configures the export file and the watched import directory.
// Either may be empty to disable that half.
type SyncConfig struct {
	ExportFile  string        `mapstructure:"export_file"`
	ImportDir   string        `mapstructure:"import_dir"`
	ExportDelay time.Duration `mapstructure:"export_delay"`
}

type LibraryConfig struct {
	Catalog string `mapstructure:"catalog"`
}

type EngineConfig struct {
	SFXDuration time.Duration `mapstructure:"sfx_duration"`
	RateLimit   float64       `mapstructure:"rate_limit"` // reconciles per second
	Burst       int           `mapstructure:"burst"`
}

// LoggingConfig selects the log destination. An empty File logs to stderr.
type LoggingConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	data := defaultDataDir()
	return &Config{
		Storage: StorageConfig{
			Backend: "bolt",
			Dir:     data,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		API: APIConfig{
			Addr:      ":8080",
			RateLimit: 20,
			Burst:     40,
		},
		Zeroconf: ZeroconfConfig{
			Enabled: true,
			Name:    "ambiance",
		},
		Sync: SyncConfig{
			ExportFile:  filepath.Join(data, "export.json"),
			ExportDelay: 500 * time.Millisecond,
		},
		Engine: EngineConfig{
			SFXDuration: 4 * time.Second,
			RateLimit:   10,
			Burst:       5,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "ambiance")
}

// DefaultConfigDir is searched for config.yaml when no explicit file is given.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ambiance")
}

// Load reads configuration. When path is empty, config.yaml is looked up in
// DefaultConfigDir and the working directory; a missing file is not an error.
// An explicit path must exist.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	v := viper.New()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	cfg.Sync.ExportFile = expandHome(cfg.Sync.ExportFile)
	cfg.Sync.ImportDir = expandHome(cfg.Sync.ImportDir)
	cfg.Library.Catalog = expandHome(cfg.Library.Catalog)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	cfg.API.KeysFile = expandHome(cfg.API.KeysFile)
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent
// from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("storage.redis.addr", cfg.Storage.Redis.Addr)
	v.SetDefault("storage.redis.password", cfg.Storage.Redis.Password)
	v.SetDefault("storage.redis.db", cfg.Storage.Redis.DB)

	v.SetDefault("api.addr", cfg.API.Addr)
	v.SetDefault("api.rate_limit", cfg.API.RateLimit)
	v.SetDefault("api.burst", cfg.API.Burst)
	v.SetDefault("api.keys_file", cfg.API.KeysFile)

	v.SetDefault("zeroconf.enabled", cfg.Zeroconf.Enabled)
	v.SetDefault("zeroconf.name", cfg.Zeroconf.Name)

	v.SetDefault("sync.export_file", cfg.Sync.ExportFile)
	v.SetDefault("sync.import_dir", cfg.Sync.ImportDir)
	v.SetDefault("sync.export_delay", cfg.Sync.ExportDelay)

	v.SetDefault("library.catalog", cfg.Library.Catalog)

	v.SetDefault("engine.sfx_duration", cfg.Engine.SFXDuration)
	v.SetDefault("engine.rate_limit", cfg.Engine.RateLimit)
	v.SetDefault("engine.burst", cfg.Engine.Burst)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
