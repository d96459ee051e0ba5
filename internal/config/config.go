package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	API      APIConfig      `yaml:"api" mapstructure:"api"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Fusion   FusionConfig   `yaml:"fusion" mapstructure:"fusion"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// APIConfig holds primary company-data API credentials and limits.
type APIConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Host        string `yaml:"host" mapstructure:"host"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// ScrapeConfig configures fallback scraping behavior.
type ScrapeConfig struct {
	TimeoutSecs        int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxCandidatePages  int     `yaml:"max_candidate_pages" mapstructure:"max_candidate_pages"`
	MaxConcurrentPages int     `yaml:"max_concurrent_pages" mapstructure:"max_concurrent_pages"`
	RequestsPerSecond  float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	UserAgent          string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig configures the last-resort search-engine tier.
type SearchConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PipelineConfig configures stage execution and pacing.
type PipelineConfig struct {
	SnapshotDir        string `yaml:"snapshot_dir" mapstructure:"snapshot_dir"`
	DelayMillis        int    `yaml:"delay_millis" mapstructure:"delay_millis"`
	FallbackDelayMills int    `yaml:"fallback_delay_millis" mapstructure:"fallback_delay_millis"`
	TargetMinEmployees int    `yaml:"target_min_employees" mapstructure:"target_min_employees"`
	TargetMaxEmployees int    `yaml:"target_max_employees" mapstructure:"target_max_employees"`
}

// StoreConfig configures the local lookup cache.
type StoreConfig struct {
	CachePath string `yaml:"cache_path" mapstructure:"cache_path"`
}

// FusionConfig points at the fusion/trigger tuning file.
type FusionConfig struct {
	ConfigPath string `yaml:"config_path" mapstructure:"config_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("EXPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.timeout_secs", 20)
	v.SetDefault("api.max_attempts", 3)
	v.SetDefault("scrape.timeout_secs", 15)
	v.SetDefault("scrape.max_candidate_pages", 4)
	v.SetDefault("scrape.max_concurrent_pages", 3)
	v.SetDefault("scrape.requests_per_second", 1.0)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; ExpoEnrichBot/1.0)")
	v.SetDefault("search.enabled", true)
	v.SetDefault("search.base_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("pipeline.snapshot_dir", "snapshots")
	v.SetDefault("pipeline.delay_millis", 1000)
	v.SetDefault("pipeline.fallback_delay_millis", 3000)
	v.SetDefault("pipeline.target_min_employees", 11)
	v.SetDefault("pipeline.target_max_employees", 200)
	v.SetDefault("store.cache_path", "expo-enrich.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional unless an explicit path was given)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that credentials required for a live run are present.
func (c *Config) Validate() error {
	var missing []string
	if c.API.Key == "" {
		missing = append(missing, "EXPO_API_KEY")
	}
	if c.API.Host == "" {
		missing = append(missing, "EXPO_API_HOST")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
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
