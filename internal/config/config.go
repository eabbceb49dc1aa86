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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Webfetch  WebfetchConfig  `yaml:"webfetch" mapstructure:"webfetch"`
	Capture   CaptureConfig   `yaml:"capture" mapstructure:"capture"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GoogleConfig holds Google Maps API settings.
type GoogleConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	TextModel   string `yaml:"text_model" mapstructure:"text_model"`
	VisionModel string `yaml:"vision_model" mapstructure:"vision_model"`
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// WebfetchConfig configures website content fetching.
type WebfetchConfig struct {
	TimeoutSecs  int   `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyBytes int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// CaptureConfig configures the screenshot capture service.
type CaptureConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// DiscoveryConfig configures the continuous business search.
type DiscoveryConfig struct {
	DefaultRadius  int `yaml:"default_radius" mapstructure:"default_radius"`
	MaxRounds      int `yaml:"max_rounds" mapstructure:"max_rounds"`
	MaxPages       int `yaml:"max_pages" mapstructure:"max_pages"`
	PageDelaySecs  int `yaml:"page_delay_secs" mapstructure:"page_delay_secs"`
	RoundDelaySecs int `yaml:"round_delay_secs" mapstructure:"round_delay_secs"`
}

// PipelineConfig configures the enrichment loop.
type PipelineConfig struct {
	LeadDelaySecs int `yaml:"lead_delay_secs" mapstructure:"lead_delay_secs"`
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
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "prospect.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api")
	v.SetDefault("google.rate_per_second", 5)
	v.SetDefault("anthropic.text_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.vision_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("webfetch.timeout_secs", 30)
	v.SetDefault("webfetch.max_body_bytes", 2<<20)
	v.SetDefault("capture.base_url", "http://localhost:3000")
	v.SetDefault("capture.dir", "screenshots")
	v.SetDefault("capture.timeout_secs", 60)
	v.SetDefault("discovery.default_radius", 10000)
	v.SetDefault("discovery.max_rounds", 10)
	v.SetDefault("discovery.max_pages", 5)
	v.SetDefault("discovery.page_delay_secs", 2)
	v.SetDefault("discovery.round_delay_secs", 3)
	v.SetDefault("pipeline.lead_delay_secs", 2)

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
