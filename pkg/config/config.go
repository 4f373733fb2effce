package config

import (
	"fmt"
	"os"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/scheduler"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DataPath    string `mapstructure:"DATA_PATH"`

	// Redis
	RedisURL                string `mapstructure:"REDIS_URL"`
	ReliabilityCacheTTLMins int    `mapstructure:"RELIABILITY_CACHE_TTL_MINUTES"`

	// Auth
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	APIMasterSecret      string `mapstructure:"API_MASTER_SECRET"`
	AccessTokenExpireMin int    `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	AdminUsername        string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword        string `mapstructure:"ADMIN_PASSWORD"`

	// Scoring
	ScoringConfig string `mapstructure:"SCORING_CONFIG"`
}

var keys = []string{
	"PORT", "GIN_MODE", "DATABASE_URL", "DATA_PATH",
	"REDIS_URL", "RELIABILITY_CACHE_TTL_MINUTES",
	"JWT_SECRET", "API_MASTER_SECRET", "ACCESS_TOKEN_EXPIRE_MINUTES",
	"ADMIN_USERNAME", "ADMIN_PASSWORD", "SCORING_CONFIG",
}

// LoadDotEnv loads the first .env found in the working directory or up to
// two parents. Variables already set in the environment win.
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads configuration from the environment with defaults
func Load() (*Config, error) {
	LoadDotEnv()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("DATA_PATH", "roster.db")
	v.SetDefault("RELIABILITY_CACHE_TTL_MINUTES", 60)
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 1440)
	v.SetDefault("ADMIN_USERNAME", "admin")

	// AutomaticEnv only answers Get; Unmarshal needs every key bound
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) ReliabilityCacheTTL() time.Duration {
	return time.Duration(c.ReliabilityCacheTTLMins) * time.Minute
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMin) * time.Minute
}

// ScoringWeights returns the defaults unless SCORING_CONFIG names a file
func (c *Config) ScoringWeights() (*scheduler.ScoringWeights, error) {
	if c.ScoringConfig == "" {
		w := scheduler.DefaultScoringWeights()
		return &w, nil
	}
	return LoadScoringWeights(c.ScoringConfig)
}

// LoadScoringWeights reads a YAML file overriding any subset of the default
// weights. The merged result must validate.
func LoadScoringWeights(path string) (*scheduler.ScoringWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring config: %w", err)
	}
	return ParseScoringWeights(data)
}

func ParseScoringWeights(data []byte) (*scheduler.ScoringWeights, error) {
	w := scheduler.DefaultScoringWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse scoring config: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}
