// Package config loads and validates projectintel service configuration.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultServerPort      = 8060
	defaultServerTimeout   = 30
	defaultRedisAddress    = "localhost:6379"
	defaultResultTTL       = time.Hour
	defaultStatsTTL        = 6 * time.Hour
	defaultFundingTTL      = 24 * time.Hour
	defaultMaxFetchRetries = 3
	defaultFetchCooldown   = time.Hour
)

type Config struct {
	Debug     bool            `env:"APP_DEBUG"   yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Governor  GovernorConfig  `yaml:"governor"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	LLM       LLMConfig       `yaml:"llm"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

// RedisConfig holds connection settings for the durable cache backend.
// When Redis is unreachable the cache store runs on its in-memory fallback.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

type CacheConfig struct {
	ResultTTL  time.Duration `env:"CACHE_RESULT_TTL"  yaml:"result_ttl"`
	StatsTTL   time.Duration `env:"CACHE_STATS_TTL"   yaml:"stats_ttl"`
	FundingTTL time.Duration `env:"CACHE_FUNDING_TTL" yaml:"funding_ttl"`
}

// GovernorConfig tunes the per-key fetch cooldown gate.
type GovernorConfig struct {
	MaxAttempts int           `env:"GOVERNOR_MAX_ATTEMPTS" yaml:"max_attempts"`
	Cooldown    time.Duration `env:"GOVERNOR_COOLDOWN"     yaml:"cooldown"`
}

// DiscoveryConfig holds credentials for the upstream discovery sources.
// Any key may be empty; the corresponding source is skipped.
type DiscoveryConfig struct {
	GitHubToken   string `env:"GITHUB_TOKEN"         yaml:"github_token"`
	GitHubAPIURL  string `env:"GITHUB_API_URL"       yaml:"github_api_url"`
	TavilyKey     string `env:"TAVILY_API_KEY"       yaml:"tavily_key"`
	TavilyURL     string `env:"TAVILY_BASE_URL"      yaml:"tavily_url"`
	SerpAPIKey    string `env:"SERPAPI_KEY"          yaml:"serpapi_key"`
	SerpAPIURL    string `env:"SERP_BASE_URL"        yaml:"serpapi_url"`
	TwitterBearer string `env:"TWITTER_BEARER_TOKEN" yaml:"twitter_bearer"`
	TwitterAPIURL string `env:"TWITTER_API_URL"      yaml:"twitter_api_url"`
}

type LLMConfig struct {
	APIKey  string `env:"LLM_API_KEY"  yaml:"api_key"`
	BaseURL string `env:"LLM_BASE_URL" yaml:"base_url"`
	Model   string `env:"LLM_MODEL"    yaml:"model"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port must be positive")
	}
	if c.Governor.MaxAttempts <= 0 {
		return errors.New("governor.max_attempts must be positive")
	}
	if c.Governor.Cooldown <= 0 {
		return errors.New("governor.cooldown must be positive")
	}
	if c.Cache.ResultTTL <= 0 {
		return errors.New("cache.result_ttl must be positive")
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	setDefaults(cfg)
	// Env always wins over file values and defaults.
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerTimeout * time.Second
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Cache.ResultTTL == 0 {
		cfg.Cache.ResultTTL = defaultResultTTL
	}
	if cfg.Cache.StatsTTL == 0 {
		cfg.Cache.StatsTTL = defaultStatsTTL
	}
	if cfg.Cache.FundingTTL == 0 {
		cfg.Cache.FundingTTL = defaultFundingTTL
	}
	if cfg.Governor.MaxAttempts == 0 {
		cfg.Governor.MaxAttempts = defaultMaxFetchRetries
	}
	if cfg.Governor.Cooldown == 0 {
		cfg.Governor.Cooldown = defaultFetchCooldown
	}
	if cfg.Discovery.GitHubAPIURL == "" {
		cfg.Discovery.GitHubAPIURL = "https://api.github.com"
	}
	if cfg.Discovery.TavilyURL == "" {
		cfg.Discovery.TavilyURL = "https://api.tavily.com/search"
	}
	if cfg.Discovery.SerpAPIURL == "" {
		cfg.Discovery.SerpAPIURL = "https://serpapi.com/search.json"
	}
	if cfg.Discovery.TwitterAPIURL == "" {
		cfg.Discovery.TwitterAPIURL = "https://api.x.com/2/users/by/username"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.fireworks.ai/inference/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "accounts/fireworks/models/llama-v3p1-70b-instruct"
	}
}
