// README: Config loader; every setting comes from WAYFARER_* environment variables with defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

const envPrefix = "WAYFARER"

const (
	EngineGemini = "gemini"
	EngineOpenAI = "openai"

	HotelsGoogle  = "google"
	HotelsAmadeus = "amadeus"
)

type CacheConfig struct {
	TTL        time.Duration `envconfig:"TTL" default:"1h"`
	MaxStale   time.Duration `envconfig:"MAX_STALE" default:"24h"`
	MaxEntries int           `envconfig:"MAX_ENTRIES" default:"1024"`
}

type FetchConfig struct {
	Timeout       time.Duration `envconfig:"TIMEOUT" default:"5s"`
	Backoff       time.Duration `envconfig:"BACKOFF" default:"250ms"`
	Attempts      int           `envconfig:"ATTEMPTS" default:"2"`
	FallbackFloor int           `envconfig:"FALLBACK_FLOOR" default:"3"`
	HotelProvider string        `envconfig:"HOTEL_PROVIDER" default:"google"`
}

type AIConfig struct {
	Provider    string        `envconfig:"PROVIDER" default:"gemini"`
	GeminiKey   string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	OpenAIKey   string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIURL   string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"30s"`
	PromptCap   int           `envconfig:"PROMPT_CAP" default:"30"`
	Temperature float32       `envconfig:"TEMPERATURE" default:"0.4"`
}

type AmadeusConfig struct {
	BaseURL   string `envconfig:"BASE_URL" default:"https://test.api.amadeus.com"`
	APIKey    string `envconfig:"API_KEY"`
	APISecret string `envconfig:"API_SECRET"`
}

type Config struct {
	HTTP struct {
		Addr string `envconfig:"ADDR" default:":8080"`
	} `envconfig:"HTTP"`
	DB struct {
		// DSN is optional; without it plans are not persisted.
		DSN string `envconfig:"DSN"`
	} `envconfig:"DB"`
	Redis struct {
		// Addr is optional; without it the response cache lives in process.
		Addr string `envconfig:"ADDR"`
	} `envconfig:"REDIS"`
	Maps struct {
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"MAPS"`
	Cache    CacheConfig   `envconfig:"CACHE"`
	Fetch    FetchConfig   `envconfig:"FETCH"`
	AI       AIConfig      `envconfig:"AI"`
	Amadeus  AmadeusConfig `envconfig:"AMADEUS"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks provider selections and the keys they need.
func (c Config) Validate() error {
	if c.Maps.APIKey == "" {
		return fmt.Errorf("%s_MAPS_API_KEY is required", envPrefix)
	}
	switch c.AI.Provider {
	case EngineGemini:
		if c.AI.GeminiKey == "" {
			return fmt.Errorf("%s_AI_GEMINI_API_KEY is required for provider %q", envPrefix, c.AI.Provider)
		}
	case EngineOpenAI:
		if c.AI.OpenAIKey == "" {
			return fmt.Errorf("%s_AI_OPENAI_API_KEY is required for provider %q", envPrefix, c.AI.Provider)
		}
	default:
		return fmt.Errorf("unsupported AI provider %q", c.AI.Provider)
	}
	switch c.Fetch.HotelProvider {
	case HotelsGoogle:
	case HotelsAmadeus:
		if c.Amadeus.APIKey == "" || c.Amadeus.APISecret == "" {
			return fmt.Errorf("%s_AMADEUS_API_KEY and %s_AMADEUS_API_SECRET are required for hotel provider %q",
				envPrefix, envPrefix, c.Fetch.HotelProvider)
		}
	default:
		return fmt.Errorf("unsupported hotel provider %q", c.Fetch.HotelProvider)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Fetch.Attempts < 1 {
		return fmt.Errorf("fetch attempts must be at least 1")
	}
	return nil
}

// HotelSources lists the hotel providers to query. The google provider is
// joined by Amadeus whenever Amadeus credentials are configured.
func (c Config) HotelSources() []string {
	if c.Fetch.HotelProvider == HotelsAmadeus {
		return []string{HotelsAmadeus}
	}
	sources := []string{HotelsGoogle}
	if c.Amadeus.APIKey != "" && c.Amadeus.APISecret != "" {
		sources = append(sources, HotelsAmadeus)
	}
	return sources
}

// LogSummary writes the non-secret settings at startup.
func (c Config) LogSummary(log zerolog.Logger) {
	log.Info().
		Str("http_addr", c.HTTP.Addr).
		Bool("plan_store", c.DB.DSN != "").
		Bool("redis_cache", c.Redis.Addr != "").
		Str("ai_provider", c.AI.Provider).
		Str("hotel_sources", strings.Join(c.HotelSources(), "+")).
		Dur("cache_ttl", c.Cache.TTL).
		Dur("fetch_timeout", c.Fetch.Timeout).
		Dur("engine_timeout", c.AI.Timeout).
		Msg("config loaded")
}
