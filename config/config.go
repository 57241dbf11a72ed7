package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	Matching  MatchingConfig
	Retailers RetailersConfig
	RateLimit RateLimitConfig
	Meli      MeliConfig
	BestBuy   BestBuyConfig
	Ebay      EbayConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CacheConfig holds search result cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MatchingConfig holds relevance scoring configuration
type MatchingConfig struct {
	RelevanceFloor     int  `mapstructure:"relevance_floor"`
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// RetailersConfig holds settings shared by all retailer adapters
type RetailersConfig struct {
	UserAgent  string        `mapstructure:"user_agent"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxResults int           `mapstructure:"max_results"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// MeliConfig holds the MercadoLibre OAuth application settings
type MeliConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	TokenPath    string `mapstructure:"token_path"`
}

// BestBuyConfig holds the optional Best Buy API key
type BestBuyConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// EbayConfig holds the optional eBay OAuth token
type EbayConfig struct {
	OAuthToken string `mapstructure:"oauth_token"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/comparaprecios/")

	// Environment variable settings
	v.SetEnvPrefix("COMPARAPRECIOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")

	// Matching defaults
	v.SetDefault("matching.relevance_floor", 30)
	v.SetDefault("matching.enable_debug_logging", false)

	// Retailer defaults
	v.SetDefault("retailers.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("retailers.timeout", "15s")
	v.SetDefault("retailers.max_results", 10)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Marketplace credential defaults. Viper only resolves env vars for keys
	// it already knows about, so the empty defaults keep the
	// COMPARAPRECIOS_* overrides reachable.
	v.SetDefault("meli.client_id", "")
	v.SetDefault("meli.client_secret", "")
	v.SetDefault("meli.redirect_uri", "")
	v.SetDefault("meli.token_path", ".meli_token.json")
	v.SetDefault("bestbuy.api_key", "")
	v.SetDefault("ebay.oauth_token", "")
}

// validate validates the configuration
func validate(config *Config) error {
	// Zero means "unset" throughout the service layer, so an explicit 0 here
	// would silently become the default floor; reject it instead.
	if config.Matching.RelevanceFloor < 1 || config.Matching.RelevanceFloor > 100 {
		return fmt.Errorf("matching.relevance_floor must be in [1, 100], got: %d", config.Matching.RelevanceFloor)
	}

	if config.Retailers.Timeout <= 0 {
		return fmt.Errorf("retailers.timeout must be positive, got: %s", config.Retailers.Timeout)
	}

	if config.Retailers.MaxResults <= 0 {
		return fmt.Errorf("retailers.max_results must be positive, got: %d", config.Retailers.MaxResults)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit.per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
