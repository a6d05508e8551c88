package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"leadflow/internal/constants"
)

// LoadConfig reads configFile (optional) and the environment. Environment
// variables use the upper-cased key path with "." replaced by "_", e.g.
// BACKEND_BASE_URL.
func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", constants.DefaultServerTimeout)
	viper.SetDefault("server.write_timeout", constants.DefaultServerTimeout)

	viper.SetDefault("backend.base_url", "")
	viper.SetDefault("backend.auth_token", "")
	viper.SetDefault("backend.user_agent", constants.DefaultUserAgent)
	viper.SetDefault("backend.timeout", constants.DefaultHTTPTimeout)
	viper.SetDefault("backend.probe.enabled", false)
	viper.SetDefault("backend.probe.path", constants.AutomationsPath)
	viper.SetDefault("backend.probe.max_attempts", 5)
	viper.SetDefault("backend.probe.initial_interval", "500ms")
	viper.SetDefault("backend.probe.max_interval", "10s")
	viper.SetDefault("backend.probe.multiplier", 2.0)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", "60s")
	viper.SetDefault("circuit_breaker.timeout", "30s")
	viper.SetDefault("circuit_breaker.failure_ratio", 0.5)
	viper.SetDefault("circuit_breaker.min_requests", 5)

	viper.SetDefault("rate_limit.enabled", false)
	viper.SetDefault("rate_limit.rps", 10.0)
	viper.SetDefault("rate_limit.burst", 20)
	viper.SetDefault("rate_limit.cleanup_interval", "5m")
	viper.SetDefault("rate_limit.max_age", "10m")

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.ttl", constants.DefaultCacheTTL)
	viper.SetDefault("cache.key_prefix", constants.CacheKeyPrefix)
	viper.SetDefault("cache.redis.host", "")
	viper.SetDefault("cache.redis.port", 6379)
	viper.SetDefault("cache.redis.password", "")
	viper.SetDefault("cache.redis.db", 0)

	viper.SetDefault("events.enabled", false)
	viper.SetDefault("events.kafka.brokers", []string{})
	viper.SetDefault("events.kafka.topic", constants.DefaultRuleEventsTopic)
}

func bindEnvVariables() {
	viper.BindEnv("backend.base_url", "BACKEND_BASE_URL", "LEADFLOW_BACKEND_URL")
	viper.BindEnv("backend.auth_token", "BACKEND_AUTH_TOKEN", "LEADFLOW_TOKEN")

	viper.BindEnv("cache.redis.host", "CACHE_REDIS_HOST")
	viper.BindEnv("cache.redis.password", "CACHE_REDIS_PASSWORD")

	viper.BindEnv("events.kafka.brokers", "EVENTS_KAFKA_BROKERS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("server.port", "SERVER_PORT")
}

func applyEnvOverrides(cfg *Config) {
	if brokersEnv := viper.GetString("EVENTS_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		out := brokers[:0]
		for _, b := range brokers {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
		if len(out) > 0 {
			cfg.Events.Kafka.Brokers = out
		}
	}

	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
}
