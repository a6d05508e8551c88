package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateBackend(cfg.Backend); err != nil {
		errors = append(errors, err)
	}

	if err := validateLogging(cfg.Logging); err != nil {
		errors = append(errors, err)
	}

	if err := validateCircuitBreaker(cfg.CircuitBreaker); err != nil {
		errors = append(errors, err)
	}

	if err := validateCache(cfg.Cache); err != nil {
		errors = append(errors, err)
	}

	if err := validateEvents(cfg.Events); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeout <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeout <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateBackend(cfg BackendConfig) error {
	if cfg.BaseURL == "" {
		return &ValidationError{
			Field:   "backend.base_url",
			Message: "backend base URL is required",
		}
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("invalid backend URL %q (expected http:// or https://)", cfg.BaseURL),
		}
	}

	if cfg.Timeout < 0 {
		return &ValidationError{
			Field:   "backend.timeout",
			Message: "timeout must be non-negative",
		}
	}

	if cfg.Probe.Enabled {
		if cfg.Probe.MaxAttempts < 1 {
			return &ValidationError{
				Field:   "backend.probe.max_attempts",
				Message: "max_attempts must be at least 1",
			}
		}
		if cfg.Probe.Multiplier <= 0 {
			return &ValidationError{
				Field:   "backend.probe.multiplier",
				Message: "multiplier must be positive",
			}
		}
		if cfg.Probe.MaxInterval > 0 && cfg.Probe.InitialInterval > cfg.Probe.MaxInterval {
			return &ValidationError{
				Field:   "backend.probe.max_interval",
				Message: "max_interval must be greater than or equal to initial_interval",
			}
		}
	}

	return nil
}

func validateLogging(cfg LoggingConfig) error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if cfg.Level != "" && !validLevels[strings.ToLower(cfg.Level)] {
		return &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", cfg.Level),
		}
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if cfg.Format != "" && !validFormats[strings.ToLower(cfg.Format)] {
		return &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: json, console)", cfg.Format),
		}
	}

	return nil
}

func validateCircuitBreaker(cfg CircuitBreakerConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.FailureRatio < 0 || cfg.FailureRatio > 1 {
		return &ValidationError{
			Field:   "circuit_breaker.failure_ratio",
			Message: "failure_ratio must be between 0 and 1",
		}
	}

	if cfg.Timeout < 0 || cfg.Interval < 0 {
		return &ValidationError{
			Field:   "circuit_breaker.timeout",
			Message: "timeout and interval must be non-negative",
		}
	}

	return nil
}

func validateCache(cfg CacheConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Redis.Host == "" {
		return &ValidationError{
			Field:   "cache.redis.host",
			Message: "Redis host is required when the cache is enabled",
		}
	}

	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return &ValidationError{
			Field:   "cache.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Redis.Port),
		}
	}

	if cfg.TTL <= 0 {
		return &ValidationError{
			Field:   "cache.ttl",
			Message: "TTL must be positive",
		}
	}

	return nil
}

func validateEvents(cfg EventsConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return &ValidationError{
			Field:   "events.kafka.brokers",
			Message: "at least one Kafka broker is required when events are enabled",
		}
	}

	for i, broker := range cfg.Kafka.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("events.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Kafka.Topic == "" {
		return &ValidationError{
			Field:   "events.kafka.topic",
			Message: "Kafka topic is required when events are enabled",
		}
	}

	return nil
}
