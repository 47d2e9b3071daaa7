package config

import (
	"fmt"
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

	if err := validateStorefront(cfg.Storefront); err != nil {
		errors = append(errors, err)
	}

	if err := validateDestination(cfg.Destination); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
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

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateStorefront(cfg StorefrontConfig) error {
	if cfg.WebhookSecret == "" {
		return &ValidationError{
			Field:   "storefront.webhook_secret",
			Message: "webhook secret is required",
		}
	}

	return nil
}

func validateDestination(cfg DestinationConfig) error {
	if cfg.BaseURL == "" {
		return &ValidationError{
			Field:   "destination.base_url",
			Message: "destination API base URL is required",
		}
	}

	// A fallback destination without a token can never be written to.
	if cfg.Fallback.DatabaseID != "" && cfg.Fallback.Token == "" {
		return &ValidationError{
			Field:   "destination.fallback.token",
			Message: "fallback destination requires a credential token",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	switch cfg.TenantStore {
	case "postgres":
		if cfg.Postgres.Host == "" {
			return &ValidationError{
				Field:   "database.postgres.host",
				Message: "postgres host is required when tenant_store is postgres",
			}
		}
	case "mongodb":
		if cfg.MongoDB.URI == "" {
			return &ValidationError{
				Field:   "database.mongodb.uri",
				Message: "mongodb uri is required when tenant_store is mongodb",
			}
		}
	default:
		return &ValidationError{
			Field:   "database.tenant_store",
			Message: fmt.Sprintf("unknown tenant store: %s (supported: postgres, mongodb)", cfg.TenantStore),
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if cfg.Type == "" {
		// Outcome publishing is optional.
		return nil
	}

	switch cfg.Type {
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 {
			return &ValidationError{
				Field:   "broker.kafka.brokers",
				Message: "at least one kafka broker is required",
			}
		}
		if cfg.Kafka.OutcomeTopic == "" {
			return &ValidationError{
				Field:   "broker.kafka.outcome_topic",
				Message: "outcome topic is required",
			}
		}
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}

	return nil
}
