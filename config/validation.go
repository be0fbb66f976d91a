package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found so they can be fixed in one go.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "\n")
}

const insecureJWTSecret = "dev-insecure-secret"

// ValidateConfig checks if the configuration meets the requirements for the current environment.
// Outside production a missing JWT secret is replaced with an insecure development value.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.Server.Port == "" {
		errs = append(errs, ValidationError{"server.port", "is required"})
	}

	switch cfg.DB.Driver {
	case "postgres":
		if cfg.DB.Host == "" || cfg.DB.Name == "" {
			errs = append(errs, ValidationError{"db", "host and name are required for postgres"})
		}
	case "sqlite":
		if cfg.DB.SQLitePath == "" {
			errs = append(errs, ValidationError{"db.sqlite_path", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"db.driver", fmt.Sprintf("unsupported driver %q", cfg.DB.Driver)})
	}

	switch cfg.LLM.Provider {
	case "gemini", "openai":
	default:
		errs = append(errs, ValidationError{"llm.provider", fmt.Sprintf("unsupported provider %q", cfg.LLM.Provider)})
	}

	switch cfg.Usage.Store {
	case "memory", "redis":
	default:
		errs = append(errs, ValidationError{"usage.store", fmt.Sprintf("unsupported store %q", cfg.Usage.Store)})
	}
	if cfg.Usage.GuestLimit < 0 || cfg.Usage.UserLimit < 0 {
		errs = append(errs, ValidationError{"usage", "limits must not be negative"})
	}

	if cfg.Env.IsProduction() {
		if cfg.JWT.Secret == "" {
			errs = append(errs, ValidationError{"jwt.secret", "jwt_secret secret is required"})
		}
		if cfg.DB.Driver == "postgres" && cfg.DB.Password == "" {
			errs = append(errs, ValidationError{"db.password", "db_password secret is required"})
		}
		if cfg.LLM.APIKey == "" {
			errs = append(errs, ValidationError{"llm.api_key", "llm_api_key secret is required"})
		}
	} else if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = insecureJWTSecret
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
