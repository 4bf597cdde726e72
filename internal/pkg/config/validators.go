// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingRequiredConfig signals a required configuration value that was
// never resolved from the environment or the secrets backend.
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Validator checks a loaded configuration for a particular class of problems.
type Validator interface {
	Validate(cfg *Config) error
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	// Check for placeholder values
	if strings.Contains(cfg.Database.Password, "MISSING_") {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}

	if strings.Contains(cfg.Security.JWTSecret, "MISSING_") {
		return fmt.Errorf("%w: JWT secret", ErrMissingRequiredConfig)
	}

	// Ensure secure defaults in production
	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}

	if !cfg.Security.SecureHeaders {
		return fmt.Errorf("secure headers must be enabled in production")
	}

	if len(cfg.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins must be configured in production")
	}

	// Check for insecure defaults
	if cfg.Security.JWTSecret == "development-secret-change-in-production" {
		return fmt.Errorf("default JWT secret cannot be used in production")
	}

	// Ensure proper TLS configuration
	if cfg.Server.TLSEnabled {
		if cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "" {
			return fmt.Errorf("TLS cert and key files must be provided when TLS is enabled")
		}
	}

	return nil
}

// SecurityValidator validates security-related configuration
type SecurityValidator struct{}

// Validate performs security validation
func (v *SecurityValidator) Validate(cfg *Config) error {
	// JWT secret strength
	if len(cfg.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Bcrypt cost validation
	if cfg.Security.BcryptCost < 10 {
		return fmt.Errorf("bcrypt cost must be at least 10")
	}
	if cfg.Security.BcryptCost > 15 {
		return fmt.Errorf("bcrypt cost should not exceed 15 for performance reasons")
	}

	// Validate allowed origins format
	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" && cfg.IsProduction() {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}

	return nil
}

// ValidateForEnvironment runs the validators appropriate for the configured
// environment. Production gets the strict set.
func ValidateForEnvironment(cfg *Config) error {
	validators := []Validator{&SecurityValidator{}}
	if cfg.IsProduction() {
		validators = append(validators, &ProductionValidator{})
	}

	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}
