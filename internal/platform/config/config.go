package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	"mockauth/internal/domain"
)

// Config holds all configuration for the mock auth harness.
type Config struct {
	Addr     string `env:"MOCKAUTH_ADDR, default=:7007" validate:"required"`
	PluginID string `env:"MOCKAUTH_PLUGIN_ID, default=test" validate:"required,excludesall=:/"`
	LogLevel string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn error"`
	Auth     AuthConfig
}

// AuthConfig holds the defaults and policy of the mock auth service.
type AuthConfig struct {
	DefaultUserEntityRef  string        `env:"MOCKAUTH_DEFAULT_USER_ENTITY_REF, default=user:default/mock" validate:"entityref"`
	DefaultServiceSubject string        `env:"MOCKAUTH_DEFAULT_SERVICE_SUBJECT, default=external:test-service" validate:"required"`
	LimitedTokenTTL       time.Duration `env:"MOCKAUTH_LIMITED_TOKEN_TTL, default=1h" validate:"gt=0"`
	AllowLimitedAccess    bool          `env:"MOCKAUTH_ALLOW_LIMITED_ACCESS, default=true"`
}

// Load reads configuration from environment variables, falling back to defaults.
func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from the given key/value map instead of the
// process environment.
func LoadFrom(ctx context.Context, env map[string]string) (Config, error) {
	return load(ctx, envconfig.MapLookuper(env))
}

func load(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	err := domain.NewValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "entityref":
		return fmt.Sprintf("%s must look like <kind>:<namespace>/<name>", field)
	case "excludesall":
		return fmt.Sprintf("%s must not contain any of %q", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
