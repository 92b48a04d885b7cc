package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf keys so messages name the
// same paths operators write in configs/*.yaml and APP_* variables.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}

		return name
	})

	v.RegisterStructValidation(validateDatabase, DatabaseConfig{})
	v.RegisterStructValidation(validateRedis, RedisConfig{})

	return v
}

// Validate checks the loaded configuration. The service refuses to start
// on the first invalid load.
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}

		for _, e := range verrs {
			errs = append(errs, formatFieldError(e))
		}
	}

	if c.App.IsProduction() && c.Database.Driver == DriverMemory {
		errs = append(errs, "database.driver must be postgres in prod")
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// validateDatabase rejects postgres URLs pgx cannot dial.
func validateDatabase(sl validator.StructLevel) {
	db, ok := sl.Current().Interface().(DatabaseConfig)
	if !ok || db.Driver != DriverPostgres || db.URL == "" {
		return
	}

	u, err := url.Parse(db.URL)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") || u.Host == "" {
		sl.ReportError(db.URL, "url", "URL", "postgres_url", "")
	}
}

// validateRedis requires a positive cache TTL when the cache is on.
func validateRedis(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(RedisConfig)
	if !ok || !r.Enabled {
		return
	}

	if r.CacheTTL <= 0 {
		sl.ReportError(r.CacheTTL, "cache_ttl", "CacheTTL", "cache_ttl", "")
	}
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		cond, value, _ := strings.Cut(e.Param(), " ")
		return fmt.Sprintf("%s is required when %s is %s", field, siblingPath(field, cond), value)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, e.Param())
	case "postgres_url":
		return field + " must be a postgres:// or postgresql:// URL with a host"
	case "cache_ttl":
		return field + " must be positive when redis.enabled is true"
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath drops the root struct name: "Config.server.port" becomes
// "server.port".
func formatFieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return path
}

// siblingPath resolves a required_if field name (Go name) against the
// section of field: ("database.url", "Driver") -> "database.driver".
func siblingPath(field, goName string) string {
	key := strings.ToLower(goName)

	if i := strings.LastIndex(field, "."); i >= 0 {
		return field[:i+1] + key
	}

	return key
}
