// Package config provides configuration management for convroute.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	Logger    LoggerConfig    `yaml:"logger" env:"LOGGER"`
	Route     RouteConfig     `yaml:"route" env:"ROUTE"`
	RateLimit RateLimitConfig `yaml:"rate_limit" env:"RATE_LIMIT"`
	Metrics   MetricsConfig   `yaml:"metrics" env:"METRICS"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address      string        `yaml:"address" env:"ADDRESS" default:":8080" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" default:"120s"`
	Recovery     bool          `yaml:"recovery" env:"RECOVERY" default:"true"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level            string   `yaml:"level" env:"LEVEL" default:"info" validate:"oneof=debug info warn error dpanic panic fatal"`
	Encoding         string   `yaml:"encoding" env:"ENCODING" default:"json" validate:"oneof=json console"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS" default:"stdout"`
	ErrorOutputPaths []string `yaml:"error_output_paths" env:"ERROR_OUTPUT_PATHS" default:"stderr"`
}

// NamingConfig holds one naming convention: the name used when a URI does not
// select one explicitly, and the prefix and suffix wrapped around every
// generated name.
type NamingConfig struct {
	Default string `yaml:"default" env:"DEFAULT" validate:"required"`
	Prefix  string `yaml:"prefix" env:"PREFIX"`
	Suffix  string `yaml:"suffix" env:"SUFFIX"`
}

// RouteConfig holds the conventions the resolver applies to a URI. Handlers
// are looked up under BaseDir/Directory.
type RouteConfig struct {
	BaseDir   string       `yaml:"base_dir" env:"BASE_DIR" default:"." validate:"required"`
	Directory string       `yaml:"directory" env:"DIRECTORY" default:"handlers"`
	Extension string       `yaml:"extension" env:"EXTENSION" default:"go" validate:"required,excludesall=/\\"`
	Class     NamingConfig `yaml:"class" env:"CLASS"`
	Function  NamingConfig `yaml:"function" env:"FUNCTION"`
	Watch     bool         `yaml:"watch" env:"WATCH" default:"false"`
	Redirects Redirects    `yaml:"redirects"`
}

// RateLimitConfig holds per client rate limiting for the dispatcher
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED" default:"false"`
	Rate    int  `yaml:"rate" env:"RATE" default:"10" validate:"gte=0"`
	Burst   int  `yaml:"burst" env:"BURST" default:"20" validate:"gte=0"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED" default:"true"`
	Path      string `yaml:"path" env:"PATH" default:"/metrics" validate:"omitempty,startswith=/"`
	Namespace string `yaml:"namespace" env:"NAMESPACE" default:"convroute"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
			Recovery:     true,
		},
		Logger: LoggerConfig{
			Level:            "info",
			Encoding:         "json",
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		},
		Route: RouteConfig{
			BaseDir:   ".",
			Directory: "handlers",
			Extension: "go",
			Class: NamingConfig{
				Default: "index",
				Suffix:  "Controller",
			},
			// Go only dispatches to exported methods, so the default
			// convention prefixes method names ("list" -> "ActionList").
			Function: NamingConfig{
				Default: "index",
				Prefix:  "Action",
			},
		},
		RateLimit: RateLimitConfig{
			Rate:  10,
			Burst: 20,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "convroute",
		},
	}
}

var validate = validator.New()

// Validate validates the configuration and compiles the redirect table
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return newValidationError(err)
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("invalid configuration: Metrics.Path is required")
	}
	if err := c.Route.Redirects.Compile(); err != nil {
		return fmt.Errorf("route.redirects: %w", err)
	}
	return nil
}

// newValidationError flattens validator errors into one readable error
func newValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, validationMessage(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "excludesall":
		return fmt.Sprintf("%s must not contain any of %q", field, fe.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
