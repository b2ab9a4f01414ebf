package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bofryconfig "github.com/Bofry/config"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix is the prefix of environment variables read by Loader
const DefaultEnvPrefix = "CONVROUTE_"

// Loader loads configuration from, in increasing precedence: defaults, a YAML
// file, a .env file and environment variables. Command line flags belong to
// the cobra commands, which apply them to the loaded Config.
type Loader struct {
	yamlFile   string
	dotEnvFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		envPrefix: DefaultEnvPrefix,
	}
}

// WithYAMLFile sets the YAML configuration file path
func (l *Loader) WithYAMLFile(path string) *Loader {
	l.yamlFile = path
	return l
}

// WithDotEnvFile sets the .env file path
func (l *Loader) WithDotEnvFile(path string) *Loader {
	l.dotEnvFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load loads configuration from all configured sources and validates it
func (l *Loader) Load(cfg *Config) error {
	*cfg = *DefaultConfig()

	// Bofry/config keeps its own YAML decoder, which knows nothing about the
	// ordered redirect table, so YAML goes through yaml.v3 directly.
	if err := l.loadYAML(cfg); err != nil {
		return fmt.Errorf("failed to load YAML config: %w", err)
	}

	if err := l.loadBofry(cfg); err != nil {
		return err
	}

	if err := l.loadEnvCompat(cfg); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	return cfg.Validate()
}

// loadYAML decodes the YAML file over the defaults. A missing file is skipped.
func (l *Loader) loadYAML(cfg *Config) error {
	if l.yamlFile == "" {
		return nil
	}

	data, err := os.ReadFile(l.yamlFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadBofry applies the .env file and environment variables through
// Bofry/config. Bofry panics on errors, so the panic is turned into an error.
func (l *Loader) loadBofry(cfg *Config) (loadErr error) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				loadErr = fmt.Errorf("configuration loading failed: %w", err)
			} else {
				loadErr = fmt.Errorf("configuration loading panic: %v", r)
			}
		}
	}()

	configService := bofryconfig.NewConfigurationService(cfg)

	if l.dotEnvFile != "" {
		// Check if file exists first to avoid panic on missing file
		if _, err := os.Stat(l.dotEnvFile); err == nil {
			configService.LoadDotEnvFile(l.dotEnvFile)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to check .env file: %w", err)
		}
	}

	configService.LoadEnvironmentVariables(strings.TrimSuffix(l.envPrefix, "_"))
	return nil
}

// DotEnvFor returns the .env file next to yamlFile, or "" when there is none
func DotEnvFor(yamlFile string) string {
	if yamlFile == "" {
		return ""
	}
	dotEnv := filepath.Join(filepath.Dir(yamlFile), ".env")
	if _, err := os.Stat(dotEnv); err != nil {
		return ""
	}
	return dotEnv
}

// Load is a convenience function: it loads yamlFile, a .env file next to it
// when present, and the environment under DefaultEnvPrefix.
func Load(yamlFile string) (*Config, error) {
	cfg := &Config{}
	err := NewLoader().
		WithYAMLFile(yamlFile).
		WithDotEnvFile(DotEnvFor(yamlFile)).
		Load(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
