package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultConfigFile     = "routeopt.yaml"
	DefaultEnvFile        = ".env"
	DefaultBaseURL        = "http://localhost:8080/api"
	DefaultStreamPath     = "/optimize-stream"
	DefaultAlgorithm      = AlgorithmHybrid
	DefaultTimelineSize   = 12
	DefaultMinRoutePoints = 10
)

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL     = "ROUTEOPT_BASE_URL"
	EnvAPIKey      = "OPENROUTE_API_KEY"
	EnvAPIKeyShort = "ORS_API_KEY"
)

// DefaultServerConfig returns a ServerConfig with sensible default values.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		BaseURL:    DefaultBaseURL,
		StreamPath: DefaultStreamPath,
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Server: DefaultServerConfig(),
		Solver: SolverConfig{Algorithm: DefaultAlgorithm},
		Display: DisplayConfig{
			TimelineSize:   DefaultTimelineSize,
			MinRoutePoints: DefaultMinRoutePoints,
		},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// LoadConfig reads and parses the YAML config file at path.
// If the file doesn't exist, returns default config.
// Applies defaults for any missing fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEnvFile parses a dotenv file into a map of key-value pairs.
// A missing file yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return env, nil
}

// ApplyEnv overlays environment settings on cfg. lookup is consulted first,
// then fileEnv; either may be nil.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool), fileEnv map[string]string) {
	get := func(key string) string {
		if lookup != nil {
			if v, ok := lookup(key); ok && v != "" {
				return v
			}
		}
		return fileEnv[key]
	}

	if v := get(EnvBaseURL); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := get(EnvAPIKey); v != "" {
		cfg.APIKey = v
	} else if v := get(EnvAPIKeyShort); v != "" {
		cfg.APIKey = v
	}
}

// Load reads the config file and env file, overlays the process
// environment, and validates the result.
func Load(configPath, envPath string) (*Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	fileEnv, err := LoadEnvFile(envPath)
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg, os.LookupEnv, fileEnv)

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if err := ValidateServerConfig(&cfg.Server); err != nil {
		return err
	}

	h := cfg.Solver.Hybrid
	if h.Iterations < 0 {
		return ValidationError{Field: "solver.hybrid.iterations", Message: "must not be negative"}
	}
	if h.Workers < 0 {
		return ValidationError{Field: "solver.hybrid.workers", Message: "must not be negative"}
	}
	if h.CandidatePool < 0 {
		return ValidationError{Field: "solver.hybrid.candidate_pool", Message: "must not be negative"}
	}
	if h.DestroyRate < 0 || h.DestroyRate > 1 {
		return ValidationError{Field: "solver.hybrid.destroy_rate", Message: "must be between 0 and 1"}
	}
	if h.EmitIntervalMillis < 0 {
		return ValidationError{Field: "solver.hybrid.emit_interval_millis", Message: "must not be negative"}
	}

	if cfg.Display.TimelineSize <= 0 {
		return ValidationError{Field: "display.timeline_size", Message: "must be positive"}
	}
	if cfg.Display.MinRoutePoints <= 0 {
		return ValidationError{Field: "display.min_route_points", Message: "must be positive"}
	}
	for i, c := range cfg.Display.Palette {
		if c == "" {
			return ValidationError{Field: fmt.Sprintf("display.palette[%d]", i), Message: "required field is empty"}
		}
	}

	return nil
}

// ValidateServerConfig checks that server config values are valid.
func ValidateServerConfig(cfg *ServerConfig) error {
	if cfg.BaseURL == "" {
		return ValidationError{Field: "server.base_url", Message: "required field is empty"}
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ValidationError{Field: "server.base_url", Message: "must be an http or https URL"}
	}
	if cfg.Timeout < 0 {
		return ValidationError{Field: "server.timeout", Message: "must not be negative"}
	}
	return nil
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
