package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigLoader defines the interface for loading configs
type ConfigLoader interface {
	Load(path string) (*Config, error)
	Parse(data []byte) (*Config, error)
}

type ValidationError struct {
	Field   string
	Message string
}

type Validator interface {
	Validate(config *Config) []ValidationError
}

// Returns the string representation of validation error
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DefaultValueSetter Handles the interface for setting default values
type DefaultValueSetter interface {
	SetDefaults(config *Config)
}

// VariableExpander defines the interface for expanding variables
type VariableExpander interface {
	Expand(data []byte) []byte
}

// EnvExpander implements VariableExpander using environment variables
type EnvExpander struct{}

// Expand expands environment variables with the given data
func (e *EnvExpander) Expand(data []byte) []byte {
	expanded := os.Expand(string(data), os.Getenv)
	return []byte(expanded)
}

// Loader builds a Config from an optional YAML file and the environment.
type Loader struct {
	expander      VariableExpander
	validators    []Validator
	defaultSetter DefaultValueSetter
	lookupEnv     func(string) (string, bool)
}

// NewLoader creates a new Loader with the given components
func NewLoader(
	expander VariableExpander,
	defaultSetter DefaultValueSetter,
	validators ...Validator,
) *Loader {
	return &Loader{
		expander:      expander,
		validators:    validators,
		defaultSetter: defaultSetter,
		lookupEnv:     os.LookupEnv,
	}
}

// NewDefaultLoader wires the standard expander, defaults and validators.
func NewDefaultLoader() *Loader {
	return NewLoader(
		&EnvExpander{},
		&Defaults{},
		&EndpointValidator{},
		&RetryValidator{},
		&AuthValidator{},
	)
}

// WithLookupEnv replaces the environment lookup, for tests.
func (l *Loader) WithLookupEnv(lookup func(string) (string, bool)) *Loader {
	l.lookupEnv = lookup
	return l
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// Load a config from a YAML file. An empty path loads from the environment
// only.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		return l.Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return l.Parse(data)
}

// Parse parses a yaml config, then applies environment overrides, defaults
// and validation.
func (l *Loader) Parse(data []byte) (*Config, error) {
	var cfg Config

	if len(data) > 0 {
		// Expand variables if an expander is configured
		if l.expander != nil {
			data = l.expander.Expand(data)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := l.applyEnv(&cfg); err != nil {
		return nil, err
	}

	if l.defaultSetter != nil {
		l.defaultSetter.SetDefaults(&cfg)
	}

	var allErrors []ValidationError
	for _, validator := range l.validators {
		allErrors = append(allErrors, validator.Validate(&cfg)...)
	}
	if len(allErrors) > 0 {
		return nil, fmt.Errorf("validation errors: %v", allErrors)
	}

	return &cfg, nil
}

// applyEnv overrides file values with BLOG_* environment variables.
func (l *Loader) applyEnv(cfg *Config) error {
	if v, ok := l.lookupEnv("BLOG_ENV"); ok && v != "" {
		cfg.Environment = Environment(strings.ToLower(v))
	}
	if v, ok := l.lookupEnv("BLOG_USE_MOCK"); ok && v != "" {
		// Only the literal strings count.
		switch v {
		case "true":
			cfg.Mock = boolPtr(true)
		case "false":
			cfg.Mock = boolPtr(false)
		}
	}
	if v, ok := l.lookupEnv("BLOG_MOCK_MATCHER"); ok && v != "" {
		cfg.MockMatcher = MockMatcher(v)
	}
	if v, ok := l.lookupEnv("BLOG_GRAPHQL_ENDPOINT"); ok && v != "" {
		cfg.Endpoint = v
	}
	if v, ok := l.lookupEnv("BLOG_USE_FETCH"); ok && v != "" {
		cfg.FetchDirectly = boolPtr(v != "false")
	}
	if v, ok := l.lookupEnv("BLOG_RELAY_ENDPOINT"); ok && v != "" {
		cfg.RelayEndpoint = v
	}
	if v, ok := l.lookupEnv("BLOG_ORIGIN"); ok && v != "" {
		cfg.Origin = v
	}
	if v, ok := l.lookupEnv("BLOG_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BLOG_RETRIES: %w", err)
		}
		cfg.Retries = &n
	}
	if v, ok := l.lookupEnv("BLOG_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BLOG_TIMEOUT: %w", err)
		}
		cfg.Timeout = Duration(d)
	}
	if v, ok := l.lookupEnv("BLOG_BEARER_TOKEN"); ok && v != "" {
		cfg.Auth = &Auth{Type: AuthTypeBearer, Bearer: &BearerAuth{Token: v}}
	}
	if v, ok := l.lookupEnv("BLOG_PROXY_ADDR"); ok && v != "" {
		cfg.Proxy.Addr = v
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

// Defaults implements DefaultValueSetter for Config
type Defaults struct{}

// SetDefaults sets default values for Config
func (d *Defaults) SetDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = EnvDevelopment
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MockMatcher == "" {
		cfg.MockMatcher = MockMatcherSubstring
	}
	if cfg.Retries == nil {
		n := DefaultRetries
		cfg.Retries = &n
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = Duration(DefaultTimeout)
	}
	if cfg.Proxy.Addr == "" {
		cfg.Proxy.Addr = DefaultProxyAddr
	}
	if cfg.Proxy.Path == "" {
		cfg.Proxy.Path = DefaultRelayPath
	}
}

// EndpointValidator checks endpoints and the environment name
type EndpointValidator struct{}

// Validate checks that endpoints are absolute http(s) URLs
func (v *EndpointValidator) Validate(cfg *Config) []ValidationError {
	var errors []ValidationError

	switch cfg.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		errors = append(errors, ValidationError{Field: "environment", Message: fmt.Sprintf("unknown environment: %s", cfg.Environment)})
	}

	switch cfg.MockMatcher {
	case MockMatcherSubstring, MockMatcherParsed:
	default:
		errors = append(errors, ValidationError{Field: "mock_matcher", Message: fmt.Sprintf("unknown matcher: %s", cfg.MockMatcher)})
	}

	if !isHTTPURL(cfg.Endpoint) {
		errors = append(errors, ValidationError{Field: "endpoint", Message: "must be an http(s) URL"})
	}
	if cfg.RelayEndpoint != "" && !isHTTPURL(cfg.RelayEndpoint) {
		errors = append(errors, ValidationError{Field: "relay_endpoint", Message: "must be an http(s) URL"})
	}
	if !strings.HasPrefix(cfg.Proxy.Path, "/") {
		errors = append(errors, ValidationError{Field: "proxy.path", Message: "must start with /"})
	}

	return errors
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// RetryValidator checks retry and timeout settings
type RetryValidator struct{}

// Validate checks that retries and timeout are usable
func (v *RetryValidator) Validate(cfg *Config) []ValidationError {
	var errors []ValidationError
	if cfg.Retries != nil && *cfg.Retries < 0 {
		errors = append(errors, ValidationError{Field: "retries", Message: "must not be negative"})
	}
	if cfg.Timeout < 0 {
		errors = append(errors, ValidationError{Field: "timeout", Message: "must not be negative"})
	}
	return errors
}

// AuthValidator handles authentication validation
type AuthValidator struct{}

// Validate checks that authentication configuration is valid
func (v *AuthValidator) Validate(cfg *Config) []ValidationError {
	var errors []ValidationError

	// Skip validation if auth is not configured
	if cfg.Auth == nil {
		return errors
	}

	switch cfg.Auth.Type {
	case AuthTypeBasic:
		if cfg.Auth.Basic == nil {
			errors = append(errors, ValidationError{Field: "auth.basic", Message: "is required for basic auth"})
		} else if cfg.Auth.Basic.Username == "" {
			errors = append(errors, ValidationError{Field: "auth.basic.username", Message: "is required for basic auth"})
		}
	case AuthTypeAPIKey:
		if cfg.Auth.APIKey == nil {
			errors = append(errors, ValidationError{Field: "auth.api_key", Message: "is required for api_key auth"})
		} else {
			if cfg.Auth.APIKey.Value == "" {
				errors = append(errors, ValidationError{Field: "auth.api_key.value", Message: "is required for api_key auth"})
			}
			if cfg.Auth.APIKey.Header == "" && cfg.Auth.APIKey.QueryParam == "" {
				errors = append(errors, ValidationError{Field: "auth.api_key", Message: "either header or query_param must be specified for api_key auth"})
			}
		}
	case AuthTypeBearer:
		if cfg.Auth.Bearer == nil || cfg.Auth.Bearer.Token == "" {
			errors = append(errors, ValidationError{Field: "auth.bearer.token", Message: "is required for bearer auth"})
		}
	default:
		errors = append(errors, ValidationError{Field: "auth.type", Message: fmt.Sprintf("unknown auth type: %s", cfg.Auth.Type)})
	}

	return errors
}
