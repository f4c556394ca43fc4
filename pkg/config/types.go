package config

import "time"

// DefaultEndpoint is the external GraphQL server used when none is configured.
const DefaultEndpoint = "https://kadai-post-server-o8swk2av3-instansys.vercel.app/api/graphql"

const (
	DefaultRetries   = 2
	DefaultTimeout   = 30 * time.Second
	DefaultProxyAddr = ":3000"
	DefaultRelayPath = "/api/graphql"
)

// Config represents the full config for the blog client and relay
type Config struct {
	Environment   Environment       `yaml:"environment,omitempty"`    // development | production
	Mock          *bool             `yaml:"mock,omitempty"`           // nil means "decide from environment"
	MockMatcher   MockMatcher       `yaml:"mock_matcher,omitempty"`   // how mock data recognises operations
	Endpoint      string            `yaml:"endpoint,omitempty"`       // external GraphQL endpoint
	FetchDirectly *bool             `yaml:"fetch_directly,omitempty"` // nil means true
	RelayEndpoint string            `yaml:"relay_endpoint,omitempty"` // same-origin relay, enables relay fallback
	Origin        string            `yaml:"origin,omitempty"`         // Origin sent in cross-origin mode
	Retries       *int              `yaml:"retries,omitempty"`
	Timeout       Duration          `yaml:"timeout,omitempty"`
	Headers       map[string]string `yaml:"headers,omitempty"`
	Auth          *Auth             `yaml:"auth,omitempty"`
	Proxy         Proxy             `yaml:"proxy,omitempty"`
}

// Environment selects development or production behaviour.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// MockMatcher selects how the mock provider recognises operations.
type MockMatcher string

const (
	MockMatcherSubstring MockMatcher = "substring"
	MockMatcherParsed    MockMatcher = "parsed"
)

// Proxy configures the relay server.
type Proxy struct {
	Addr string `yaml:"addr,omitempty"`
	Path string `yaml:"path,omitempty"`
}

// Auth defines auth methods.
type Auth struct {
	Type   AuthType    `yaml:"type"`              // Required authentication type
	Basic  *BasicAuth  `yaml:"basic,omitempty"`   // Basic authentication
	APIKey *APIKeyAuth `yaml:"api_key,omitempty"` // API key authentication
	Bearer *BearerAuth `yaml:"bearer,omitempty"`  // Bearer token authentication
}

// AuthType defines current supported authentication types
type AuthType string

const (
	AuthTypeBasic  AuthType = "basic"
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeBearer AuthType = "bearer"
)

// BasicAuth contains auth credentials for the api
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// APIKeyAuth contains API details
type APIKeyAuth struct {
	Header     string `yaml:"header,omitempty"`      // Header name
	QueryParam string `yaml:"query_param,omitempty"` // Query parameter name
	Value      string `yaml:"value"`                 // API key value
}

// BearerAuth contains a static bearer token
type BearerAuth struct {
	Token string `yaml:"token"`
}

// Duration is a time.Duration that unmarshals from "30s"-style strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MockMode reports whether every request should be served from mock data.
// An explicit false always wins; otherwise mock mode is on when requested
// or when running in development.
func (c *Config) MockMode() bool {
	if c.Mock != nil {
		return *c.Mock
	}
	return c.Environment == EnvDevelopment
}

// MockFallback reports whether failures may degrade to mock data.
func (c *Config) MockFallback() bool {
	return c.Environment == EnvDevelopment || c.MockMode()
}

// UseFetchDirectly reports whether the fetch transport is preferred on the
// first attempt.
func (c *Config) UseFetchDirectly() bool {
	return c.FetchDirectly == nil || *c.FetchDirectly
}

// Browser reports whether the client runs where a same-origin relay exists.
func (c *Config) Browser() bool {
	return c.RelayEndpoint != ""
}

// RetryCount returns the configured retry count.
func (c *Config) RetryCount() int {
	if c.Retries == nil {
		return DefaultRetries
	}
	return *c.Retries
}

// RequestTimeout returns the per-transport timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.Timeout)
}
