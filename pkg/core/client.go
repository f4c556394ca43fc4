package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/saturnines/blogql/pkg/auth"
	"github.com/saturnines/blogql/pkg/config"
	"github.com/saturnines/blogql/pkg/errors"
	"github.com/saturnines/blogql/pkg/mock"
	"github.com/saturnines/blogql/pkg/transport/graphql"
)

// Client runs GraphQL operations through the degrade chain: direct
// attempts with backoff, then the same-origin relay, then mock data.
type Client struct {
	endpoint      string
	mockMode      bool
	mockFallback  bool
	fetchDirectly bool
	retries       int

	fetch   graphql.Transport
	library graphql.Transport
	relay   graphql.Transport
	mock    graphql.Transport

	policy RetryPolicy
	sleep  SleepFunc
	doer   graphql.HTTPDoer
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger. Nil discards output.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPDoer sets the HTTP client used by the built-in transports.
func WithHTTPDoer(doer graphql.HTTPDoer) ClientOption {
	return func(c *Client) {
		c.doer = doer
	}
}

// WithFetchTransport replaces the direct fetch transport.
func WithFetchTransport(t graphql.Transport) ClientOption {
	return func(c *Client) {
		c.fetch = t
	}
}

// WithLibraryTransport replaces the structured client transport.
func WithLibraryTransport(t graphql.Transport) ClientOption {
	return func(c *Client) {
		c.library = t
	}
}

// WithRelayTransport sets the relay transport, enabling relay fallback.
func WithRelayTransport(t graphql.Transport) ClientOption {
	return func(c *Client) {
		c.relay = t
	}
}

// WithMockTransport replaces the mock data source.
func WithMockTransport(t graphql.Transport) ClientOption {
	return func(c *Client) {
		c.mock = t
	}
}

// WithRetryPolicy changes the backoff schedule.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) {
		c.policy = p
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(sleep SleepFunc) ClientOption {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient builds a Client from cfg. Mode selection happens here, once.
func NewClient(cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfiguration, "config is required")
	}

	c := &Client{
		endpoint:      cfg.Endpoint,
		mockMode:      cfg.MockMode(),
		mockFallback:  cfg.MockFallback(),
		fetchDirectly: cfg.UseFetchDirectly(),
		retries:       cfg.RetryCount(),
		policy:        DefaultRetryPolicy,
		sleep:         sleepContext,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	handler, err := auth.NewAuthRegistry().Create(cfg.Auth)
	if err != nil {
		return nil, err
	}

	topts := []graphql.Option{
		graphql.WithTimeout(cfg.RequestTimeout()),
		graphql.WithHeaders(cfg.Headers),
		graphql.WithAuthHandler(handler),
		graphql.WithOrigin(cfg.Origin),
		graphql.WithLogger(c.logger),
	}
	if c.doer != nil {
		topts = append(topts, graphql.WithHTTPDoer(c.doer))
	} else {
		topts = append(topts, graphql.WithHTTPDoer(&http.Client{}))
	}

	if c.fetch == nil {
		c.fetch = graphql.NewHTTPTransport(cfg.Endpoint, topts...)
	}
	if c.library == nil {
		c.library = graphql.NewLibraryTransport(cfg.Endpoint, topts...)
	}
	if c.relay == nil && cfg.Browser() {
		c.relay = graphql.NewRelayTransport(cfg.RelayEndpoint, topts...)
	}
	if c.mock == nil {
		c.mock = newMockProvider(cfg, c.logger)
	}

	c.logger.Debug("graphql client ready",
		slog.String("endpoint", c.endpoint),
		slog.Bool("mock", c.mockMode),
		slog.Bool("mock_fallback", c.mockFallback),
		slog.Bool("relay", c.relay != nil),
		slog.Int("retries", c.retries),
	)
	return c, nil
}

func newMockProvider(cfg *config.Config, logger *slog.Logger) *mock.Provider {
	var classifier mock.Classifier = mock.SubstringClassifier{}
	if cfg.MockMatcher == config.MockMatcherParsed {
		classifier = mock.ParsedClassifier{}
	}
	return mock.NewProvider(nil, mock.WithClassifier(classifier), mock.WithLogger(logger))
}

// MockMode reports whether every request is served from mock data.
func (c *Client) MockMode() bool {
	return c.mockMode
}

// Request runs query with the configured retry count.
func (c *Client) Request(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	return c.RequestWithRetries(ctx, query, variables, c.retries)
}

// RequestWithRetries runs query with up to retries+1 direct attempts.
func (c *Client) RequestWithRetries(ctx context.Context, query string, variables map[string]any, retries int) (json.RawMessage, error) {
	op := graphql.Operation{Query: query, Variables: variables}
	if c.mockMode {
		return c.mock.Execute(ctx, op)
	}
	if retries < 0 {
		retries = 0
	}

	st := &chainState{op: op, retries: retries}
	for _, s := range c.strategies() {
		if !s.applies(st) {
			continue
		}
		data, err := s.run(ctx, st)
		if err == nil {
			return data, nil
		}
		st.last = err
		st.tried = append(st.tried, s.name)
		if st.stop {
			break
		}
	}
	return nil, c.finalError(st)
}

// Request runs query and decodes the data object into T.
func Request[T any](ctx context.Context, c *Client, query string, variables map[string]any) (T, error) {
	var out T
	data, err := c.Request(ctx, query, variables)
	if err != nil {
		return out, err
	}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, errors.Wrap(errors.KindAPI, err, "decode response: "+err.Error())
	}
	return out, nil
}

// PingResult reports whether the server answered a trivial query.
type PingResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Ping runs `query { __typename }` through the normal request path.
func (c *Client) Ping(ctx context.Context) PingResult {
	result, err := Request[struct {
		Typename string `json:"__typename"`
	}](ctx, c, "query {\n  __typename\n}", nil)
	if err != nil {
		return PingResult{Message: "connection failed: " + errors.Summary(err)}
	}

	typename := result.Typename
	if typename == "" {
		typename = "OK"
	}
	via := c.endpoint
	if c.mockMode {
		via = "mock data"
	}
	return PingResult{
		Success: true,
		Message: fmt.Sprintf("connected to the GraphQL server (%s)\nresult: %s", via, typename),
	}
}
