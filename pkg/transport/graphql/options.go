package graphql

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/saturnines/blogql/pkg/auth"
)

// DefaultTimeout bounds every transport call.
const DefaultTimeout = 30 * time.Second

// BuilderOption configures the Builder.
type BuilderOption func(*Builder)

// WithBuilderHeaders adds headers to the built request.
func WithBuilderHeaders(headers map[string]string) BuilderOption {
	return func(b *Builder) {
		if len(headers) == 0 {
			return
		}
		if b.Headers == nil {
			b.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			b.Headers[k] = v
		}
	}
}

// WithBuilderAuth sets the auth handler applied after headers.
func WithBuilderAuth(h auth.Handler) BuilderOption {
	return func(b *Builder) {
		b.AuthHandler = h
	}
}

// WithCrossOrigin enables CORS mode, sending origin when non-empty.
func WithCrossOrigin(origin string) BuilderOption {
	return func(b *Builder) {
		b.CrossOrigin = true
		b.Origin = origin
	}
}

// ApplyOptions applies BuilderOption functions in order.
func (b *Builder) ApplyOptions(opts ...BuilderOption) {
	for _, opt := range opts {
		opt(b)
	}
}

// settings are shared by every transport.
type settings struct {
	doer        HTTPDoer
	timeout     time.Duration
	headers     map[string]string
	authHandler auth.Handler
	origin      string
	logger      *slog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		doer:    http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a transport.
type Option func(*settings)

// WithHTTPDoer swaps the underlying HTTPDoer.
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(s *settings) {
		if doer != nil {
			s.doer = doer
		}
	}
}

// WithTimeout sets the per-call timeout. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(s *settings) {
		if s.headers == nil {
			s.headers = make(map[string]string)
		}
		s.headers[key] = value
	}
}

// WithHeaders adds multiple headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(s *settings) {
		for k, v := range headers {
			WithHeader(k, v)(s)
		}
	}
}

// WithAuthHandler sets the credentials applied to every request.
func WithAuthHandler(h auth.Handler) Option {
	return func(s *settings) {
		s.authHandler = h
	}
}

// WithOrigin sets the Origin header sent in cross-origin mode.
func WithOrigin(origin string) Option {
	return func(s *settings) {
		s.origin = origin
	}
}

// WithLogger sets the logger. Nil keeps logging disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}
