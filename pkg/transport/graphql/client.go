package graphql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/saturnines/blogql/pkg/errors"
)

// maxBody caps how much of a response is read.
const maxBody = 10 << 20

// HTTPDoer is the minimal client interface; *http.Client satisfies it.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPTransport posts operations with a plain HTTP client. Built with
// NewHTTPTransport it targets the external endpoint in cross-origin mode;
// built with NewRelayTransport it targets the same-origin relay.
type HTTPTransport struct {
	endpoint    string
	crossOrigin bool
	relay       bool
	settings
}

// NewHTTPTransport returns the direct fetch transport for endpoint.
func NewHTTPTransport(endpoint string, opts ...Option) *HTTPTransport {
	return &HTTPTransport{
		endpoint:    endpoint,
		crossOrigin: true,
		settings:    newSettings(opts),
	}
}

// NewRelayTransport returns the transport for the same-origin relay.
func NewRelayTransport(relayURL string, opts ...Option) *HTTPTransport {
	return &HTTPTransport{
		endpoint: relayURL,
		relay:    true,
		settings: newSettings(opts),
	}
}

// Endpoint returns the URL operations are posted to.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// Execute sends op and returns the response data.
func (t *HTTPTransport) Execute(ctx context.Context, op Operation) (json.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	bopts := []BuilderOption{WithBuilderHeaders(t.headers), WithBuilderAuth(t.authHandler)}
	if t.crossOrigin {
		bopts = append(bopts, WithCrossOrigin(t.origin))
	}
	req, err := NewBuilder(t.endpoint, op, bopts...).Build(callCtx)
	if err != nil {
		return nil, errors.Wrap(errors.KindConfiguration, err, "build request: "+err.Error())
	}

	resp, err := t.doer.Do(req)
	if err != nil {
		return nil, t.callError(ctx, callCtx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, t.callError(ctx, callCtx, err)
	}

	t.logger.Debug("graphql response",
		slog.String("endpoint", t.endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Bool("relay", t.relay),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, resp.Status, body, t.relay)
	}
	return decodeResponse(body, t.logger)
}

func (t *HTTPTransport) callError(parent, call context.Context, err error) error {
	return transportError(t.endpoint, t.timeout, parent, call, err)
}

// transportError classifies a failure to obtain a response. Cancellation of
// the caller's context is returned as is so the orchestrator stops.
func transportError(endpoint string, timeout time.Duration, parent, call context.Context, err error) error {
	if perr := parent.Err(); perr != nil {
		return perr
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) {
		return errors.Timeout(timeout, err)
	}
	return errors.Network(endpoint, err)
}

// statusError classifies a non-2xx reply.
func statusError(code int, status string, body []byte, withBody bool) error {
	if code == http.StatusUnauthorized {
		return errors.Authentication("")
	}
	text := http.StatusText(code)
	if status != "" {
		// "404 Not Found" -> "Not Found"
		if len(status) > 4 && status[3] == ' ' {
			text = status[4:]
		} else {
			text = status
		}
	}
	snippet := ""
	if withBody {
		snippet = string(body)
	}
	return errors.HTTPStatus(code, text, snippet)
}
