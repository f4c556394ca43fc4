// Package proxy implements the same-origin GraphQL relay that forwards
// browser requests to the external server.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/saturnines/blogql/pkg/auth"
	"github.com/saturnines/blogql/pkg/transport/graphql"
)

const (
	detailsLimit = 200
	maxBody      = 10 << 20
)

const (
	authMessage = "The GraphQL server requires authentication. Check the server's authentication settings."
	authDetails = "The deployment may have access protection enabled."
)

// Relay forwards GraphQL POSTs to an upstream endpoint.
type Relay struct {
	endpoint string
	doer     graphql.HTTPDoer
	auth     auth.Handler
	headers  map[string]string
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithHTTPDoer sets the client used for upstream calls.
func WithHTTPDoer(doer graphql.HTTPDoer) Option {
	return func(r *Relay) {
		if doer != nil {
			r.doer = doer
		}
	}
}

// WithAuthHandler sets credentials added to upstream requests.
func WithAuthHandler(h auth.Handler) Option {
	return func(r *Relay) { r.auth = h }
}

// WithHeaders sets extra headers sent upstream.
func WithHeaders(headers map[string]string) Option {
	return func(r *Relay) { r.headers = headers }
}

// WithTimeout bounds each upstream call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger. Nil keeps logging disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRelay returns a relay to endpoint.
func NewRelay(endpoint string, opts ...Option) *Relay {
	r := &Relay{
		endpoint: endpoint,
		doer:     http.DefaultClient,
		timeout:  graphql.DefaultTimeout,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type relayRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type errorEntry struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorBody struct {
	Errors []errorEntry `json:"errors"`
}

// ServeHTTP answers OPTIONS preflights and relays POSTs.
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		rl.handleOptions(w)
	case http.MethodPost:
		rl.handlePost(w, r)
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeErrors(w, http.StatusMethodNotAllowed, errorEntry{Message: "method not allowed"})
	}
}

func (rl *Relay) handleOptions(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}

func (rl *Relay) handlePost(w http.ResponseWriter, r *http.Request) {
	var in relayRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&in); err != nil {
		rl.internalError(w, fmt.Errorf("decode request: %w", err))
		return
	}
	if in.Query == "" {
		writeErrors(w, http.StatusBadRequest, errorEntry{Message: "GraphQL query is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), rl.timeout)
	defer cancel()

	op := graphql.Operation{Query: in.Query, Variables: in.Variables}
	req, err := graphql.NewBuilder(rl.endpoint, op,
		graphql.WithBuilderHeaders(rl.headers),
		graphql.WithBuilderAuth(rl.auth),
	).Build(ctx)
	if err != nil {
		rl.internalError(w, err)
		return
	}

	resp, err := rl.doer.Do(req)
	if err != nil {
		rl.internalError(w, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		rl.internalError(w, err)
		return
	}

	if resp.StatusCode == http.StatusUnauthorized {
		rl.logger.Warn("upstream requires authentication", slog.String("endpoint", rl.endpoint))
		writeErrors(w, http.StatusUnauthorized, errorEntry{Message: authMessage, Details: authDetails})
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rl.logger.Error("upstream error", slog.Int("status", resp.StatusCode), slog.String("endpoint", rl.endpoint))
		writeErrors(w, resp.StatusCode, errorEntry{
			Message: fmt.Sprintf("GraphQL server error: %d %s", resp.StatusCode, statusText(resp)),
			Details: truncate(string(body), detailsLimit),
		})
		return
	}

	if !json.Valid(body) {
		rl.internalError(w, fmt.Errorf("upstream returned invalid JSON"))
		return
	}
	if hasErrors(body) {
		rl.logger.Warn("upstream returned graphql errors")
	}
	// GraphQL errors travel with a 200, as the protocol expects.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (rl *Relay) internalError(w http.ResponseWriter, err error) {
	rl.logger.Error("relay failed", slog.Any("error", err))
	writeErrors(w, http.StatusInternalServerError, errorEntry{Message: "Internal server error", Details: err.Error()})
}

func hasErrors(body []byte) bool {
	var probe struct {
		Errors json.RawMessage `json:"errors"`
	}
	return json.Unmarshal(body, &probe) == nil && len(probe.Errors) > 0 && string(probe.Errors) != "null"
}

func statusText(resp *http.Response) string {
	if len(resp.Status) > 4 && resp.Status[3] == ' ' {
		return resp.Status[4:]
	}
	return http.StatusText(resp.StatusCode)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func writeErrors(w http.ResponseWriter, status int, entries ...errorEntry) {
	writeJSON(w, status, errorBody{Errors: entries})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
