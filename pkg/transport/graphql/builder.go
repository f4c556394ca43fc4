package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/saturnines/blogql/pkg/auth"
)

// Builder constructs GraphQL POST requests.
type Builder struct {
	Endpoint    string
	Query       string
	Variables   map[string]any
	Headers     map[string]string
	AuthHandler auth.Handler
	// CrossOrigin marks the request as a CORS fetch and sends Origin when set.
	CrossOrigin bool
	Origin      string
}

// NewBuilder sets up a Builder for op against endpoint.
func NewBuilder(endpoint string, op Operation, opts ...BuilderOption) *Builder {
	b := &Builder{
		Endpoint:  endpoint,
		Query:     op.Query,
		Variables: op.variables(),
	}
	b.ApplyOptions(opts...)
	return b
}

// Build creates the *http.Request with JSON body {query, variables}.
func (b *Builder) Build(ctx context.Context) (*http.Request, error) {
	vars := b.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	buf, err := json.Marshal(map[string]any{
		"query":     b.Query,
		"variables": vars,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	for k, v := range b.Headers {
		req.Header.Set(k, v)
	}
	setStandardHeaders(req.Header)
	if b.CrossOrigin {
		req.Header.Set("Sec-Fetch-Mode", "cors")
		if b.Origin != "" {
			req.Header.Set("Origin", b.Origin)
		}
	}
	if b.AuthHandler != nil {
		if err := b.AuthHandler.ApplyAuth(req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func setStandardHeaders(h http.Header) {
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("Cache-Control", "no-store")
}
