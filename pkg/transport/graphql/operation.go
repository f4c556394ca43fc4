// Package graphql delivers GraphQL operations over HTTP and classifies the
// replies into the error kinds of pkg/errors.
package graphql

import (
	"context"
	"encoding/json"
)

// Operation is a single GraphQL query or mutation.
type Operation struct {
	Query     string
	Variables map[string]any
	OpName    string
}

// Transport delivers an Operation and returns the response's data object.
type Transport interface {
	Execute(ctx context.Context, op Operation) (json.RawMessage, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, op Operation) (json.RawMessage, error)

func (f TransportFunc) Execute(ctx context.Context, op Operation) (json.RawMessage, error) {
	return f(ctx, op)
}

// EmptyData is returned when a response carries neither data nor errors.
var EmptyData = json.RawMessage(`{}`)

func (op Operation) variables() map[string]any {
	if op.Variables == nil {
		return map[string]any{}
	}
	return op.Variables
}
