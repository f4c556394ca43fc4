package auth

import (
	"fmt"
	"net/http"

	"github.com/saturnines/blogql/pkg/errors"
)

var ErrMissingCredentials = fmt.Errorf("missing credentials")

// Handler decorates an outbound GraphQL request with credentials.
type Handler interface {
	ApplyAuth(req *http.Request) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(req *http.Request) error

func (f HandlerFunc) ApplyAuth(req *http.Request) error { return f(req) }

// Chain applies each handler in order and stops at the first error.
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(req *http.Request) error {
		for _, h := range handlers {
			if h == nil {
				continue
			}
			if err := h.ApplyAuth(req); err != nil {
				return err
			}
		}
		return nil
	})
}

// APIKeyAuth sends a static key as a header, a query parameter, or both.
type APIKeyAuth struct {
	HeaderName string
	QueryParam string
	Value      string
}

// NewAPIKeyAuth creates an API key handler.
func NewAPIKeyAuth(headerName, queryParam, value string) *APIKeyAuth {
	return &APIKeyAuth{
		HeaderName: headerName,
		QueryParam: queryParam,
		Value:      value,
	}
}

// ApplyAuth adds the API key to the request
func (a *APIKeyAuth) ApplyAuth(req *http.Request) error {
	if a.Value == "" {
		return errors.WrapError(ErrMissingCredentials, errors.ErrConfiguration, "API key value is required")
	}
	if a.HeaderName == "" && a.QueryParam == "" {
		return errors.WrapError(
			fmt.Errorf("API key auth requires either header name or query parameter name"),
			errors.ErrConfiguration,
			"apply API key auth",
		)
	}

	if a.HeaderName != "" {
		req.Header.Set(a.HeaderName, a.Value)
	}
	if a.QueryParam != "" {
		query := req.URL.Query()
		query.Set(a.QueryParam, a.Value)
		req.URL.RawQuery = query.Encode()
	}
	return nil
}

func (a *APIKeyAuth) String() string {
	if a.HeaderName != "" {
		return fmt.Sprintf("APIKeyAuth(header: %s)", a.HeaderName)
	}
	return fmt.Sprintf("APIKeyAuth(query: %s)", a.QueryParam)
}
