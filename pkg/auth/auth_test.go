package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/saturnines/blogql/pkg/config"
	"github.com/saturnines/blogql/pkg/errors"
)

func assertHeader(t *testing.T, req *http.Request, header, expected string) {
	t.Helper()
	if value := req.Header.Get(header); value != expected {
		t.Errorf("Expected %s header '%s', got '%s'", header, expected, value)
	}
}

func assertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected error containing '%s', got nil", expected)
		return
	}
	if !strings.Contains(err.Error(), expected) {
		t.Errorf("Expected error containing '%s', got '%s'", expected, err.Error())
	}
}

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "https://blog.example.com/api/graphql", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func TestAPIKeyAuth(t *testing.T) {
	t.Run("HeaderAndQuery", func(t *testing.T) {
		req := newRequest(t)
		if err := NewAPIKeyAuth("X-API-Key", "key", "secret").ApplyAuth(req); err != nil {
			t.Fatalf("ApplyAuth failed: %v", err)
		}
		assertHeader(t, req, "X-API-Key", "secret")
		if got := req.URL.Query().Get("key"); got != "secret" {
			t.Errorf("Expected query key 'secret', got '%s'", got)
		}
	})

	t.Run("MissingValue", func(t *testing.T) {
		err := NewAPIKeyAuth("X-API-Key", "", "").ApplyAuth(newRequest(t))
		assertErrorContains(t, err, "API key value is required")
		if !errors.Is(err, errors.ErrConfiguration) {
			t.Errorf("Expected configuration error, got %v", err)
		}
	})

	t.Run("MissingLocation", func(t *testing.T) {
		err := NewAPIKeyAuth("", "", "secret").ApplyAuth(newRequest(t))
		assertErrorContains(t, err, "requires either header name or query parameter name")
	})
}

func TestBasicAuth(t *testing.T) {
	req := newRequest(t)
	if err := NewBasicAuth("writer", "pw").ApplyAuth(req); err != nil {
		t.Fatalf("ApplyAuth failed: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString([]byte("writer:pw"))
	assertHeader(t, req, "Authorization", "Basic "+encoded)

	assertErrorContains(t, NewBasicAuth("", "pw").ApplyAuth(newRequest(t)), "username is required")
}

func TestBearerAuth(t *testing.T) {
	req := newRequest(t)
	if err := NewBearerAuth("bypass-token").ApplyAuth(req); err != nil {
		t.Fatalf("ApplyAuth failed: %v", err)
	}
	assertHeader(t, req, "Authorization", "Bearer bypass-token")

	if s := NewBearerAuth("bypass-token").String(); strings.Contains(s, "bypass-token") {
		t.Errorf("String() leaked the token: %s", s)
	}
	assertErrorContains(t, NewBearerAuth("").ApplyAuth(newRequest(t)), "token is required")
}

func TestChainStopsAtFirstError(t *testing.T) {
	var calls int
	counting := HandlerFunc(func(*http.Request) error { calls++; return nil })

	h := Chain(counting, nil, NewBearerAuth(""), counting)
	err := h.ApplyAuth(newRequest(t))

	assertErrorContains(t, err, "token is required")
	if calls != 1 {
		t.Errorf("Expected 1 call before the failing handler, got %d", calls)
	}
}

func TestRegistryCreate(t *testing.T) {
	registry := NewAuthRegistry()

	tests := []struct {
		name    string
		cfg     *config.Auth
		header  string
		wantErr string
	}{
		{name: "nil config", cfg: nil},
		{
			name:   "bearer",
			cfg:    &config.Auth{Type: config.AuthTypeBearer, Bearer: &config.BearerAuth{Token: "t"}},
			header: "Bearer t",
		},
		{
			name:   "basic",
			cfg:    &config.Auth{Type: config.AuthTypeBasic, Basic: &config.BasicAuth{Username: "u", Password: "p"}},
			header: "Basic " + base64.StdEncoding.EncodeToString([]byte("u:p")),
		},
		{
			name:    "missing block",
			cfg:     &config.Auth{Type: config.AuthTypeBearer},
			wantErr: "bearer configuration is required",
		},
		{
			name:    "unknown type",
			cfg:     &config.Auth{Type: "oauth2"},
			wantErr: "unsupported auth type: oauth2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := registry.Create(tc.cfg)
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if tc.cfg == nil {
				if h != nil {
					t.Errorf("Expected nil handler for nil config")
				}
				return
			}
			req := newRequest(t)
			if err := h.ApplyAuth(req); err != nil {
				t.Fatalf("ApplyAuth failed: %v", err)
			}
			assertHeader(t, req, "Authorization", tc.header)
		})
	}
}

func TestRegisterCustomCreator(t *testing.T) {
	registry := NewAuthRegistry()
	registry.Register("static", func(*config.Auth) (Handler, error) {
		return HandlerFunc(func(req *http.Request) error {
			req.Header.Set("X-Static", "1")
			return nil
		}), nil
	})

	h, err := registry.Create(&config.Auth{Type: "static"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	req := newRequest(t)
	if err := h.ApplyAuth(req); err != nil {
		t.Fatalf("ApplyAuth failed: %v", err)
	}
	assertHeader(t, req, "X-Static", "1")
}
