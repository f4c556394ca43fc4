package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnines/blogql/pkg/auth"
)

type upstreamRequest struct {
	header http.Header
	body   map[string]any
}

func newUpstream(t *testing.T, status int, body string, seen *upstreamRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen.header = r.Header.Clone()
			require.NoError(t, json.NewDecoder(r.Body).Decode(&seen.body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var out errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Errors)
	return out
}

func TestRelayForwardsSuccess(t *testing.T) {
	var seen upstreamRequest
	upstream := newUpstream(t, http.StatusOK, `{"data":{"posts":[]}}`, &seen)

	relay := NewRelay(upstream.URL, WithAuthHandler(auth.NewBearerAuth("bypass")))
	rec := post(t, relay, `{"query":"query GetPosts { posts { id } }"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"posts":[]}}`, rec.Body.String())

	assert.Equal(t, "application/json", seen.header.Get("Content-Type"))
	assert.Equal(t, "application/json", seen.header.Get("Accept"))
	assert.Equal(t, "no-store", seen.header.Get("Cache-Control"))
	assert.Equal(t, "Bearer bypass", seen.header.Get("Authorization"))
	assert.Equal(t, "query GetPosts { posts { id } }", seen.body["query"])
	assert.Equal(t, map[string]any{}, seen.body["variables"])
}

func TestRelayForwardsVariables(t *testing.T) {
	var seen upstreamRequest
	upstream := newUpstream(t, http.StatusOK, `{"data":{"post":null}}`, &seen)

	rec := post(t, NewRelay(upstream.URL, WithHeaders(map[string]string{"X-Trace": "1"})),
		`{"query":"query GetPost($id: ID!) { post(id: $id) { id } }","variables":{"id":"42"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"id": "42"}, seen.body["variables"])
	assert.Equal(t, "1", seen.header.Get("X-Trace"))
}

func TestRelayGraphQLErrorsPassThrough(t *testing.T) {
	upstream := newUpstream(t, http.StatusOK, `{"errors":[{"message":"bad field"}]}`, nil)

	rec := post(t, NewRelay(upstream.URL), `{"query":"{ nope }"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"errors":[{"message":"bad field"}]}`, rec.Body.String())
}

func TestRelayMissingQuery(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer upstream.Close()

	rec := post(t, NewRelay(upstream.URL), `{"variables":{}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "GraphQL query is required", decodeErrors(t, rec).Errors[0].Message)
	assert.False(t, called)
}

func TestRelayUpstreamUnauthorized(t *testing.T) {
	upstream := newUpstream(t, http.StatusUnauthorized, `Authentication Required`, nil)

	rec := post(t, NewRelay(upstream.URL), `{"query":"{ posts { id } }"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	out := decodeErrors(t, rec)
	assert.Contains(t, out.Errors[0].Message, "requires authentication")
	assert.NotEmpty(t, out.Errors[0].Details)
}

func TestRelayUpstreamServerError(t *testing.T) {
	upstream := newUpstream(t, http.StatusBadGateway, strings.Repeat("x", 500), nil)

	rec := post(t, NewRelay(upstream.URL), `{"query":"{ posts { id } }"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	out := decodeErrors(t, rec)
	assert.Equal(t, "GraphQL server error: 502 Bad Gateway", out.Errors[0].Message)
	assert.Len(t, out.Errors[0].Details, detailsLimit)
}

func TestRelayInternalErrors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		rec := post(t, NewRelay("http://127.0.0.1:1"), `{not json`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", decodeErrors(t, rec).Errors[0].Message)
	})

	t.Run("upstream unreachable", func(t *testing.T) {
		upstream := httptest.NewServer(http.NotFoundHandler())
		addr := upstream.URL
		upstream.Close()

		rec := post(t, NewRelay(addr), `{"query":"{ posts { id } }"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		out := decodeErrors(t, rec)
		assert.Equal(t, "Internal server error", out.Errors[0].Message)
		assert.NotEmpty(t, out.Errors[0].Details)
	})

	t.Run("upstream not json", func(t *testing.T) {
		upstream := newUpstream(t, http.StatusOK, `<html></html>`, nil)
		rec := post(t, NewRelay(upstream.URL), `{"query":"{ posts { id } }"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRelayOptions(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/graphql", nil)
	rec := httptest.NewRecorder()
	NewRelay("http://unused").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestRelayRejectsOtherMethods(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/graphql", nil)
	rec := httptest.NewRecorder()
	NewRelay("http://unused").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Allow"))
}
