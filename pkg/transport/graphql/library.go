package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	genqlient "github.com/Khan/genqlient/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/saturnines/blogql/pkg/auth"
	"github.com/saturnines/blogql/pkg/errors"
)

// LibraryTransport executes operations through the genqlient client. It
// posts to the same endpoint as the fetch transport and classifies replies
// the same way.
type LibraryTransport struct {
	endpoint string
	settings
}

// NewLibraryTransport returns a genqlient-backed transport for endpoint.
func NewLibraryTransport(endpoint string, opts ...Option) *LibraryTransport {
	return &LibraryTransport{endpoint: endpoint, settings: newSettings(opts)}
}

// Endpoint returns the URL operations are posted to.
func (t *LibraryTransport) Endpoint() string {
	return t.endpoint
}

// Execute sends op through graphql.Client.MakeRequest.
func (t *LibraryTransport) Execute(ctx context.Context, op Operation) (json.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	rec := &recordingDoer{next: t.doer, headers: t.headers, auth: t.authHandler}
	client := genqlient.NewClient(t.endpoint, rec)

	var data json.RawMessage
	resp := &genqlient.Response{Data: &data}
	err := client.MakeRequest(callCtx, &genqlient.Request{
		Query:     op.Query,
		Variables: op.variables(),
		OpName:    op.OpName,
	}, resp)

	if rec.authErr != nil {
		return nil, errors.Wrap(errors.KindConfiguration, rec.authErr, "build request: "+rec.authErr.Error())
	}
	if !rec.responded {
		if err == nil {
			err = errors.New(errors.KindUnknown, "no response")
		}
		return nil, transportError(t.endpoint, t.timeout, ctx, callCtx, err)
	}
	if rec.readErr != nil {
		return nil, transportError(t.endpoint, t.timeout, ctx, callCtx, rec.readErr)
	}
	if rec.status < 200 || rec.status > 299 {
		return nil, statusError(rec.status, rec.statusLine, rec.body, false)
	}

	var list gqlerror.List
	if errors.As(err, &list) && len(list) > 0 {
		return nil, errorsToError(fromGQLErrors(list))
	}
	if err == nil && present(data) {
		return data, nil
	}
	// Bare error shapes and empty payloads are not understood by the
	// library; fall back to the shared decoder on the recorded body.
	return decodeResponse(rec.body, t.logger)
}

func fromGQLErrors(list gqlerror.List) []ErrorEntry {
	entries := make([]ErrorEntry, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		entries = append(entries, ErrorEntry{Message: e.Message, Extensions: e.Extensions})
	}
	return entries
}

// recordingDoer decorates the library's requests with the standard headers
// and credentials and keeps a copy of the reply for classification.
type recordingDoer struct {
	next    HTTPDoer
	headers map[string]string
	auth    auth.Handler

	responded  bool
	status     int
	statusLine string
	body       []byte
	readErr    error
	authErr    error
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}
	setStandardHeaders(req.Header)
	if d.auth != nil {
		if err := d.auth.ApplyAuth(req); err != nil {
			d.authErr = err
			return nil, err
		}
	}

	resp, err := d.next.Do(req)
	if err != nil {
		return nil, err
	}
	d.responded = true
	d.status = resp.StatusCode
	d.statusLine = resp.Status

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	resp.Body.Close()
	if err != nil {
		d.readErr = err
		return nil, err
	}
	d.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
