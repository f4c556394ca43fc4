package graphql

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/saturnines/blogql/pkg/errors"
)

// ErrorEntry is one element of a response's "errors" list. Relays add a
// free-form details field next to the message.
type ErrorEntry struct {
	Message    string          `json:"message,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	Extensions map[string]any  `json:"extensions,omitempty"`
}

// Response is the decoded body of a GraphQL-over-HTTP reply, including the
// bare error shape produced by relays.
type Response struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []ErrorEntry    `json:"errors,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// authMarkers are substrings that mark an error message as an
// authentication demand. The last one is the Japanese word used by the
// blog server.
var authMarkers = []string{"401", "Unauthorized", "認証"}

// IsAuthMessage reports whether msg indicates missing credentials.
func IsAuthMessage(msg string) bool {
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// decodeResponse turns a 2xx body into data or a classified error.
func decodeResponse(body []byte, logger *slog.Logger) (json.RawMessage, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(errors.KindUnknown, err, "invalid JSON response: "+err.Error())
	}
	return resp.result(logger)
}

func (r *Response) result(logger *slog.Logger) (json.RawMessage, error) {
	if len(r.Errors) > 0 {
		return nil, errorsToError(r.Errors)
	}

	if present(r.Error) {
		text := rawText(r.Error)
		if IsAuthMessage(text) {
			return nil, errors.Authentication("")
		}
		msg := "API Error: " + text
		if present(r.Details) {
			msg += " - " + rawText(r.Details)
		}
		return nil, errors.New(errors.KindAPI, msg)
	}

	if !present(r.Data) {
		logger.Warn("graphql response carried no data")
		return EmptyData, nil
	}
	return r.Data, nil
}

// errorsToError classifies a non-empty errors list.
func errorsToError(entries []ErrorEntry) error {
	messages := make([]string, 0, len(entries))
	for _, e := range entries {
		if IsAuthMessage(e.Message) {
			return errors.Authentication("")
		}
		switch {
		case e.Message != "":
			messages = append(messages, e.Message)
		case present(e.Details):
			messages = append(messages, rawText(e.Details))
		default:
			messages = append(messages, "Unknown error")
		}
	}
	err := errors.New(errors.KindGraphQL, "GraphQL Error: "+strings.Join(messages, ", "))
	if hasCode(entries, "NOT_FOUND") {
		err.Kind = errors.KindNotFound
	}
	return err
}

func hasCode(entries []ErrorEntry, code string) bool {
	for _, e := range entries {
		if c, ok := e.Extensions["code"].(string); ok && c == code {
			return true
		}
	}
	return false
}

func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null" && s != "false" && s != `""`
}

// rawText renders a JSON value for a message: strings unquoted, anything
// else as compact JSON.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
