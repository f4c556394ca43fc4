package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure of the request pipeline.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindNetwork
	KindAuthentication
	KindGraphQL
	KindAPI
	KindHTTP
	KindNotFound
	KindValidation
	KindConfiguration
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindTimeout:        "timeout",
	KindNetwork:        "network",
	KindAuthentication: "authentication",
	KindGraphQL:        "graphql",
	KindAPI:            "api",
	KindHTTP:           "http",
	KindNotFound:       "not_found",
	KindValidation:     "validation",
	KindConfiguration:  "configuration",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Standard error types, one per kind. *Error matches the sentinel of its kind
// through errors.Is.
var (
	ErrTimeout        = errors.New("request timed out")
	ErrNetwork        = errors.New("network error")
	ErrAuthentication = errors.New("authentication error")
	ErrGraphQL        = errors.New("graphql error")
	ErrAPI            = errors.New("api error")
	ErrHTTP           = errors.New("HTTP response error")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrConfiguration  = errors.New("configuration error")
)

var sentinels = map[Kind]error{
	KindTimeout:        ErrTimeout,
	KindNetwork:        ErrNetwork,
	KindAuthentication: ErrAuthentication,
	KindGraphQL:        ErrGraphQL,
	KindAPI:            ErrAPI,
	KindHTTP:           ErrHTTP,
	KindNotFound:       ErrNotFound,
	KindValidation:     ErrValidation,
	KindConfiguration:  ErrConfiguration,
}

// AuthGuidance is attached to authentication errors raised to the caller.
const AuthGuidance = "The GraphQL server requires authentication.\n\n" +
	"The deployment may have access protection enabled.\n" +
	"Check the server settings, or provide a token if one is required."

// Error is a classified pipeline failure.
type Error struct {
	Kind     Kind
	Message  string
	Endpoint string // set for network failures
	Status   int    // HTTP status, when one was received
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Endpoint != "" {
		msg += "\n\nendpoint: " + e.Endpoint
	}
	if e.Err != nil && e.Message == "" {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Timeout reports a call that exceeded its deadline.
func Timeout(after fmt.Stringer, cause error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("request timed out (%s)", after),
		Err:     cause,
	}
}

// Network reports a transport failure against endpoint.
func Network(endpoint string, cause error) *Error {
	msg := "network error"
	if cause != nil {
		msg = "network error: " + cause.Error()
	}
	return &Error{Kind: KindNetwork, Message: msg, Endpoint: endpoint, Err: cause}
}

// Authentication reports that the server asked for credentials.
func Authentication(message string) *Error {
	if message == "" {
		message = AuthGuidance
	}
	return &Error{Kind: KindAuthentication, Message: message, Status: 401}
}

// NotFound reports an absent entity.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// HTTPStatus reports an unexpected HTTP status.
func HTTPStatus(code int, statusText, body string) *Error {
	msg := fmt.Sprintf("HTTP %d: %s", code, statusText)
	if body != "" {
		msg += "\n" + body
	}
	return &Error{Kind: KindHTTP, Message: msg, Status: code}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// WrapError wraps an error with a standard error type
func WrapError(err error, errType error, message string) error {
	wrapped := fmt.Errorf("%s: %w", message, err)
	return fmt.Errorf("%w: %v", errType, wrapped)
}

// Is provides a convenience wrapper around errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As provides a convenience wrapper around errors.As
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap provides a convenience wrapper around errors.Unwrap
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

const summaryLimit = 200

// Summary renders the short message shown to a user for err: one line,
// truncated, chosen by kind.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		msg := err.Error()
		if strings.Contains(msg, "fetch") || strings.Contains(msg, "connection refused") {
			return "Cannot connect to the GraphQL server."
		}
		return truncate(firstLine(msg))
	}

	switch e.Kind {
	case KindNotFound:
		return "The requested post was not found."
	case KindAuthentication:
		return truncate(firstLine(e.Message))
	case KindNetwork:
		if line := firstLine(e.Message); line != "" {
			return truncate(line)
		}
		return "Cannot connect to the GraphQL server."
	case KindHTTP:
		if line := firstLine(e.Message); line != "" {
			return truncate(line)
		}
		return "An HTTP error occurred."
	case KindGraphQL:
		return truncate(firstLine(strings.TrimPrefix(e.Message, "GraphQL Error: ")))
	case KindTimeout:
		return truncate(firstLine(e.Message))
	default:
		return truncate(firstLine(e.Error()))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= summaryLimit {
		return s
	}
	return string(r[:summaryLimit-3]) + "..."
}
