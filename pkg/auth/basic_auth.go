package auth

import (
	"fmt"
	"net/http"

	"github.com/saturnines/blogql/pkg/errors"
)

// BasicAuth sends HTTP basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{Username: username, Password: password}
}

// ApplyAuth sets the basic auth header. An empty password is allowed.
func (b *BasicAuth) ApplyAuth(req *http.Request) error {
	if b.Username == "" {
		return errors.WrapError(ErrMissingCredentials, errors.ErrConfiguration, "apply basic auth: username is required")
	}
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

func (b *BasicAuth) String() string {
	return fmt.Sprintf("BasicAuth(username: %s)", b.Username)
}
