package auth

import (
	"net/http"

	"github.com/saturnines/blogql/pkg/errors"
)

// BearerAuth sends a static bearer token, e.g. a deployment protection
// bypass token.
type BearerAuth struct {
	Token string
}

func NewBearerAuth(token string) *BearerAuth {
	return &BearerAuth{Token: token}
}

// ApplyAuth sets the Authorization header.
func (b *BearerAuth) ApplyAuth(req *http.Request) error {
	if b.Token == "" {
		return errors.WrapError(ErrMissingCredentials, errors.ErrConfiguration, "apply bearer auth: token is required")
	}
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

func (b *BearerAuth) String() string {
	return "BearerAuth(token: [REDACTED])"
}
