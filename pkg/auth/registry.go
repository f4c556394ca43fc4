package auth

import (
	"fmt"
	"sync"

	"github.com/saturnines/blogql/pkg/config"
	"github.com/saturnines/blogql/pkg/errors"
)

// AuthCreator builds a handler from its config block.
type AuthCreator func(*config.Auth) (Handler, error)

// AuthRegistry maps auth types to creators.
type AuthRegistry struct {
	creators map[config.AuthType]AuthCreator
	mutex    sync.RWMutex
}

// NewAuthRegistry returns a registry with basic, api_key and bearer registered.
func NewAuthRegistry() *AuthRegistry {
	registry := &AuthRegistry{
		creators: make(map[config.AuthType]AuthCreator),
	}
	registry.Register(config.AuthTypeBasic, createBasicAuth)
	registry.Register(config.AuthTypeAPIKey, createAPIKeyAuth)
	registry.Register(config.AuthTypeBearer, createBearerAuth)
	return registry
}

func (r *AuthRegistry) Register(authType config.AuthType, creator AuthCreator) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.creators[authType] = creator
}

// Create builds the handler for authConfig. A nil config yields a nil
// handler, meaning requests go out without credentials.
func (r *AuthRegistry) Create(authConfig *config.Auth) (Handler, error) {
	if authConfig == nil {
		return nil, nil
	}

	r.mutex.RLock()
	creator, exists := r.creators[authConfig.Type]
	r.mutex.RUnlock()

	if !exists {
		return nil, errors.WrapError(
			fmt.Errorf("unsupported auth type: %s", authConfig.Type),
			errors.ErrConfiguration,
			"invalid auth type",
		)
	}
	return creator(authConfig)
}

func createBasicAuth(authConfig *config.Auth) (Handler, error) {
	if authConfig.Basic == nil {
		return nil, missingBlock("basic")
	}
	return NewBasicAuth(authConfig.Basic.Username, authConfig.Basic.Password), nil
}

func createAPIKeyAuth(authConfig *config.Auth) (Handler, error) {
	if authConfig.APIKey == nil {
		return nil, missingBlock("api_key")
	}
	return NewAPIKeyAuth(authConfig.APIKey.Header, authConfig.APIKey.QueryParam, authConfig.APIKey.Value), nil
}

func createBearerAuth(authConfig *config.Auth) (Handler, error) {
	if authConfig.Bearer == nil {
		return nil, missingBlock("bearer")
	}
	return NewBearerAuth(authConfig.Bearer.Token), nil
}

func missingBlock(name string) error {
	return errors.WrapError(
		fmt.Errorf("%s configuration is required", name),
		errors.ErrConfiguration,
		"create "+name+" auth",
	)
}
