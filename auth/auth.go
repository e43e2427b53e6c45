// Package auth defines the identity provider the session layer relies on and
// a local provider backed by the document store.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnsupported        = errors.New("operation not supported by this identity provider")
)

// Identity is what a provider knows about a signed-in user.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Provider is an external identity service.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (string, Identity, error)
	Verify(ctx context.Context, token string) (Identity, error)
	SignOut(ctx context.Context, uid string) error
	// Delete removes an account, undoing a SignUp whose profile could not
	// be written. Deleting an absent account is not an error.
	Delete(ctx context.Context, id Identity) error
}
