package firebase

import (
	"context"
	"fmt"
	"strings"

	"restochain-backend/auth"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
)

type identityClient interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	DeleteUser(ctx context.Context, uid string) error
}

// AuthProvider delegates identity to Firebase Authentication. Users sign in
// with the Firebase client SDK and present the resulting ID token.
type AuthProvider struct {
	client identityClient
}

var _ auth.Provider = (*AuthProvider)(nil)

func NewAuthProvider(ctx context.Context, app *firebase.App) (*AuthProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open firebase auth: %w", err)
	}
	return &AuthProvider{client: client}, nil
}

func (p *AuthProvider) SignUp(ctx context.Context, email, password string) (auth.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	record, err := p.client.CreateUser(ctx, params)
	if fbauth.IsEmailAlreadyExists(err) {
		return auth.Identity{}, auth.ErrEmailTaken
	}
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{UID: record.UID, Email: record.Email}, nil
}

func (p *AuthProvider) SignIn(context.Context, string, string) (string, auth.Identity, error) {
	return "", auth.Identity{}, auth.ErrUnsupported
}

func (p *AuthProvider) Verify(ctx context.Context, token string) (auth.Identity, error) {
	decoded, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	email, _ := decoded.Claims["email"].(string)
	return auth.Identity{UID: decoded.UID, Email: email}, nil
}

func (p *AuthProvider) SignOut(ctx context.Context, uid string) error {
	return p.client.RevokeRefreshTokens(ctx, uid)
}

func (p *AuthProvider) Delete(ctx context.Context, id auth.Identity) error {
	err := p.client.DeleteUser(ctx, id.UID)
	if fbauth.IsUserNotFound(err) {
		return nil
	}
	return err
}
