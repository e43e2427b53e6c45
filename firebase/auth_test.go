package firebase

import (
	"context"
	"errors"
	"testing"

	"restochain-backend/auth"

	fbauth "firebase.google.com/go/auth"
)

type fakeIdentityClient struct {
	createUserFn func(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	verifyFn     func(ctx context.Context, idToken string) (*fbauth.Token, error)
	revoked      []string
	deleted      []string
	deleteErr    error
}

func (f *fakeIdentityClient) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return f.deleteErr
}

func (f *fakeIdentityClient) CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	return f.createUserFn(ctx, user)
}

func (f *fakeIdentityClient) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error) {
	return f.verifyFn(ctx, idToken)
}

func (f *fakeIdentityClient) RevokeRefreshTokens(_ context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

func TestFirebaseSignUp(t *testing.T) {
	fake := &fakeIdentityClient{
		createUserFn: func(context.Context, *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
			return &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{UID: "fb-uid", Email: "a@b.com"}}, nil
		},
	}
	p := &AuthProvider{client: fake}

	id, err := p.SignUp(context.Background(), "A@B.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if id.UID != "fb-uid" || id.Email != "a@b.com" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestFirebaseSignInUnsupported(t *testing.T) {
	p := &AuthProvider{client: &fakeIdentityClient{}}
	if _, _, err := p.SignIn(context.Background(), "a@b.com", "x"); !errors.Is(err, auth.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestFirebaseVerify(t *testing.T) {
	fake := &fakeIdentityClient{
		verifyFn: func(_ context.Context, token string) (*fbauth.Token, error) {
			if token != "good" {
				return nil, errors.New("bad token")
			}
			return &fbauth.Token{UID: "fb-uid", Claims: map[string]interface{}{"email": "a@b.com"}}, nil
		},
	}
	p := &AuthProvider{client: fake}

	id, err := p.Verify(context.Background(), "good")
	if err != nil {
		t.Fatal(err)
	}
	if id.UID != "fb-uid" || id.Email != "a@b.com" {
		t.Errorf("unexpected identity %+v", id)
	}
	if _, err := p.Verify(context.Background(), "bad"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestFirebaseSignOutRevokes(t *testing.T) {
	fake := &fakeIdentityClient{}
	p := &AuthProvider{client: fake}
	if err := p.SignOut(context.Background(), "fb-uid"); err != nil {
		t.Fatal(err)
	}
	if len(fake.revoked) != 1 || fake.revoked[0] != "fb-uid" {
		t.Errorf("expected fb-uid revoked, got %v", fake.revoked)
	}
}

func TestFirebaseDelete(t *testing.T) {
	fake := &fakeIdentityClient{}
	p := &AuthProvider{client: fake}
	if err := p.Delete(context.Background(), auth.Identity{UID: "fb-uid"}); err != nil {
		t.Fatal(err)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "fb-uid" {
		t.Errorf("expected fb-uid deleted, got %v", fake.deleted)
	}

	fake.deleteErr = errors.New("unavailable")
	if err := p.Delete(context.Background(), auth.Identity{UID: "fb-uid"}); err == nil {
		t.Error("expected delete error to surface")
	}
}
