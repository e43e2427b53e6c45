package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"restochain-backend/docstore"
	"restochain-backend/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type credential struct {
	UID          string    `json:"uid" firestore:"uid"`
	Email        string    `json:"email" firestore:"email"`
	PasswordHash string    `json:"passwordHash" firestore:"passwordHash"`
	Epoch        int       `json:"epoch" firestore:"epoch"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

// LocalProvider keeps bcrypt password hashes in the credentials collection,
// keyed by lower-cased email, and issues HS256 tokens.
type LocalProvider struct {
	store docstore.Store
}

func NewLocalProvider(store docstore.Store) *LocalProvider {
	return &LocalProvider{store: store}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, err
	}
	id := Identity{UID: uuid.NewString(), Email: email}
	path := docstore.Doc(docstore.Credentials, email)

	err = p.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		var existing credential
		err := tx.Get(path, &existing)
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		return tx.Set(path, &credential{
			UID:          id.UID,
			Email:        email,
			PasswordHash: string(hash),
			CreatedAt:    time.Now().UTC(),
		})
	})
	if err != nil {
		return Identity{}, err
	}
	return id, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (string, Identity, error) {
	email = normalizeEmail(email)
	var cred credential
	err := p.store.Get(ctx, docstore.Doc(docstore.Credentials, email), &cred)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", Identity{}, ErrInvalidCredentials
	}
	token, err := utils.GenerateToken(cred.UID, cred.Email, cred.Epoch)
	if err != nil {
		return "", Identity{}, err
	}
	return token, Identity{UID: cred.UID, Email: cred.Email}, nil
}

func (p *LocalProvider) Verify(ctx context.Context, token string) (Identity, error) {
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	var cred credential
	err = p.store.Get(ctx, docstore.Doc(docstore.Credentials, claims.Email), &cred)
	if errors.Is(err, docstore.ErrNotFound) {
		return Identity{}, ErrInvalidToken
	}
	if err != nil {
		return Identity{}, err
	}
	if cred.UID != claims.UserID || cred.Epoch != claims.Epoch {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UID: cred.UID, Email: cred.Email}, nil
}

// Delete drops the credential, freeing the email for a new sign-up. A
// credential that now belongs to another uid is left alone.
func (p *LocalProvider) Delete(ctx context.Context, id Identity) error {
	path := docstore.Doc(docstore.Credentials, normalizeEmail(id.Email))
	var cred credential
	err := p.store.Get(ctx, path, &cred)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if cred.UID != id.UID {
		return nil
	}
	return p.store.Delete(ctx, path)
}

// SignOut invalidates every token issued to uid so far.
func (p *LocalProvider) SignOut(ctx context.Context, uid string) error {
	var creds []credential
	if err := p.store.Where(ctx, docstore.Credentials, "uid", uid, &creds); err != nil {
		return err
	}
	if len(creds) == 0 {
		return nil
	}
	path := docstore.Doc(docstore.Credentials, creds[0].Email)
	return p.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		var cred credential
		if err := tx.Get(path, &cred); err != nil {
			return err
		}
		return tx.Merge(path, map[string]any{"epoch": cred.Epoch + 1})
	})
}
