// Package session turns a verified identity into the role-bearing session
// the rest of the service works with.
package session

import (
	"errors"
	"fmt"

	"restochain-backend/auth"
	"restochain-backend/cart"
	"restochain-backend/models"
)

type State string

const (
	Loading       State = "loading"
	Anonymous     State = "anonymous"
	Admin         State = "admin"
	BranchManager State = "branchManager"
	Customer      State = "customer"
)

// Policy decides what happens to a signed-in user whose profile is missing
// or carries no known role.
type Policy string

const (
	PolicyDeny     Policy = "deny"
	PolicyCustomer Policy = "customer"
)

var (
	ErrNoProfile       = errors.New("no profile with a known role for this account")
	ErrAccountDisabled = errors.New("account is disabled")
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyDeny, PolicyCustomer:
		return Policy(s), nil
	case "":
		return PolicyDeny, nil
	}
	return "", fmt.Errorf("unknown role fallback policy %q", s)
}

// StateFor maps a stored role to its session state.
func StateFor(role models.Role) State {
	switch role {
	case models.RoleAdmin:
		return Admin
	case models.RoleBranchManager:
		return BranchManager
	case models.RoleCustomer:
		return Customer
	}
	return Anonymous
}

// Authenticated reports whether s belongs to a signed-in user with a role.
func (s State) Authenticated() bool {
	return s == Admin || s == BranchManager || s == Customer
}

// Resolve derives the session state from a verified identity and the result
// of looking up its profile. A nil identity is Anonymous. lookupErr covers
// both a missing profile and a failed read; either way the policy decides.
func Resolve(identity *auth.Identity, profile *models.User, lookupErr error, policy Policy) (State, error) {
	if identity == nil {
		return Anonymous, nil
	}
	if lookupErr == nil && profile != nil && profile.Role.Valid() {
		if profile.Disabled {
			return Anonymous, ErrAccountDisabled
		}
		return StateFor(profile.Role), nil
	}
	if policy == PolicyCustomer {
		return Customer, nil
	}
	if lookupErr != nil {
		return Anonymous, fmt.Errorf("%w: %v", ErrNoProfile, lookupErr)
	}
	return Anonymous, ErrNoProfile
}

// Session is one signed-in user's server-side state. Identity fields are
// fixed for the life of the session; the cart has its own lock.
type Session struct {
	UID      string      `json:"uid"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	BranchID string      `json:"branchId,omitempty"`
	FullName string      `json:"fullName,omitempty"`
	State    State       `json:"state"`

	Cart *cart.Ledger `json:"-"`
}
