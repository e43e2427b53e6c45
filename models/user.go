package models

import "time"

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleBranchManager Role = "branchManager"
	RoleCustomer      Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBranchManager, RoleCustomer:
		return true
	}
	return false
}

// User is the profile record stored at users/{uid}. The role is fixed at creation.
type User struct {
	UID       string    `json:"uid" firestore:"uid,omitempty"`
	Email     string    `json:"email" firestore:"email"`
	Role      Role      `json:"role" firestore:"role"`
	BranchID  string    `json:"branchId,omitempty" firestore:"branchId,omitempty"`
	FullName  string    `json:"fullName,omitempty" firestore:"fullName,omitempty"`
	Phone     string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	// Disabled is only ever set explicitly; profiles without it may sign in.
	Disabled  bool      `json:"disabled,omitempty" firestore:"disabled,omitempty"`
}

func (u *User) SetID(id string) { u.UID = id }
