package models

import "time"

// Employee belongs to one branch and is managed by that branch's manager.
type Employee struct {
	ID        string    `json:"id" firestore:"-"`
	BranchID  string    `json:"branchId" firestore:"branchId"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email,omitempty" firestore:"email,omitempty"`
	Phone     string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Role      string    `json:"role" firestore:"role"`
	Status    string    `json:"status" firestore:"status"`
	HiredDate string    `json:"hiredDate,omitempty" firestore:"hiredDate,omitempty"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (e *Employee) SetID(id string) { e.ID = id }

const (
	EmployeeActive   = "active"
	EmployeeInactive = "inactive"
)

var EmployeeRoles = []string{"waiter", "cashier", "chef", "manager"}
