package models

import "time"

// Branch is a restaurant location. Every branch is paired with exactly one
// branchManager user whose branchId points back at it.
type Branch struct {
	ID             string    `json:"id" firestore:"-"`
	BranchName     string    `json:"branchName" firestore:"branchName"`
	ManagerID      string    `json:"managerId" firestore:"managerId"`
	ManagerName    string    `json:"managerName" firestore:"managerName"`
	Email          string    `json:"email" firestore:"email"`
	Phone          string    `json:"phone" firestore:"phone"`
	Address        string    `json:"address" firestore:"address"`
	City           string    `json:"city" firestore:"city"`
	State          string    `json:"state" firestore:"state"`
	ZipCode        string    `json:"zipCode" firestore:"zipCode"`
	BranchImageURL string    `json:"branchImageUrl,omitempty" firestore:"branchImageUrl,omitempty"`
	IsActive       bool      `json:"isActive" firestore:"isActive"`
	TotalOrders    int       `json:"totalOrders" firestore:"totalOrders"`
	TotalRevenue   float64   `json:"totalRevenue" firestore:"totalRevenue"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
}

func (b *Branch) SetID(id string) { b.ID = id }
