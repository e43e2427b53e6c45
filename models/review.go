package models

import "time"

// Review is created by a customer for a branch. Rating is 1..5.
type Review struct {
	ID           string    `json:"id" firestore:"-"`
	BranchID     string    `json:"branchId" firestore:"branchId"`
	CustomerID   string    `json:"customerId" firestore:"customerId"`
	CustomerName string    `json:"customerName" firestore:"customerName"`
	Rating       int       `json:"rating" firestore:"rating"`
	Comment      string    `json:"comment" firestore:"comment"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

func (r *Review) SetID(id string) { r.ID = id }
