package models

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is created at checkout. Items are copied by value from the cart,
// so later catalog changes never reach a placed order.
type Order struct {
	ID              string      `json:"id" firestore:"-"`
	CustomerID      string      `json:"customerId" firestore:"customerId"`
	BranchID        string      `json:"branchId" firestore:"branchId"`
	CustomerName    string      `json:"customerName" firestore:"customerName"`
	CustomerContact string      `json:"customerContact" firestore:"customerContact"`
	CustomerEmail   string      `json:"customerEmail,omitempty" firestore:"customerEmail,omitempty"`
	Items           []CartItem  `json:"items" firestore:"items"`
	Subtotal        float64     `json:"subtotal" firestore:"subtotal"`
	Discount        float64     `json:"discount,omitempty" firestore:"discount,omitempty"`
	OfferID         string      `json:"offerId,omitempty" firestore:"offerId,omitempty"`
	Total           float64     `json:"total" firestore:"total"`
	Status          OrderStatus `json:"status" firestore:"status"`
	CreatedAt       time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

func (o *Order) SetID(id string) { o.ID = id }

// AllowedTransitions defines the valid order status state machine.
var AllowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

var ErrInvalidTransition = errors.New("invalid order status transition")

type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := AllowedTransitions[s]
	return ok
}

// Terminal reports whether no further transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(AllowedTransitions[s]) == 0
}

// IsValidTransition checks if a status transition is allowed.
func IsValidTransition(from, to OrderStatus) bool {
	allowed, exists := AllowedTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition returns the next status or a *TransitionError.
func Transition(from, to OrderStatus) (OrderStatus, error) {
	if !IsValidTransition(from, to) {
		return from, &TransitionError{From: from, To: to}
	}
	return to, nil
}
