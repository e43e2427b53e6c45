package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Offer is a time-bounded discount rule. Expiry is derived from EndDate at
// read time and never stored.
type Offer struct {
	ID            string       `json:"id" firestore:"-"`
	Title         string       `json:"title" firestore:"title"`
	Description   string       `json:"description" firestore:"description"`
	DiscountType  DiscountType `json:"discountType" firestore:"discountType"`
	DiscountValue float64      `json:"discountValue" firestore:"discountValue"`
	StartDate     time.Time    `json:"startDate" firestore:"startDate"`
	EndDate       time.Time    `json:"endDate" firestore:"endDate"`
	IsActive      bool         `json:"isActive" firestore:"isActive"`
	CreatedAt     time.Time    `json:"createdAt" firestore:"createdAt"`
}

func (o *Offer) SetID(id string) { o.ID = id }

// IsExpired reports whether endDate is not after now. The stored isActive
// flag plays no part.
func IsExpired(endDate, now time.Time) bool {
	return !endDate.After(now)
}

func (o *Offer) IsExpired(now time.Time) bool {
	return IsExpired(o.EndDate, now)
}

// Applicable reports whether the offer can discount an order placed at now.
func (o *Offer) Applicable(now time.Time) bool {
	return o.IsActive && !now.Before(o.StartDate) && !o.IsExpired(now)
}

// Status is "upcoming" before startDate, "expired" from endDate on and
// "active" in between.
func (o *Offer) Status(now time.Time) string {
	switch {
	case o.IsExpired(now):
		return "expired"
	case now.Before(o.StartDate):
		return "upcoming"
	}
	return "active"
}

// DiscountFor returns the discount on amount, capped at amount and rounded to cents.
func (o *Offer) DiscountFor(amount decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch o.DiscountType {
	case DiscountPercentage:
		d = amount.Mul(decimal.NewFromFloat(o.DiscountValue)).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		d = decimal.NewFromFloat(o.DiscountValue)
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(amount) {
		d = amount
	}
	return d.Round(2)
}
