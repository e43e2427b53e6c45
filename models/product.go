package models

import "time"

// Product is a global catalog entry. IsAvailable is independent of any
// branch's stock; StockQty is the legacy catalog-wide count.
type Product struct {
	ID              string    `json:"id" firestore:"-"`
	Title           string    `json:"title" firestore:"title"`
	Description     string    `json:"description" firestore:"description"`
	Price           float64   `json:"price" firestore:"price"`
	PreviousPrice   float64   `json:"previousPrice" firestore:"previousPrice"`
	Category        string    `json:"category" firestore:"category"`
	IsAvailable     bool      `json:"isAvailable" firestore:"isAvailable"`
	StockQty        int       `json:"stockQty" firestore:"stockQty"`
	ImageURL        string    `json:"imageUrl" firestore:"imageUrl"`
	PreparationTime int       `json:"preparationTime" firestore:"preparationTime"`
	Calories        int       `json:"calories" firestore:"calories"`
	Ingredients     string    `json:"ingredients,omitempty" firestore:"ingredients,omitempty"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (p *Product) SetID(id string) { p.ID = id }
