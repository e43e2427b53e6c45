package models

import "encoding/json"

// CartItem is a snapshot of a product taken when it was added to a cart.
// Qty is always at least 1.
type CartItem struct {
	ProductID string  `json:"productId" firestore:"productId"`
	Title     string  `json:"title" firestore:"title"`
	Price     float64 `json:"price" firestore:"price"`
	Qty       int     `json:"qty" firestore:"qty"`
	ImageURL  string  `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Category  string  `json:"category,omitempty" firestore:"category,omitempty"`
}

// UnmarshalJSON also reads carts saved by the web client, which keyed items
// by the product document's "id".
func (c *CartItem) UnmarshalJSON(data []byte) error {
	type plain CartItem
	var v struct {
		plain
		LegacyID string `json:"id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.ProductID == "" {
		v.ProductID = v.LegacyID
	}
	*c = CartItem(v.plain)
	return nil
}
