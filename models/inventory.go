package models

import "time"

type StockMode string

const (
	StockAdd    StockMode = "add"
	StockRemove StockMode = "remove"
	StockSet    StockMode = "set"
)

type StockLevel string

const (
	LevelInStock    StockLevel = "in_stock"
	LevelLowStock   StockLevel = "low_stock"
	LevelOutOfStock StockLevel = "out_of_stock"
)

// LowStockThreshold is the highest quantity still reported as low stock.
const LowStockThreshold = 5

// LevelFor classifies a quantity. Zero is out of stock, 1..LowStockThreshold is low.
func LevelFor(quantity int) StockLevel {
	switch {
	case quantity <= 0:
		return LevelOutOfStock
	case quantity <= LowStockThreshold:
		return LevelLowStock
	default:
		return LevelInStock
	}
}

// InventoryRecord lives at inventory/{branchId}/products/{productId}.
// A missing record means quantity 0.
type InventoryRecord struct {
	ProductID   string    `json:"productId" firestore:"productId"`
	Quantity    int       `json:"quantity" firestore:"quantity"`
	LastUpdated time.Time `json:"lastUpdated" firestore:"lastUpdated"`
}

// StockHistoryEntry is an append-only audit row. Change is the applied signed
// delta, so the sum of changes for a key equals its current quantity.
type StockHistoryEntry struct {
	ID        string    `json:"id" firestore:"-"`
	BranchID  string    `json:"branchId" firestore:"branchId"`
	ProductID string    `json:"productId" firestore:"productId"`
	Change    int       `json:"change" firestore:"change"`
	Requested int       `json:"requested" firestore:"requested"`
	Type      StockMode `json:"type" firestore:"type"`
	Actor     string    `json:"actor,omitempty" firestore:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

func (s *StockHistoryEntry) SetID(id string) { s.ID = id }

func (r *InventoryRecord) SetID(id string) { r.ProductID = id }
