// Package cart holds a session's shopping cart. It is never persisted.
package cart

import (
	"sync"

	"restochain-backend/models"

	"github.com/shopspring/decimal"
)

// Ledger maps product identity to quantity. Total is recomputed after every
// mutation as the sum of price times qty, rounded to cents.
type Ledger struct {
	mu    sync.Mutex
	items []models.CartItem
	total decimal.Decimal
}

func New() *Ledger {
	return &Ledger{}
}

// Add increments the quantity of an existing entry by one, or inserts the
// item with quantity 1.
func (l *Ledger) Add(item models.CartItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].ProductID == item.ProductID {
			l.items[i].Qty++
			l.recompute()
			return
		}
	}
	item.Qty = 1
	l.items = append(l.items, item)
	l.recompute()
}

// Remove deletes the entry for productID. Removing an absent product is a no-op.
func (l *Ledger) Remove(productID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0]
	for _, it := range l.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	l.items = kept
	l.recompute()
}

func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.total = decimal.Zero
}

// Settle takes ordered items back out of the cart after checkout. Only the
// ordered quantities are removed, so anything added since the snapshot stays.
func (l *Ledger) Settle(ordered []models.CartItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range ordered {
		for i := range l.items {
			if l.items[i].ProductID == o.ProductID {
				l.items[i].Qty -= o.Qty
				break
			}
		}
	}
	kept := l.items[:0]
	for _, it := range l.items {
		if it.Qty > 0 {
			kept = append(kept, it)
		}
	}
	l.items = kept
	l.recompute()
}

// Snapshot is an immutable copy of the cart's contents.
type Snapshot struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]models.CartItem, len(l.items))
	copy(items, l.items)
	return Snapshot{Items: items, Total: l.total.InexactFloat64()}
}

// TotalDecimal returns the exact cart total.
func (l *Ledger) TotalDecimal() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *Ledger) recompute() {
	l.total = Total(l.items)
}

// Total sums price times qty over items.
func Total(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum.Round(2)
}
