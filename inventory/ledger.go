// Package inventory maintains per-branch stock records and their audit trail.
//
// Every stock change reads the current record, writes the new quantity and
// appends a stockHistory entry inside a single store transaction.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"restochain-backend/docstore"
	"restochain-backend/models"
)

var (
	ErrInvalidDelta    = errors.New("delta must be at least 1")
	ErrInvalidMode     = errors.New("mode must be add or remove")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrMissingKey      = errors.New("branch and product are required")
	ErrRequestConflict = errors.New("request id already used for a different stock record")
)

type Ledger struct {
	store docstore.Store
	now   func() time.Time
}

func NewLedger(store docstore.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Options carries the optional idempotency key and the acting user.
// A request ID becomes the history entry's document ID, so retrying the same
// request applies the change at most once.
type Options struct {
	RequestID string
	Actor     string
}

type Result struct {
	BranchID  string            `json:"branchId"`
	ProductID string            `json:"productId"`
	Previous  int               `json:"previous"`
	Quantity  int               `json:"quantity"`
	Change    int               `json:"change"`
	Level     models.StockLevel `json:"level"`
	EntryID   string            `json:"entryId"`
	Replayed  bool              `json:"replayed"`
}

// UpdateStock adds delta, or removes it clamping the result at zero.
func (l *Ledger) UpdateStock(ctx context.Context, branchID, productID string, delta int, mode models.StockMode, opts Options) (Result, error) {
	if delta < 1 {
		return Result{}, ErrInvalidDelta
	}
	var next func(int) int
	switch mode {
	case models.StockAdd:
		next = func(cur int) int { return cur + delta }
	case models.StockRemove:
		next = func(cur int) int { return max(0, cur-delta) }
	default:
		return Result{}, ErrInvalidMode
	}
	return l.apply(ctx, branchID, productID, mode, delta, next, opts)
}

// SetStock overwrites the quantity. The recorded change is new minus old.
func (l *Ledger) SetStock(ctx context.Context, branchID, productID string, quantity int, opts Options) (Result, error) {
	if quantity < 0 {
		return Result{}, ErrInvalidQuantity
	}
	return l.apply(ctx, branchID, productID, models.StockSet, quantity, func(int) int { return quantity }, opts)
}

func (l *Ledger) apply(ctx context.Context, branchID, productID string, mode models.StockMode, requested int, next func(int) int, opts Options) (Result, error) {
	if branchID == "" || productID == "" {
		return Result{}, ErrMissingKey
	}
	recordPath := docstore.InventoryDoc(branchID, productID)
	var res Result

	err := l.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		res = Result{BranchID: branchID, ProductID: productID}

		var prior models.StockHistoryEntry
		replay := false
		if opts.RequestID != "" {
			err := tx.Get(docstore.Doc(docstore.StockHistory, opts.RequestID), &prior)
			switch {
			case err == nil:
				if prior.BranchID != branchID || prior.ProductID != productID {
					return ErrRequestConflict
				}
				replay = true
			case !errors.Is(err, docstore.ErrNotFound):
				return err
			}
		}

		current, err := readQuantity(tx, recordPath)
		if err != nil {
			return err
		}

		if replay {
			res.Previous = current - prior.Change
			res.Quantity = current
			res.Change = prior.Change
			res.Level = models.LevelFor(current)
			res.EntryID = prior.ID
			res.Replayed = true
			return nil
		}

		updated := next(current)
		now := l.now().UTC()
		if err := tx.Merge(recordPath, map[string]any{
			"productId":   productID,
			"quantity":    updated,
			"lastUpdated": now,
		}); err != nil {
			return err
		}

		entry := models.StockHistoryEntry{
			BranchID:  branchID,
			ProductID: productID,
			Change:    updated - current,
			Requested: requested,
			Type:      mode,
			Actor:     opts.Actor,
			Timestamp: now,
		}
		entryID := opts.RequestID
		if entryID != "" {
			err = tx.Set(docstore.Doc(docstore.StockHistory, entryID), &entry)
		} else {
			entryID, err = tx.Create(docstore.StockHistory, &entry)
		}
		if err != nil {
			return err
		}

		res.Previous = current
		res.Quantity = updated
		res.Change = entry.Change
		res.Level = models.LevelFor(updated)
		res.EntryID = entryID
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func readQuantity(tx docstore.Tx, path string) (int, error) {
	var rec models.InventoryRecord
	err := tx.Get(path, &rec)
	if errors.Is(err, docstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// Quantity returns the stock for a key. A missing record counts as zero.
func (l *Ledger) Quantity(ctx context.Context, branchID, productID string) (int, error) {
	var rec models.InventoryRecord
	err := l.store.Get(ctx, docstore.InventoryDoc(branchID, productID), &rec)
	if errors.Is(err, docstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// Records returns the stored inventory records of a branch keyed by product.
func (l *Ledger) Records(ctx context.Context, branchID string) (map[string]models.InventoryRecord, error) {
	var recs []models.InventoryRecord
	if err := l.store.List(ctx, docstore.InventoryProducts(branchID), &recs); err != nil {
		return nil, err
	}
	out := make(map[string]models.InventoryRecord, len(recs))
	for _, r := range recs {
		out[r.ProductID] = r
	}
	return out, nil
}

// History returns a branch's stock history, newest first. An empty productID
// returns entries for every product.
func (l *Ledger) History(ctx context.Context, branchID, productID string) ([]models.StockHistoryEntry, error) {
	var entries []models.StockHistoryEntry
	if err := l.store.Where(ctx, docstore.StockHistory, "branchId", branchID, &entries); err != nil {
		return nil, fmt.Errorf("load stock history: %w", err)
	}
	if productID != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.ProductID == productID {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}
