// Package docstore is a small collection/document API over the backends the
// service can run on: process memory, a SQL table through gorm, and Firestore.
//
// Paths follow Firestore conventions. A collection path has an odd number of
// segments ("orders", "inventory/b1/products") and a document path an even
// number ("orders/o1", "inventory/b1/products/p1").
package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
	ErrTxConflict  = errors.New("transaction conflict: documents changed during every attempt")
)

// Collection names.
const (
	Users        = "users"
	Branches     = "branches"
	Products     = "products"
	Inventory    = "inventory"
	StockHistory = "stockHistory"
	Orders       = "orders"
	Offers       = "offers"
	Employees    = "employees"
	Reviews      = "reviews"
	Credentials  = "credentials"
)

// Store is implemented by MemoryStore, GormStore and FirestoreStore.
//
// Where and List decode into a pointer to a slice of structs. Documents
// implementing Identifiable get their document ID assigned after decoding.
type Store interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Set(ctx context.Context, path string, doc any) error
	// Merge updates the given fields, creating the document if it is absent.
	Merge(ctx context.Context, path string, fields map[string]any) error
	Get(ctx context.Context, path string, dst any) error
	Where(ctx context.Context, collection, field string, value any, dst any) error
	List(ctx context.Context, collection string, dst any) error
	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, path string) error
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

// Tx is the view of the store inside RunTransaction. All reads must happen
// before the first write. Writes become visible only if fn returns nil.
type Tx interface {
	Get(path string, dst any) error
	Set(path string, doc any) error
	Merge(path string, fields map[string]any) error
	Create(collection string, doc any) (string, error)
}

// Identifiable documents carry their own ID outside the stored body.
type Identifiable interface {
	SetID(id string)
}

func Doc(collection, id string) string {
	return collection + "/" + id
}

// InventoryProducts is the sub-collection holding one branch's stock records.
func InventoryProducts(branchID string) string {
	return Inventory + "/" + branchID + "/" + Products
}

func InventoryDoc(branchID, productID string) string {
	return InventoryProducts(branchID) + "/" + productID
}

// splitPath returns the collection path and ID of a document path.
func splitPath(path string) (string, string, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 || len(parts)%2 != 0 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, p := range parts {
		if p == "" {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	i := strings.LastIndex(path, "/")
	return path[:i], path[i+1:], nil
}

func validCollection(collection string) error {
	parts := strings.Split(collection, "/")
	if len(parts)%2 != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
		}
	}
	return nil
}

func assignID(v any, id string) {
	if d, ok := v.(Identifiable); ok {
		d.SetID(id)
	}
}

// fillSlice replaces the slice dst points to with n decoded elements.
func fillSlice(dst any, ids []string, decode func(i int, target any) error) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("docstore: destination must be a pointer to a slice, got %T", dst)
	}
	sv := rv.Elem()
	et := sv.Type().Elem()
	if et.Kind() == reflect.Pointer {
		return fmt.Errorf("docstore: slice elements must not be pointers, got %s", et)
	}
	out := reflect.MakeSlice(sv.Type(), 0, len(ids))
	for i, id := range ids {
		ptr := reflect.New(et)
		if err := decode(i, ptr.Interface()); err != nil {
			return err
		}
		assignID(ptr.Interface(), id)
		out = reflect.Append(out, ptr.Elem())
	}
	sv.Set(out)
	return nil
}
