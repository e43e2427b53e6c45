// Package orders implements checkout and the order status lifecycle.
package orders

import (
	"context"
	"errors"
	"sort"
	"time"

	"restochain-backend/cart"
	"restochain-backend/docstore"
	"restochain-backend/models"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoBranch         = errors.New("a branch must be selected")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrBranchInactive   = errors.New("branch is not accepting orders")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOfferUnavailable = errors.New("offer is not available")
)

type Customer struct {
	Name    string
	Contact string
	Email   string
}

type PlaceOrderInput struct {
	CustomerID string
	BranchID   string
	Customer   Customer
	OfferID    string
}

type Service struct {
	store docstore.Store
	now   func() time.Time
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// PlaceOrder turns the cart into a pending order for the branch and bumps the
// branch's order count and revenue in the same transaction. The cart is
// cleared only after the transaction commits.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput, c *cart.Ledger) (models.Order, error) {
	snap := c.Snapshot()
	if len(snap.Items) == 0 {
		return models.Order{}, ErrEmptyCart
	}
	if in.BranchID == "" {
		return models.Order{}, ErrNoBranch
	}
	subtotal := cart.Total(snap.Items)

	var order models.Order
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		var branch models.Branch
		if err := tx.Get(docstore.Doc(docstore.Branches, in.BranchID), &branch); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				return ErrBranchNotFound
			}
			return err
		}
		if !branch.IsActive {
			return ErrBranchInactive
		}

		now := s.now().UTC()
		discount := decimal.Zero
		if in.OfferID != "" {
			var offer models.Offer
			err := tx.Get(docstore.Doc(docstore.Offers, in.OfferID), &offer)
			if errors.Is(err, docstore.ErrNotFound) {
				return ErrOfferUnavailable
			}
			if err != nil {
				return err
			}
			if !offer.Applicable(now) {
				return ErrOfferUnavailable
			}
			discount = offer.DiscountFor(subtotal)
		}
		total := subtotal.Sub(discount)

		order = models.Order{
			CustomerID:      in.CustomerID,
			BranchID:        in.BranchID,
			CustomerName:    in.Customer.Name,
			CustomerContact: in.Customer.Contact,
			CustomerEmail:   in.Customer.Email,
			Items:           snap.Items,
			Subtotal:        subtotal.InexactFloat64(),
			Discount:        discount.InexactFloat64(),
			Total:           total.InexactFloat64(),
			Status:          models.OrderStatusPending,
			CreatedAt:       now,
		}
		if !discount.IsZero() {
			order.OfferID = in.OfferID
		}
		id, err := tx.Create(docstore.Orders, &order)
		if err != nil {
			return err
		}
		order.ID = id

		return tx.Merge(docstore.Doc(docstore.Branches, in.BranchID), map[string]any{
			"totalOrders":  branch.TotalOrders + 1,
			"totalRevenue": decimal.NewFromFloat(branch.TotalRevenue).Add(total).Round(2).InexactFloat64(),
		})
	})
	if err != nil {
		return models.Order{}, err
	}

	c.Settle(snap.Items)
	return order, nil
}

// UpdateStatus moves an order of branchID to the next status. Orders of other
// branches are reported as not found. Cancelling takes the order back out of
// the branch totals.
func (s *Service) UpdateStatus(ctx context.Context, branchID, orderID string, next models.OrderStatus) (models.Order, error) {
	var order models.Order
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		path := docstore.Doc(docstore.Orders, orderID)
		if err := tx.Get(path, &order); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.BranchID != branchID {
			return ErrOrderNotFound
		}
		status, err := models.Transition(order.Status, next)
		if err != nil {
			return err
		}

		var branch models.Branch
		branchPath := docstore.Doc(docstore.Branches, order.BranchID)
		cancelling := status == models.OrderStatusCancelled
		if cancelling {
			if err := tx.Get(branchPath, &branch); err != nil && !errors.Is(err, docstore.ErrNotFound) {
				return err
			}
		}

		order.Status = status
		order.UpdatedAt = s.now().UTC()
		if err := tx.Merge(path, map[string]any{
			"status":    order.Status,
			"updatedAt": order.UpdatedAt,
		}); err != nil {
			return err
		}

		if cancelling && branch.ID != "" {
			revenue := decimal.NewFromFloat(branch.TotalRevenue).Sub(decimal.NewFromFloat(order.Total))
			if revenue.IsNegative() {
				revenue = decimal.Zero
			}
			return tx.Merge(branchPath, map[string]any{
				"totalOrders":  max(0, branch.TotalOrders-1),
				"totalRevenue": revenue.Round(2).InexactFloat64(),
			})
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (models.Order, error) {
	var order models.Order
	err := s.store.Get(ctx, docstore.Doc(docstore.Orders, orderID), &order)
	if errors.Is(err, docstore.ErrNotFound) {
		return order, ErrOrderNotFound
	}
	return order, err
}

// ForCustomer returns a customer's orders, newest first.
func (s *Service) ForCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var list []models.Order
	if err := s.store.Where(ctx, docstore.Orders, "customerId", customerID, &list); err != nil {
		return nil, err
	}
	sortNewest(list)
	return list, nil
}

// ForBranch returns a branch's orders, newest first, optionally limited to one status.
func (s *Service) ForBranch(ctx context.Context, branchID string, status models.OrderStatus) ([]models.Order, error) {
	var list []models.Order
	if err := s.store.Where(ctx, docstore.Orders, "branchId", branchID, &list); err != nil {
		return nil, err
	}
	if status != "" {
		filtered := list[:0]
		for _, o := range list {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		list = filtered
	}
	sortNewest(list)
	return list, nil
}

// All returns every order. Used for the admin totals.
func (s *Service) All(ctx context.Context) ([]models.Order, error) {
	var list []models.Order
	if err := s.store.List(ctx, docstore.Orders, &list); err != nil {
		return nil, err
	}
	sortNewest(list)
	return list, nil
}

func sortNewest(list []models.Order) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
