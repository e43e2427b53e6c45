package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// ==================== Role Tests ====================

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleBranchManager, RoleCustomer} {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if Role("owner").Valid() {
		t.Error("unknown role should be invalid")
	}
	if Role("").Valid() {
		t.Error("empty role should be invalid")
	}
}

// ==================== Order Status Tests ====================

func TestIsValidTransitionTable(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusConfirmed, OrderStatusDelivered, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatus("preparing"), OrderStatusDelivered, false},
	}
	for _, tt := range tests {
		if got := IsValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransitionReturnsTypedError(t *testing.T) {
	status, err := Transition(OrderStatusDelivered, OrderStatusPending)
	if err == nil {
		t.Fatal("expected error for delivered -> pending")
	}
	if status != OrderStatusDelivered {
		t.Errorf("status should stay delivered, got %s", status)
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Error("error should wrap ErrInvalidTransition")
	}
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatal("error should be a *TransitionError")
	}
	if te.From != OrderStatusDelivered || te.To != OrderStatusPending {
		t.Errorf("unexpected transition error fields: %+v", te)
	}
}

func TestTransitionSuccess(t *testing.T) {
	status, err := Transition(OrderStatusPending, OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusConfirmed {
		t.Errorf("expected confirmed, got %s", status)
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !OrderStatusDelivered.Terminal() || !OrderStatusCancelled.Terminal() {
		t.Error("delivered and cancelled should be terminal")
	}
	if OrderStatusPending.Terminal() || OrderStatusConfirmed.Terminal() {
		t.Error("pending and confirmed should not be terminal")
	}
	if OrderStatus("bogus").Terminal() {
		t.Error("unknown status should not be terminal")
	}
}

// ==================== Stock Level Tests ====================

func TestLevelFor(t *testing.T) {
	tests := []struct {
		qty  int
		want StockLevel
	}{
		{0, LevelOutOfStock},
		{1, LevelLowStock},
		{5, LevelLowStock},
		{6, LevelInStock},
		{100, LevelInStock},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.qty); got != tt.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tt.qty, got, tt.want)
		}
	}
}

// ==================== Offer Tests ====================

func TestOfferExpiredIgnoresIsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := Offer{IsActive: true, EndDate: now.Add(-time.Hour)}
	if !o.IsExpired(now) {
		t.Error("offer with past end date should be expired even when isActive is true")
	}
	if o.Status(now) != "expired" {
		t.Errorf("expected status expired, got %s", o.Status(now))
	}
}

func TestOfferExpiredAtExactEnd(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if !IsExpired(now, now) {
		t.Error("offer ending exactly now should be expired")
	}
	if IsExpired(now.Add(time.Second), now) {
		t.Error("offer ending in the future should not be expired")
	}
}

func TestOfferStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{"not started", now.Add(time.Hour), now.Add(2 * time.Hour), "upcoming"},
		{"starts now", now, now.Add(time.Hour), "active"},
		{"running", now.Add(-time.Hour), now.Add(time.Hour), "active"},
		{"ended", now.Add(-2 * time.Hour), now.Add(-time.Hour), "expired"},
	}
	for _, tt := range tests {
		o := Offer{IsActive: true, StartDate: tt.start, EndDate: tt.end}
		if got := o.Status(now); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestCartItemReadsWebClientID(t *testing.T) {
	var legacy CartItem
	if err := json.Unmarshal([]byte(`{"id":"p1","title":"Burger","price":9.5,"qty":2}`), &legacy); err != nil {
		t.Fatal(err)
	}
	if legacy.ProductID != "p1" || legacy.Qty != 2 {
		t.Errorf("unexpected item %+v", legacy)
	}

	var current CartItem
	if err := json.Unmarshal([]byte(`{"productId":"p2","id":"other","qty":1}`), &current); err != nil {
		t.Fatal(err)
	}
	if current.ProductID != "p2" {
		t.Errorf("productId should win over id, got %s", current.ProductID)
	}
}

func TestOfferApplicable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := Offer{IsActive: true, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)}
	if !o.Applicable(now) {
		t.Error("offer within window should be applicable")
	}
	o.IsActive = false
	if o.Applicable(now) {
		t.Error("inactive offer should not be applicable")
	}
	o.IsActive = true
	o.StartDate = now.Add(time.Minute)
	if o.Applicable(now) {
		t.Error("offer not yet started should not be applicable")
	}
}

func TestOfferDiscountFor(t *testing.T) {
	amount := decimal.RequireFromString("40.00")

	pct := Offer{DiscountType: DiscountPercentage, DiscountValue: 15}
	if got := pct.DiscountFor(amount); !got.Equal(decimal.RequireFromString("6")) {
		t.Errorf("expected 6.00 percentage discount, got %s", got)
	}

	fixed := Offer{DiscountType: DiscountFixed, DiscountValue: 5.5}
	if got := fixed.DiscountFor(amount); !got.Equal(decimal.RequireFromString("5.5")) {
		t.Errorf("expected 5.50 fixed discount, got %s", got)
	}

	big := Offer{DiscountType: DiscountFixed, DiscountValue: 100}
	if got := big.DiscountFor(amount); !got.Equal(amount) {
		t.Errorf("discount should be capped at amount, got %s", got)
	}

	unknown := Offer{DiscountType: "bogo", DiscountValue: 10}
	if got := unknown.DiscountFor(amount); !got.IsZero() {
		t.Errorf("unknown discount type should give zero, got %s", got)
	}
}

// ==================== ID Tests ====================

func TestSetIDAssignsDocumentID(t *testing.T) {
	var u User
	u.SetID("uid-1")
	if u.UID != "uid-1" {
		t.Errorf("expected uid-1, got %s", u.UID)
	}
	var o Order
	o.SetID("order-1")
	if o.ID != "order-1" {
		t.Errorf("expected order-1, got %s", o.ID)
	}
}
