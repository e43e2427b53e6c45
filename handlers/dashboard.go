package handlers

import (
	"net/http"
	"time"

	"restochain-backend/docstore"
	"restochain-backend/inventory"
	"restochain-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type DashboardHandler struct {
	Store  docstore.Store
	Ledger *inventory.Ledger
}

type adminDashboard struct {
	Branches       int     `json:"branches"`
	ActiveBranches int     `json:"activeBranches"`
	Products       int     `json:"products"`
	Users          int     `json:"users"`
	Customers      int     `json:"customers"`
	Orders         int     `json:"orders"`
	PendingOrders  int     `json:"pendingOrders"`
	Revenue        float64 `json:"revenue"`
	ActiveOffers   int     `json:"activeOffers"`
}

type managerDashboard struct {
	BranchID        string            `json:"branchId"`
	BranchName      string            `json:"branchName"`
	TotalOrders     int               `json:"totalOrders"`
	TotalRevenue    float64           `json:"totalRevenue"`
	PendingOrders   int               `json:"pendingOrders"`
	Inventory       inventory.Summary `json:"inventory"`
	Employees       int               `json:"employees"`
	ActiveEmployees int               `json:"activeEmployees"`
	Reviews         int               `json:"reviews"`
	AverageRating   float64           `json:"averageRating"`
	RecentReviews   []models.Review   `json:"recentReviews"`
}

const recentReviewCount = 5

// GetAdminDashboard aggregates chain-wide counts. Revenue counts every order
// that was not cancelled.
func (h *DashboardHandler) GetAdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		branches []models.Branch
		products []models.Product
		users    []models.User
		orders   []models.Order
		offers   []models.Offer
	)
	lists := []struct {
		collection string
		dst        any
	}{
		{docstore.Branches, &branches},
		{docstore.Products, &products},
		{docstore.Users, &users},
		{docstore.Orders, &orders},
		{docstore.Offers, &offers},
	}
	for _, l := range lists {
		if err := h.Store.List(ctx, l.collection, l.dst); err != nil {
			storeFailure(c, "Failed to load dashboard", err)
			return
		}
	}

	out := adminDashboard{
		Branches: len(branches),
		Products: len(products),
		Users:    len(users),
		Orders:   len(orders),
	}
	for _, b := range branches {
		if b.IsActive {
			out.ActiveBranches++
		}
	}
	for _, u := range users {
		if u.Role == models.RoleCustomer {
			out.Customers++
		}
	}
	revenue := decimal.Zero
	for _, o := range orders {
		if o.Status == models.OrderStatusPending {
			out.PendingOrders++
		}
		if o.Status != models.OrderStatusCancelled {
			revenue = revenue.Add(decimal.NewFromFloat(o.Total))
		}
	}
	out.Revenue = revenue.Round(2).InexactFloat64()
	now := time.Now()
	for _, o := range offers {
		if o.Applicable(now) {
			out.ActiveOffers++
		}
	}

	c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) GetBranchDashboard(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	branch, ok := loadBranch(c, h.Store, s.BranchID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var (
		products  []models.Product
		orders    []models.Order
		employees []models.Employee
		reviews   []models.Review
	)
	if err := h.Store.List(ctx, docstore.Products, &products); err != nil {
		storeFailure(c, "Failed to load dashboard", err)
		return
	}
	scoped := []struct {
		collection string
		dst        any
	}{
		{docstore.Orders, &orders},
		{docstore.Employees, &employees},
		{docstore.Reviews, &reviews},
	}
	for _, l := range scoped {
		if err := h.Store.Where(ctx, l.collection, "branchId", branch.ID, l.dst); err != nil {
			storeFailure(c, "Failed to load dashboard", err)
			return
		}
	}
	report, err := h.Ledger.BranchStock(ctx, branch.ID, products)
	if err != nil {
		storeFailure(c, "Failed to load dashboard", err)
		return
	}

	out := managerDashboard{
		BranchID:      branch.ID,
		BranchName:    branch.BranchName,
		TotalOrders:   branch.TotalOrders,
		TotalRevenue:  branch.TotalRevenue,
		Inventory:     report.Summary,
		Employees:     len(employees),
		Reviews:       len(reviews),
		AverageRating: averageRating(reviews),
	}
	for _, o := range orders {
		if o.Status == models.OrderStatusPending {
			out.PendingOrders++
		}
	}
	for _, e := range employees {
		if e.Status == models.EmployeeActive {
			out.ActiveEmployees++
		}
	}
	newestFirst(reviews, func(r models.Review) time.Time { return r.CreatedAt })
	if len(reviews) > recentReviewCount {
		reviews = reviews[:recentReviewCount]
	}
	out.RecentReviews = reviews

	c.JSON(http.StatusOK, out)
}
