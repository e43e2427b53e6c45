package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"restochain-backend/docstore"
	"restochain-backend/dtos"
	"restochain-backend/inventory"
	"restochain-backend/models"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	Store  docstore.Store
	Ledger *inventory.Ledger
	Jobs   *utils.JobStore
}

func (h *InventoryHandler) catalog(c *gin.Context) ([]models.Product, bool) {
	var products []models.Product
	if err := h.Store.List(c.Request.Context(), docstore.Products, &products); err != nil {
		storeFailure(c, "Failed to fetch products", err)
		return nil, false
	}
	return products, true
}

func parseLevelFilter(c *gin.Context) (models.StockLevel, bool) {
	switch c.Query("filter") {
	case "":
		return "", true
	case "low":
		return models.LevelLowStock, true
	case "out":
		return models.LevelOutOfStock, true
	case "in":
		return models.LevelInStock, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "filter must be one of: in, low, out"})
	return "", false
}

func (h *InventoryHandler) report(c *gin.Context, branchID string) {
	level, ok := parseLevelFilter(c)
	if !ok {
		return
	}
	products, ok := h.catalog(c)
	if !ok {
		return
	}
	report, err := h.Ledger.BranchStock(c.Request.Context(), branchID, products)
	if err != nil {
		storeFailure(c, "Failed to fetch inventory", err)
		return
	}
	if level != "" {
		report = report.Filter(level)
	}
	c.JSON(http.StatusOK, report)
}

// applyStock answers the result of a stock change, mapping ledger errors.
func applyStock(c *gin.Context, res inventory.Result, err error) {
	switch {
	case errors.Is(err, inventory.ErrInvalidDelta),
		errors.Is(err, inventory.ErrInvalidMode),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrMissingKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, inventory.ErrRequestConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		storeFailure(c, "Failed to update stock", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InventoryHandler) updateStock(c *gin.Context, branchID, productID, actor string) {
	var req dtos.StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if _, ok := loadProduct(c, h.Store, productID); !ok {
		return
	}
	res, err := h.Ledger.UpdateStock(c.Request.Context(), branchID, productID, req.Delta, models.StockMode(req.Mode), inventory.Options{
		RequestID: req.RequestID,
		Actor:     actor,
	})
	applyStock(c, res, err)
}

func (h *InventoryHandler) history(c *gin.Context, branchID string) {
	entries, err := h.Ledger.History(c.Request.Context(), branchID, c.Query("productId"))
	if err != nil {
		storeFailure(c, "Failed to fetch stock history", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetInventoryOverview summarizes stock for every branch.
func (h *InventoryHandler) GetInventoryOverview(c *gin.Context) {
	var branches []models.Branch
	if err := h.Store.List(c.Request.Context(), docstore.Branches, &branches); err != nil {
		storeFailure(c, "Failed to fetch branches", err)
		return
	}
	products, ok := h.catalog(c)
	if !ok {
		return
	}

	type branchSummary struct {
		BranchID   string            `json:"branchId"`
		BranchName string            `json:"branchName"`
		Summary    inventory.Summary `json:"summary"`
	}
	out := make([]branchSummary, 0, len(branches))
	for _, b := range branches {
		report, err := h.Ledger.BranchStock(c.Request.Context(), b.ID, products)
		if err != nil {
			storeFailure(c, "Failed to fetch inventory", err)
			return
		}
		out = append(out, branchSummary{BranchID: b.ID, BranchName: b.BranchName, Summary: report.Summary})
	}
	c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) GetBranchInventory(c *gin.Context) {
	branch, ok := loadBranch(c, h.Store, c.Param("branchId"))
	if !ok {
		return
	}
	h.report(c, branch.ID)
}

func (h *InventoryHandler) AdminUpdateStock(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	branch, ok := loadBranch(c, h.Store, c.Param("branchId"))
	if !ok {
		return
	}
	h.updateStock(c, branch.ID, c.Param("productId"), s.UID)
}

func (h *InventoryHandler) GetBranchHistory(c *gin.Context) {
	branch, ok := loadBranch(c, h.Store, c.Param("branchId"))
	if !ok {
		return
	}
	h.history(c, branch.ID)
}

func (h *InventoryHandler) ReconcileBranch(c *gin.Context) {
	branch, ok := loadBranch(c, h.Store, c.Param("branchId"))
	if !ok {
		return
	}
	found, err := h.Ledger.Reconcile(c.Request.Context(), branch.ID)
	if err != nil {
		storeFailure(c, "Failed to reconcile inventory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branchId": branch.ID, "consistent": len(found) == 0, "discrepancies": found})
}

// StartReconcileJob reconciles every branch in the background and returns
// the job to poll.
func (h *InventoryHandler) StartReconcileJob(c *gin.Context) {
	var branches []models.Branch
	if err := h.Store.List(c.Request.Context(), docstore.Branches, &branches); err != nil {
		storeFailure(c, "Failed to fetch branches", err)
		return
	}

	job := h.Jobs.CreateJob(len(branches))
	go func(jobID string) {
		ctx := context.Background()
		h.Jobs.SetProcessing(jobID)
		for _, b := range branches {
			found, err := h.Ledger.Reconcile(ctx, b.ID)
			if err != nil {
				log.Printf("Reconcile job %s: branch %s failed: %v", jobID, b.ID, err)
			}
			h.Jobs.RecordBranch(jobID, b.ID, found, err)
		}
		h.Jobs.CompleteJob(jobID)
	}(job.ID)

	c.JSON(http.StatusAccepted, job)
}

func (h *InventoryHandler) GetReconcileJob(c *gin.Context) {
	job, ok := h.Jobs.GetJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// Branch manager endpoints, scoped to the session's branch.

func (h *InventoryHandler) GetMyInventory(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	h.report(c, s.BranchID)
}

func (h *InventoryHandler) UpdateMyStock(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	h.updateStock(c, s.BranchID, c.Param("productId"), s.UID)
}

// SetMyStock overwrites the quantity, as the manager's direct-edit field does.
func (h *InventoryHandler) SetMyStock(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var req dtos.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	productID := c.Param("productId")
	if _, ok := loadProduct(c, h.Store, productID); !ok {
		return
	}
	res, err := h.Ledger.SetStock(c.Request.Context(), s.BranchID, productID, *req.Quantity, inventory.Options{
		RequestID: req.RequestID,
		Actor:     s.UID,
	})
	applyStock(c, res, err)
}

func (h *InventoryHandler) GetMyHistory(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	h.history(c, s.BranchID)
}
