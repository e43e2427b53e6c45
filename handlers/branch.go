package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"restochain-backend/auth"
	"restochain-backend/docstore"
	"restochain-backend/dtos"
	"restochain-backend/models"
	"restochain-backend/session"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

type BranchHandler struct {
	Store    docstore.Store
	Provider auth.Provider
	Sessions *session.Manager
}

// CreateBranch creates the branch and its manager account. The manager's
// profile points back at the branch through branchId.
func (h *BranchHandler) CreateBranch(c *gin.Context) {
	var req dtos.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	ctx := c.Request.Context()
	manager, err := h.Provider.SignUp(ctx, req.ManagerEmail, req.ManagerPassword)
	if errors.Is(err, auth.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Manager email already registered"})
		return
	}
	if err != nil {
		storeFailure(c, "Failed to create manager account", err)
		return
	}

	now := time.Now().UTC()
	branch := models.Branch{
		BranchName:     req.BranchName,
		ManagerID:      manager.UID,
		ManagerName:    req.ManagerName,
		Email:          manager.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		BranchImageURL: req.BranchImageURL,
		IsActive:       true,
		CreatedAt:      now,
	}

	err = h.Store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		id, err := tx.Create(docstore.Branches, &branch)
		if err != nil {
			return err
		}
		branch.ID = id
		return tx.Set(docstore.Doc(docstore.Users, manager.UID), &models.User{
			Email:     manager.Email,
			Role:      models.RoleBranchManager,
			BranchID:  id,
			FullName:  req.ManagerName,
			Phone:     req.Phone,
			CreatedAt: now,
		})
	})
	if err != nil {
		discardAccount(ctx, h.Provider, manager)
		storeFailure(c, "Failed to create branch", err)
		return
	}

	log.Printf("Branch %s created with manager %s", branch.ID, manager.Email)
	c.JSON(http.StatusCreated, branch)
}

func (h *BranchHandler) listBranches(c *gin.Context) ([]models.Branch, bool) {
	var branches []models.Branch
	if err := h.Store.List(c.Request.Context(), docstore.Branches, &branches); err != nil {
		storeFailure(c, "Failed to fetch branches", err)
		return nil, false
	}
	newestFirst(branches, func(b models.Branch) time.Time { return b.CreatedAt })
	return branches, true
}

// ListBranches returns every branch, for admins.
func (h *BranchHandler) ListBranches(c *gin.Context) {
	branches, ok := h.listBranches(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, branches)
}

// ListActiveBranches is the public list customers pick a branch from.
func (h *BranchHandler) ListActiveBranches(c *gin.Context) {
	branches, ok := h.listBranches(c)
	if !ok {
		return
	}
	active := make([]models.Branch, 0, len(branches))
	for _, b := range branches {
		if b.IsActive {
			active = append(active, b)
		}
	}
	c.JSON(http.StatusOK, active)
}

func (h *BranchHandler) GetBranch(c *gin.Context) {
	branch, ok := loadBranch(c, h.Store, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, branch)
}

func (h *BranchHandler) UpdateBranch(c *gin.Context) {
	id := c.Param("id")
	var req dtos.UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if _, ok := loadBranch(c, h.Store, id); !ok {
		return
	}

	fields := map[string]any{}
	setString := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	setString("branchName", req.BranchName)
	setString("phone", req.Phone)
	setString("address", req.Address)
	setString("city", req.City)
	setString("state", req.State)
	setString("zipCode", req.ZipCode)
	setString("branchImageUrl", req.BranchImageURL)
	if req.IsActive != nil {
		fields["isActive"] = *req.IsActive
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.Merge(ctx, docstore.Doc(docstore.Branches, id), fields); err != nil {
		storeFailure(c, "Failed to update branch", err)
		return
	}
	branch, ok := loadBranch(c, h.Store, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, branch)
}

// DeleteBranch removes the branch and disables its manager account. Orders,
// reviews and stock records stay for the audit trail.
func (h *BranchHandler) DeleteBranch(c *gin.Context) {
	id := c.Param("id")
	branch, ok := loadBranch(c, h.Store, id)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if branch.ManagerID != "" {
		err := h.Store.Merge(ctx, docstore.Doc(docstore.Users, branch.ManagerID), map[string]any{
			"disabled": true,
			"branchId": "",
		})
		if err != nil {
			storeFailure(c, "Failed to disable branch manager", err)
			return
		}
	}
	if err := h.Store.Delete(ctx, docstore.Doc(docstore.Branches, id)); err != nil {
		storeFailure(c, "Failed to delete branch", err)
		return
	}
	if branch.ManagerID != "" {
		h.Sessions.Drop(branch.ManagerID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Branch deleted"})
}
