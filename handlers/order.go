package handlers

import (
	"errors"
	"net/http"

	"restochain-backend/dtos"
	"restochain-backend/models"
	"restochain-backend/orders"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Orders *orders.Service
}

// PlaceOrder checks out the caller's cart at the chosen branch.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var req dtos.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	order, err := h.Orders.PlaceOrder(c.Request.Context(), orders.PlaceOrderInput{
		CustomerID: s.UID,
		BranchID:   req.BranchID,
		Customer: orders.Customer{
			Name:    req.CustomerName,
			Contact: req.CustomerContact,
			Email:   req.CustomerEmail,
		},
		OfferID: req.OfferID,
	}, s.Cart)
	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	case errors.Is(err, orders.ErrNoBranch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a branch"})
		return
	case errors.Is(err, orders.ErrBranchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
		return
	case errors.Is(err, orders.ErrBranchInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Branch is not accepting orders"})
		return
	case errors.Is(err, orders.ErrOfferUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Offer is not available"})
		return
	case err != nil:
		storeFailure(c, "Failed to place order", err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetMyOrders lists the caller's own orders, newest first.
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	list, err := h.Orders.ForCustomer(c.Request.Context(), s.UID)
	if err != nil {
		storeFailure(c, "Failed to fetch orders", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetBranchOrders lists the manager's branch orders, optionally by status.
func (h *OrderHandler) GetBranchOrders(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}
	list, err := h.Orders.ForBranch(c.Request.Context(), s.BranchID, status)
	if err != nil {
		storeFailure(c, "Failed to fetch orders", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var req dtos.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	next := models.OrderStatus(req.Status)
	if !next.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	order, err := h.Orders.UpdateStatus(c.Request.Context(), s.BranchID, c.Param("id"), next)
	var terr *models.TransitionError
	switch {
	case errors.As(err, &terr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   terr.Error(),
			"from":    terr.From,
			"to":      terr.To,
			"allowed": models.AllowedTransitions[terr.From],
		})
		return
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	case err != nil:
		storeFailure(c, "Failed to update order status", err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetOrderTransitions exposes the status machine to the front-end.
func (h *OrderHandler) GetOrderTransitions(c *gin.Context) {
	c.JSON(http.StatusOK, models.AllowedTransitions)
}
