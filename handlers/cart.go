package handlers

import (
	"net/http"

	"restochain-backend/docstore"
	"restochain-backend/dtos"
	"restochain-backend/models"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

// CartHandler serves the caller's in-session cart. Nothing here is persisted.
type CartHandler struct {
	Store docstore.Store
}

func (h *CartHandler) GetCart(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Cart.Snapshot())
}

// AddToCart snapshots the product's current title, price and image into the
// cart, or bumps the quantity of an existing entry.
func (h *CartHandler) AddToCart(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var req dtos.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	product, ok := loadProduct(c, h.Store, req.ProductID)
	if !ok {
		return
	}
	if !product.IsAvailable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product is not available"})
		return
	}

	s.Cart.Add(models.CartItem{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
		Category:  product.Category,
	})
	c.JSON(http.StatusOK, s.Cart.Snapshot())
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	s.Cart.Remove(c.Param("productId"))
	c.JSON(http.StatusOK, s.Cart.Snapshot())
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	s.Cart.Clear()
	c.JSON(http.StatusOK, s.Cart.Snapshot())
}
