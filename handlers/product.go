package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"restochain-backend/docstore"
	"restochain-backend/dtos"
	"restochain-backend/firebase"
	"restochain-backend/models"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	Store   docstore.Store
	Storage firebase.StorageClient
}

func (h *ProductHandler) listProducts(c *gin.Context) ([]models.Product, bool) {
	var products []models.Product
	if err := h.Store.List(c.Request.Context(), docstore.Products, &products); err != nil {
		storeFailure(c, "Failed to fetch products", err)
		return nil, false
	}
	newestFirst(products, func(p models.Product) time.Time { return p.CreatedAt })
	return products, true
}

// GetProducts is the public menu: available products, optionally by category.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, ok := h.listProducts(c)
	if !ok {
		return
	}
	category := c.Query("category")
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.IsAvailable {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, out)
}

// GetAllProducts includes unavailable products, for admins and managers.
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	products, ok := h.listProducts(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, ok := loadProduct(c, h.Store, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dtos.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	now := time.Now().UTC()
	product := models.Product{
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		PreviousPrice:   req.PreviousPrice,
		Category:        req.Category,
		IsAvailable:     true,
		StockQty:        req.StockQty,
		ImageURL:        req.ImageURL,
		PreparationTime: req.PreparationTime,
		Calories:        req.Calories,
		Ingredients:     req.Ingredients,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	ctx := c.Request.Context()
	id, err := h.Store.Create(ctx, docstore.Products, &product)
	if err != nil {
		storeFailure(c, "Failed to create product", err)
		return
	}
	product.ID = id

	// Copy an external image into our bucket so the menu does not depend on
	// third-party hosting. A failed copy keeps the original URL.
	if req.MirrorImage && req.ImageURL != "" {
		url, err := h.Storage.MirrorProductImage(ctx, req.ImageURL, id)
		if err != nil {
			log.Printf("WARNING: failed to mirror image for product %s: %v", id, err)
		} else if err := h.Store.Merge(ctx, docstore.Doc(docstore.Products, id), map[string]any{"imageUrl": url}); err != nil {
			log.Printf("WARNING: failed to store mirrored image for product %s: %v", id, err)
		} else {
			product.ImageURL = url
		}
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var req dtos.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if _, ok := loadProduct(c, h.Store, id); !ok {
		return
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.PreviousPrice != nil {
		fields["previousPrice"] = *req.PreviousPrice
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.IsAvailable != nil {
		fields["isAvailable"] = *req.IsAvailable
	}
	if req.StockQty != nil {
		fields["stockQty"] = *req.StockQty
	}
	if req.PreparationTime != nil {
		fields["preparationTime"] = *req.PreparationTime
	}
	if req.Calories != nil {
		fields["calories"] = *req.Calories
	}
	if req.Ingredients != nil {
		fields["ingredients"] = *req.Ingredients
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	fields["updatedAt"] = time.Now().UTC()

	if err := h.Store.Merge(c.Request.Context(), docstore.Doc(docstore.Products, id), fields); err != nil {
		storeFailure(c, "Failed to update product", err)
		return
	}
	product, ok := loadProduct(c, h.Store, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, product)
}

// deleteStoredImage removes an image we host. URLs elsewhere are left alone.
func (h *ProductHandler) deleteStoredImage(c *gin.Context, imageURL string) {
	if imageURL == "" {
		return
	}
	_, objectPath, err := firebase.ObjectPath(imageURL)
	if err != nil {
		return
	}
	if err := h.Storage.DeleteFile(c.Request.Context(), objectPath); err != nil {
		log.Printf("WARNING: failed to delete image %s: %v", objectPath, err)
	}
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	product, ok := loadProduct(c, h.Store, id)
	if !ok {
		return
	}
	if err := h.Store.Delete(c.Request.Context(), docstore.Doc(docstore.Products, id)); err != nil {
		storeFailure(c, "Failed to delete product", err)
		return
	}
	h.deleteStoredImage(c, product.ImageURL)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadProductImage replaces a product's image with a multipart upload.
func (h *ProductHandler) UploadProductImage(c *gin.Context) {
	id := c.Param("id")
	product, ok := loadProduct(c, h.Store, id)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}
	if err := utils.ValidateFileUpload(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	imageURL, err := h.Storage.UploadProductImage(ctx, file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if errors.Is(err, firebase.ErrStorageDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}
	if err != nil {
		log.Printf("Image upload failed for product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
		return
	}

	now := time.Now().UTC()
	err = h.Store.Merge(ctx, docstore.Doc(docstore.Products, id), map[string]any{
		"imageUrl":  imageURL,
		"updatedAt": now,
	})
	if err != nil {
		storeFailure(c, "Failed to update product image", err)
		return
	}
	h.deleteStoredImage(c, product.ImageURL)

	product.ImageURL = imageURL
	product.UpdatedAt = now
	c.JSON(http.StatusOK, product)
}
