package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"restochain-backend/auth"
	"restochain-backend/docstore"
	"restochain-backend/middleware"
	"restochain-backend/models"
	"restochain-backend/session"

	"github.com/gin-gonic/gin"
)

// requireSession returns the caller's session or answers 401.
func requireSession(c *gin.Context) (*session.Session, bool) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil, false
	}
	return s, true
}

// storeFailure logs a store error and answers 500 with a generic message.
func storeFailure(c *gin.Context, msg string, err error) {
	log.Printf("%s: %v", msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// discardAccount undoes a sign-up whose profile write failed, so the email
// can be registered again.
func discardAccount(ctx context.Context, provider auth.Provider, id auth.Identity) {
	if err := provider.Delete(ctx, id); err != nil {
		log.Printf("WARNING: account %s (%s) has no profile and could not be removed: %v", id.UID, id.Email, err)
	}
}

// loadBranch answers 404 or 500 itself when the branch cannot be read.
func loadBranch(c *gin.Context, store docstore.Store, branchID string) (models.Branch, bool) {
	var branch models.Branch
	err := store.Get(c.Request.Context(), docstore.Doc(docstore.Branches, branchID), &branch)
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
		return branch, false
	}
	if err != nil {
		storeFailure(c, "Failed to fetch branch", err)
		return branch, false
	}
	branch.ID = branchID
	return branch, true
}

func loadProduct(c *gin.Context, store docstore.Store, productID string) (models.Product, bool) {
	var product models.Product
	err := store.Get(c.Request.Context(), docstore.Doc(docstore.Products, productID), &product)
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return product, false
	}
	if err != nil {
		storeFailure(c, "Failed to fetch product", err)
		return product, false
	}
	product.ID = productID
	return product, true
}

// newestFirst sorts any slice by a creation timestamp, most recent first.
func newestFirst[T any](list []T, at func(T) time.Time) {
	sort.SliceStable(list, func(i, j int) bool {
		return at(list[i]).After(at(list[j]))
	})
}
