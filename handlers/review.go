package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"restochain-backend/docstore"
	"restochain-backend/dtos"
	"restochain-backend/models"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Store docstore.Store
}

type reviewSummary struct {
	BranchID      string          `json:"branchId"`
	Count         int             `json:"count"`
	AverageRating float64         `json:"averageRating"`
	Reviews       []models.Review `json:"reviews"`
}

// averageRating is rounded to one decimal; no reviews gives 0.
func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}

func (h *ReviewHandler) branchReviews(c *gin.Context, branchID string) ([]models.Review, bool) {
	var list []models.Review
	if err := h.Store.Where(c.Request.Context(), docstore.Reviews, "branchId", branchID, &list); err != nil {
		storeFailure(c, "Failed to fetch reviews", err)
		return nil, false
	}
	newestFirst(list, func(r models.Review) time.Time { return r.CreatedAt })
	return list, true
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var req dtos.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	branch, ok := loadBranch(c, h.Store, c.Param("branchId"))
	if !ok {
		return
	}

	name := s.FullName
	if name == "" {
		name = s.Email
	}
	review := models.Review{
		BranchID:     branch.ID,
		CustomerID:   s.UID,
		CustomerName: name,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CreatedAt:    time.Now().UTC(),
	}
	id, err := h.Store.Create(c.Request.Context(), docstore.Reviews, &review)
	if err != nil {
		storeFailure(c, "Failed to create review", err)
		return
	}
	review.ID = id
	c.JSON(http.StatusCreated, review)
}

// GetBranchReviews is public.
func (h *ReviewHandler) GetBranchReviews(c *gin.Context) {
	branch, ok := loadBranch(c, h.Store, c.Param("branchId"))
	if !ok {
		return
	}
	list, ok := h.branchReviews(c, branch.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reviewSummary{
		BranchID:      branch.ID,
		Count:         len(list),
		AverageRating: averageRating(list),
		Reviews:       list,
	})
}

// GetMyReviews lists the manager's branch reviews. The average always covers
// every review; ?rating narrows only the returned list.
func (h *ReviewHandler) GetMyReviews(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	rating := 0
	if v := c.Query("rating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
			return
		}
		rating = n
	}

	list, ok := h.branchReviews(c, s.BranchID)
	if !ok {
		return
	}
	summary := reviewSummary{
		BranchID:      s.BranchID,
		Count:         len(list),
		AverageRating: averageRating(list),
		Reviews:       list,
	}
	if rating != 0 {
		filtered := make([]models.Review, 0, len(list))
		for _, r := range list {
			if r.Rating == rating {
				filtered = append(filtered, r)
			}
		}
		summary.Reviews = filtered
	}
	c.JSON(http.StatusOK, summary)
}
