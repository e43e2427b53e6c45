package handlers

import (
	"errors"
	"net/http"
	"time"

	"restochain-backend/docstore"
	"restochain-backend/dtos"
	"restochain-backend/models"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	Store docstore.Store
	// Now is overridden in tests.
	Now func() time.Time
}

// offerView adds the status derived from endDate at read time.
type offerView struct {
	models.Offer
	Status string `json:"status"`
}

func (h *OfferHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func validateOffer(req dtos.OfferRequest) error {
	if !req.EndDate.After(req.StartDate) {
		return errors.New("endDate must be after startDate")
	}
	if models.DiscountType(req.DiscountType) == models.DiscountPercentage && req.DiscountValue > 100 {
		return errors.New("percentage discount cannot exceed 100")
	}
	return nil
}

func (h *OfferHandler) loadOffer(c *gin.Context, id string) (models.Offer, bool) {
	var offer models.Offer
	err := h.Store.Get(c.Request.Context(), docstore.Doc(docstore.Offers, id), &offer)
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return offer, false
	}
	if err != nil {
		storeFailure(c, "Failed to fetch offer", err)
		return offer, false
	}
	return offer, true
}

func (h *OfferHandler) views(c *gin.Context, publicOnly bool) ([]offerView, bool) {
	var offers []models.Offer
	if err := h.Store.List(c.Request.Context(), docstore.Offers, &offers); err != nil {
		storeFailure(c, "Failed to fetch offers", err)
		return nil, false
	}
	newestFirst(offers, func(o models.Offer) time.Time { return o.CreatedAt })

	now := h.now()
	out := make([]offerView, 0, len(offers))
	for _, o := range offers {
		if publicOnly && (!o.IsActive || o.IsExpired(now)) {
			continue
		}
		out = append(out, offerView{Offer: o, Status: o.Status(now)})
	}
	return out, true
}

// GetOffers lists active, unexpired offers for customers.
func (h *OfferHandler) GetOffers(c *gin.Context) {
	out, ok := h.views(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetAllOffers includes inactive and expired offers.
func (h *OfferHandler) GetAllOffers(c *gin.Context) {
	out, ok := h.views(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var req dtos.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if err := validateOffer(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer := models.Offer{
		Title:         req.Title,
		Description:   req.Description,
		DiscountType:  models.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		StartDate:     req.StartDate.UTC(),
		EndDate:       req.EndDate.UTC(),
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}

	id, err := h.Store.Create(c.Request.Context(), docstore.Offers, &offer)
	if err != nil {
		storeFailure(c, "Failed to create offer", err)
		return
	}
	offer.ID = id
	c.JSON(http.StatusCreated, offerView{Offer: offer, Status: offer.Status(h.now())})
}

// UpdateOffer replaces the editable fields of an offer. The creation time is kept.
func (h *OfferHandler) UpdateOffer(c *gin.Context) {
	id := c.Param("id")
	var req dtos.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if err := validateOffer(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offer, ok := h.loadOffer(c, id)
	if !ok {
		return
	}

	offer.Title = req.Title
	offer.Description = req.Description
	offer.DiscountType = models.DiscountType(req.DiscountType)
	offer.DiscountValue = req.DiscountValue
	offer.StartDate = req.StartDate.UTC()
	offer.EndDate = req.EndDate.UTC()
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}

	if err := h.Store.Set(c.Request.Context(), docstore.Doc(docstore.Offers, id), &offer); err != nil {
		storeFailure(c, "Failed to update offer", err)
		return
	}
	c.JSON(http.StatusOK, offerView{Offer: offer, Status: offer.Status(h.now())})
}

func (h *OfferHandler) DeleteOffer(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.loadOffer(c, id); !ok {
		return
	}
	if err := h.Store.Delete(c.Request.Context(), docstore.Doc(docstore.Offers, id)); err != nil {
		storeFailure(c, "Failed to delete offer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Offer deleted"})
}
