// Package dtos holds request bodies and job records exchanged over HTTP.
package dtos

import "time"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"max=100"`
	Phone    string `json:"phone" binding:"max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateBranchRequest creates a branch together with its manager account.
type CreateBranchRequest struct {
	BranchName      string `json:"branchName" binding:"required,max=100"`
	ManagerName     string `json:"managerName" binding:"required,max=100"`
	ManagerEmail    string `json:"email" binding:"required,email"`
	ManagerPassword string `json:"password" binding:"required,min=6"`
	Phone           string `json:"phone" binding:"required,max=30"`
	Address         string `json:"address" binding:"required"`
	City            string `json:"city" binding:"required"`
	State           string `json:"state"`
	ZipCode         string `json:"zipCode"`
	BranchImageURL  string `json:"branchImageUrl" binding:"omitempty,url"`
}

type UpdateBranchRequest struct {
	BranchName     *string `json:"branchName" binding:"omitempty,min=1,max=100"`
	Phone          *string `json:"phone" binding:"omitempty,max=30"`
	Address        *string `json:"address" binding:"omitempty,min=1"`
	City           *string `json:"city" binding:"omitempty,min=1"`
	State          *string `json:"state"`
	ZipCode        *string `json:"zipCode"`
	BranchImageURL *string `json:"branchImageUrl" binding:"omitempty,url"`
	IsActive       *bool   `json:"isActive"`
}

type ProductRequest struct {
	Title           string  `json:"title" binding:"required,max=150"`
	Description     string  `json:"description" binding:"required"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	PreviousPrice   float64 `json:"previousPrice" binding:"gte=0"`
	Category        string  `json:"category" binding:"required"`
	IsAvailable     *bool   `json:"isAvailable"`
	StockQty        int     `json:"stockQty" binding:"gte=0"`
	ImageURL        string  `json:"imageUrl" binding:"omitempty,url"`
	MirrorImage     bool    `json:"mirrorImage"`
	PreparationTime int     `json:"preparationTime" binding:"gte=0"`
	Calories        int     `json:"calories" binding:"gte=0"`
	Ingredients     string  `json:"ingredients"`
}

type UpdateProductRequest struct {
	Title           *string  `json:"title" binding:"omitempty,min=1,max=150"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price" binding:"omitempty,gt=0"`
	PreviousPrice   *float64 `json:"previousPrice" binding:"omitempty,gte=0"`
	Category        *string  `json:"category" binding:"omitempty,min=1"`
	IsAvailable     *bool    `json:"isAvailable"`
	StockQty        *int     `json:"stockQty" binding:"omitempty,gte=0"`
	PreparationTime *int     `json:"preparationTime" binding:"omitempty,gte=0"`
	Calories        *int     `json:"calories" binding:"omitempty,gte=0"`
	Ingredients     *string  `json:"ingredients"`
}

// StockUpdateRequest adds or removes units. RequestID makes retries safe.
type StockUpdateRequest struct {
	Delta     int    `json:"delta" binding:"required,gte=1"`
	Mode      string `json:"mode" binding:"required,oneof=add remove"`
	RequestID string `json:"requestId" binding:"omitempty,max=128"`
}

type SetStockRequest struct {
	Quantity  *int   `json:"quantity" binding:"required,gte=0"`
	RequestID string `json:"requestId" binding:"omitempty,max=128"`
}

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type PlaceOrderRequest struct {
	BranchID        string `json:"branchId" binding:"required"`
	CustomerName    string `json:"customerName" binding:"required,max=100"`
	CustomerContact string `json:"customerContact" binding:"required,max=30"`
	CustomerEmail   string `json:"customerEmail" binding:"omitempty,email"`
	OfferID         string `json:"offerId"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OfferRequest struct {
	Title         string    `json:"title" binding:"required,max=100"`
	Description   string    `json:"description"`
	DiscountType  string    `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue float64   `json:"discountValue" binding:"required,gt=0"`
	StartDate     time.Time `json:"startDate" binding:"required"`
	EndDate       time.Time `json:"endDate" binding:"required"`
	IsActive      *bool     `json:"isActive"`
}

type EmployeeRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
	Role      string `json:"role" binding:"required,oneof=waiter cashier chef manager"`
	Status    string `json:"status" binding:"omitempty,oneof=active inactive"`
	HiredDate string `json:"hiredDate" binding:"omitempty,datetime=2006-01-02"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}
