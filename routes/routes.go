package routes

import (
	"net/http"
	"time"

	"restochain-backend/auth"
	"restochain-backend/docstore"
	"restochain-backend/firebase"
	"restochain-backend/handlers"
	"restochain-backend/inventory"
	"restochain-backend/middleware"
	"restochain-backend/models"
	"restochain-backend/orders"
	"restochain-backend/session"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

// Sign-in and sign-up attempts allowed per client and route.
const (
	authBurst  = 10
	authWindow = time.Minute
)

// Deps are the long-lived services the handlers share.
type Deps struct {
	Store    docstore.Store
	Provider auth.Provider
	Sessions *session.Manager
	Storage  firebase.StorageClient
	Jobs     *utils.JobStore
}

func SetupRoutes(r *gin.Engine, d Deps) {
	utils.UseJSONFieldNames()
	if d.Jobs == nil {
		d.Jobs = utils.NewJobStore()
	}
	ledger := inventory.NewLedger(d.Store)

	authHandler := &handlers.AuthHandler{Store: d.Store, Provider: d.Provider, Sessions: d.Sessions}
	branchHandler := &handlers.BranchHandler{Store: d.Store, Provider: d.Provider, Sessions: d.Sessions}
	productHandler := &handlers.ProductHandler{Store: d.Store, Storage: d.Storage}
	cartHandler := &handlers.CartHandler{Store: d.Store}
	orderHandler := &handlers.OrderHandler{Orders: orders.NewService(d.Store)}
	inventoryHandler := &handlers.InventoryHandler{Store: d.Store, Ledger: ledger, Jobs: d.Jobs}
	offerHandler := &handlers.OfferHandler{Store: d.Store}
	employeeHandler := &handlers.EmployeeHandler{Store: d.Store}
	reviewHandler := &handlers.ReviewHandler{Store: d.Store}
	dashboardHandler := &handlers.DashboardHandler{Store: d.Store, Ledger: ledger}

	limiter := middleware.NewRateLimiter(authBurst, authWindow)
	requireSession := middleware.SessionMiddleware(d.Provider, d.Sessions)

	// Public routes
	api := r.Group("/api")
	{
		api.POST("/auth/register", limiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", limiter.Middleware(), authHandler.Login)

		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/branches", branchHandler.ListActiveBranches)
		api.GET("/branches/:branchId/reviews", reviewHandler.GetBranchReviews)
		api.GET("/offers", offerHandler.GetOffers)
		api.GET("/orders/transitions", orderHandler.GetOrderTransitions)
	}

	// Session-aware routes answer anonymous callers too
	optional := api.Group("")
	optional.Use(middleware.OptionalSession(d.Provider, d.Sessions))
	{
		optional.GET("/session", authHandler.GetSession)
		optional.GET("/navigate", authHandler.Navigate)
	}

	protected := api.Group("")
	protected.Use(requireSession)
	{
		protected.POST("/auth/logout", authHandler.Logout)
	}

	customer := protected.Group("")
	customer.Use(middleware.RequireRole(models.RoleCustomer))
	{
		customer.GET("/cart", cartHandler.GetCart)
		customer.POST("/cart", cartHandler.AddToCart)
		customer.DELETE("/cart/:productId", cartHandler.RemoveFromCart)
		customer.DELETE("/cart", cartHandler.ClearCart)

		customer.POST("/orders", orderHandler.PlaceOrder)
		customer.GET("/orders", orderHandler.GetMyOrders)

		customer.POST("/branches/:branchId/reviews", reviewHandler.CreateReview)
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(requireSession, middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", dashboardHandler.GetAdminDashboard)

		admin.GET("/branches", branchHandler.ListBranches)
		admin.POST("/branches", branchHandler.CreateBranch)
		admin.GET("/branches/:id", branchHandler.GetBranch)
		admin.PUT("/branches/:id", branchHandler.UpdateBranch)
		admin.DELETE("/branches/:id", branchHandler.DeleteBranch)

		admin.GET("/products", productHandler.GetAllProducts)
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.POST("/products/:id/image", productHandler.UploadProductImage)

		admin.GET("/inventory", inventoryHandler.GetInventoryOverview)
		admin.POST("/inventory/reconcile", inventoryHandler.StartReconcileJob)
		admin.GET("/inventory/:branchId", inventoryHandler.GetBranchInventory)
		admin.GET("/inventory/:branchId/history", inventoryHandler.GetBranchHistory)
		admin.GET("/inventory/:branchId/reconcile", inventoryHandler.ReconcileBranch)
		admin.POST("/inventory/:branchId/:productId", inventoryHandler.AdminUpdateStock)
		admin.GET("/jobs/:id", inventoryHandler.GetReconcileJob)

		admin.GET("/offers", offerHandler.GetAllOffers)
		admin.POST("/offers", offerHandler.CreateOffer)
		admin.PUT("/offers/:id", offerHandler.UpdateOffer)
		admin.DELETE("/offers/:id", offerHandler.DeleteOffer)

		admin.GET("/employees", employeeHandler.GetAllEmployees)
	}

	// Branch manager routes, scoped to the manager's own branch
	branch := api.Group("/branch")
	branch.Use(requireSession, middleware.BranchManagerMiddleware())
	{
		branch.GET("/dashboard", dashboardHandler.GetBranchDashboard)
		branch.GET("/products", productHandler.GetAllProducts)

		branch.GET("/inventory", inventoryHandler.GetMyInventory)
		branch.GET("/inventory/history", inventoryHandler.GetMyHistory)
		branch.POST("/inventory/:productId", inventoryHandler.UpdateMyStock)
		branch.PUT("/inventory/:productId", inventoryHandler.SetMyStock)

		branch.GET("/orders", orderHandler.GetBranchOrders)
		branch.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

		branch.GET("/employees", employeeHandler.GetMyEmployees)
		branch.POST("/employees", employeeHandler.CreateEmployee)
		branch.PUT("/employees/:id", employeeHandler.UpdateEmployee)
		branch.DELETE("/employees/:id", employeeHandler.DeleteEmployee)

		branch.GET("/reviews", reviewHandler.GetMyReviews)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
