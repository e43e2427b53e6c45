package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"restochain-backend/access"
	"restochain-backend/auth"
	"restochain-backend/docstore"
	"restochain-backend/dtos"
	"restochain-backend/middleware"
	"restochain-backend/models"
	"restochain-backend/session"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Store    docstore.Store
	Provider auth.Provider
	Sessions *session.Manager
}

// sessionView is the JSON shape of a session, including the anonymous one.
func sessionView(s *session.Session) gin.H {
	if s == nil {
		return gin.H{"state": session.Anonymous, "authenticated": false}
	}
	return gin.H{
		"state":         s.State,
		"authenticated": true,
		"uid":           s.UID,
		"email":         s.Email,
		"role":          s.Role,
		"branchId":      s.BranchID,
		"fullName":      s.FullName,
		"cartItems":     s.Cart.Len(),
	}
}

// Register creates a customer account and its profile.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	ctx := c.Request.Context()
	id, err := h.Provider.SignUp(ctx, req.Email, req.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if err != nil {
		storeFailure(c, "Failed to create account", err)
		return
	}

	user := models.User{
		Email:     id.Email,
		Role:      models.RoleCustomer,
		FullName:  req.FullName,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.Set(ctx, docstore.Doc(docstore.Users, id.UID), &user); err != nil {
		discardAccount(ctx, h.Provider, id)
		storeFailure(c, "Failed to create user profile", err)
		return
	}
	user.UID = id.UID

	resp := gin.H{"user": user}
	token, _, err := h.Provider.SignIn(ctx, req.Email, req.Password)
	switch {
	case err == nil:
		resp["token"] = token
	case errors.Is(err, auth.ErrUnsupported):
	default:
		log.Printf("Error signing in new user %s: %v", id.UID, err)
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	ctx := c.Request.Context()
	token, id, err := h.Provider.SignIn(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	case errors.Is(err, auth.ErrUnsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Sign in through the identity provider and send its ID token"})
		return
	case err != nil:
		storeFailure(c, "Failed to sign in", err)
		return
	}

	s, err := h.Sessions.Establish(ctx, id)
	switch {
	case errors.Is(err, session.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "Your account has been disabled"})
		return
	case errors.Is(err, session.ErrNoProfile):
		c.JSON(http.StatusForbidden, gin.H{"error": "No role assigned to this account"})
		return
	case err != nil:
		storeFailure(c, "Failed to load session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "session": sessionView(s)})
}

// Logout revokes the caller's tokens and discards the session and its cart.
func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.Provider.SignOut(c.Request.Context(), s.UID); err != nil {
		storeFailure(c, "Failed to sign out", err)
		return
	}
	h.Sessions.Drop(s.UID)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// GetSession reports the caller's session state; anonymous callers get 200 too.
func (h *AuthHandler) GetSession(c *gin.Context) {
	s, _ := middleware.CurrentSession(c)
	c.JSON(http.StatusOK, sessionView(s))
}

// Navigate resolves a front-end path against the caller's session.
func (h *AuthHandler) Navigate(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		path = "/"
	}
	state := session.Anonymous
	if s, ok := middleware.CurrentSession(c); ok {
		state = s.State
	}
	c.JSON(http.StatusOK, access.Resolve(state, path))
}
