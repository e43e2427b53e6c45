package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"restochain-backend/auth"
	"restochain-backend/models"
	"restochain-backend/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func establish(c *gin.Context, provider auth.Provider, sessions *session.Manager, token string) (*session.Session, int, string) {
	id, err := provider.Verify(c.Request.Context(), token)
	if errors.Is(err, auth.ErrInvalidToken) {
		return nil, http.StatusUnauthorized, "Invalid or expired token"
	}
	if err != nil {
		log.Printf("Error verifying token: %v", err)
		return nil, http.StatusInternalServerError, "Failed to verify session"
	}

	s, err := sessions.Establish(c.Request.Context(), id)
	switch {
	case errors.Is(err, session.ErrAccountDisabled):
		return nil, http.StatusForbidden, "Account is disabled"
	case errors.Is(err, session.ErrNoProfile):
		return nil, http.StatusForbidden, "No role assigned to this account"
	case err != nil:
		log.Printf("Error establishing session for %s: %v", id.UID, err)
		return nil, http.StatusInternalServerError, "Failed to load session"
	}
	return s, 0, ""
}

func bind(c *gin.Context, s *session.Session) {
	c.Set(sessionKey, s)
	c.Set("user_id", s.UID)
	c.Set("user_role", string(s.Role))
	if s.BranchID != "" {
		c.Set("branch_id", s.BranchID)
	}
}

// SessionMiddleware verifies the bearer token and attaches the caller's
// session to the request.
func SessionMiddleware(provider auth.Provider, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		s, status, msg := establish(c, provider, sessions, token)
		if s == nil {
			c.JSON(status, gin.H{"error": msg})
			c.Abort()
			return
		}

		bind(c, s)
		c.Next()
	}
}

// OptionalSession attaches a session when a valid token is present and
// otherwise lets the request through as anonymous.
func OptionalSession(provider auth.Provider, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if s, _, _ := establish(c, provider, sessions, token); s != nil {
				bind(c, s)
			}
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by SessionMiddleware.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

func hasRole(c *gin.Context, roles ...models.Role) bool {
	s, ok := CurrentSession(c)
	if !ok {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// RequireRole lets the request through only for the given roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hasRole(c, roles...) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role for this resource"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// BranchManagerMiddleware requires a branch manager whose profile names a branch.
func BranchManagerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hasRole(c, models.RoleBranchManager) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Branch manager access required"})
			c.Abort()
			return
		}
		if _, exists := c.Get("branch_id"); !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "No branch associated with this account"})
			c.Abort()
			return
		}
		c.Next()
	}
}
