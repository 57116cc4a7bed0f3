package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/jwt"
	"github.com/plumablog/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "user_role"
)

// Auth returns a middleware that enforces JWT authentication.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := validateToken(extractToken(c))
		if err != nil {
			response.Unauthorized(c, "authentication required")
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin enforces the admin capability. The asserted user is
// re-loaded from storage so a stale token cannot retain a revoked role.
// Must run after Auth.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := CurrentUserID(c)
		if uid == "" {
			response.Unauthorized(c, "authentication required")
			return
		}
		var u models.UserModel
		if err := db.Select("id, role").Where("id = ?", uid).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Unauthorized(c, "authentication required")
				return
			}
			response.Forbidden(c, "authorization check failed")
			return
		}
		if u.Role != models.RoleAdmin {
			response.Forbidden(c, "admin role required")
			return
		}
		c.Set(ContextKeyRole, string(u.Role))
		c.Next()
	}
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentRole extracts the authenticated user's role from context.
func CurrentRole(c *gin.Context) models.Role {
	v, _ := c.Get(ContextKeyRole)
	r, _ := v.(string)
	return models.Role(r)
}

// IsAdmin reports whether the request carries the admin role.
func IsAdmin(c *gin.Context) bool { return CurrentRole(c) == models.RoleAdmin }

func validateToken(raw string) (*jwt.Claims, error) {
	if raw == "" {
		return nil, errors.New("token is required")
	}
	return jwt.Parse(raw)
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return normalizeToken(auth)
	}
	return normalizeToken(c.Query("token"))
}

// normalizeToken trims spaces and strips an optional Bearer prefix.
func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
