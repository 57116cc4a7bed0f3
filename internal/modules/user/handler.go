package user

import (
	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/pagination"
	"github.com/plumablog/core/internal/pkg/response"
)

// Handler exposes account listing and direct role assignment.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	g := r.Group("/users", auth)
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.PUT("/:id/role", admin, h.SetRole)
	}
}

func (h *Handler) List(c *gin.Context) {
	var role *models.Role
	if v := c.Query("rol"); v != "" {
		r := models.Role(v)
		role = &r
	}
	users, p, err := h.service.List(pagination.FromContext(c), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "users", users, p)
}

func (h *Handler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

func (h *Handler) SetRole(c *gin.Context) {
	var dto struct {
		Role models.Role `json:"rol" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "rol is required")
		return
	}
	if err := h.service.SetRole(c.Param("id"), dto.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "role updated", nil)
}
