package tag

import (
	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/pkg/response"
)

// Handler exposes the tag catalog. Reads are public; writes are admin-only.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	g := r.Group("/tags")
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.POST("", auth, admin, h.Create)
		g.PUT("/:id", auth, admin, h.Update)
		g.DELETE("/:id", auth, admin, h.Delete)
	}
}

type tagDTO struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

func (h *Handler) List(c *gin.Context) {
	tags, err := h.service.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"tags": tags})
}

func (h *Handler) Get(c *gin.Context) {
	t, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

func (h *Handler) Create(c *gin.Context) {
	var dto tagDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	t, err := h.service.Create(dto.Name, dto.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "tag created", gin.H{"_id": t.ID})
}

func (h *Handler) Update(c *gin.Context) {
	var dto tagDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	t, err := h.service.Update(c.Param("id"), dto.Name, dto.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "tag updated", gin.H{"_id": t.ID})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "tag deleted", nil)
}
