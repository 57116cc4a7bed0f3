package pending

import (
	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/middleware"
	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/pagination"
	"github.com/plumablog/core/internal/pkg/response"
)

// Handler exposes drafts and submissions over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	g := r.Group("/pending", auth)
	{
		g.GET("", h.ListSubmissions)
		g.GET("/check/:articleID", h.CheckActive)
		g.GET("/:id", h.Get)
		g.POST("", h.Create)
		g.PUT("/:id", h.Update)
		g.PUT("/:id/push", h.Push)
		g.DELETE("/:id", h.Delete)
	}
	r.GET("/drafts", auth, h.ListDrafts)
}

func (h *Handler) Create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "titulo, contenido_markdown and tipo are required")
		return
	}
	pa, err := h.service.Create(middleware.CurrentUserID(c), middleware.CurrentRole(c), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg := "draft created"
	if !pa.IsDraft {
		msg = "article submitted for review"
	}
	response.Created(c, msg, gin.H{"_id": pa.ID})
}

func (h *Handler) Update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	pa, err := h.service.Update(c.Param("id"), middleware.CurrentUserID(c), middleware.IsAdmin(c), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if dto.empty() {
		response.Message(c, "no changes", gin.H{"_id": pa.ID})
		return
	}
	response.Message(c, "draft updated", gin.H{"_id": pa.ID})
}

func (h *Handler) Push(c *gin.Context) {
	ticketID, err := h.service.Push(c.Param("id"), middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "article submitted for review", gin.H{"id_request": ticketID})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id"), middleware.CurrentUserID(c), middleware.IsAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "draft deleted", nil)
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	var f SubmissionFilter
	if v := c.Query("estado"); v != "" {
		st := models.WorkflowState(v)
		f.State = &st
	}
	if v := c.Query("autor_id"); v != "" {
		f.AuthorID = &v
	}
	views, p, err := h.service.ListSubmissions(pagination.FromContext(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "pending_articles", views, p)
}

func (h *Handler) CheckActive(c *gin.Context) {
	active, err := h.service.CheckActive(c.Param("articleID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"active": active})
}

func (h *Handler) ListDrafts(c *gin.Context) {
	views, p, err := h.service.ListDrafts(pagination.FromContext(c), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "drawers", views, p)
}

func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}
