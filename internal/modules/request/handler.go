package request

import (
	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/middleware"
	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/pagination"
	"github.com/plumablog/core/internal/pkg/response"
)

// Handler exposes the moderation engine over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the request routes. Resolution endpoints are
// admin-only; submission and cancellation only need authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	articles := r.Group("/requests/articles")
	{
		articles.GET("", auth, h.ListArticleRequests)
		articles.GET("/:id", auth, h.GetArticleRequest)
		articles.PUT("/:id/approve", auth, admin, h.ApproveArticleRequest)
		articles.PUT("/:id/reject", auth, admin, h.RejectArticleRequest)
		articles.PUT("/:id/cancel", auth, h.CancelArticleRequest)
	}

	users := r.Group("/requests/users")
	{
		users.GET("", auth, h.ListUserRequests)
		users.GET("/:id", auth, h.GetUserRequest)
		users.POST("", auth, h.SubmitUserRequest)
		users.PUT("/:id/approve", auth, admin, h.ApproveUserRequest)
		users.PUT("/:id/reject", auth, admin, h.RejectUserRequest)
		users.PUT("/:id/cancel", auth, h.CancelUserRequest)
	}
}

func (h *Handler) ListArticleRequests(c *gin.Context) {
	views, p, err := h.service.ListArticleRequests(pagination.FromContext(c), filterFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "requests", views, p)
}

func (h *Handler) GetArticleRequest(c *gin.Context) {
	view, err := h.service.GetArticleRequest(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) ApproveArticleRequest(c *gin.Context) {
	articleID, err := h.service.ApproveArticleRequest(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "request approved", gin.H{"id_articulo": articleID})
}

func (h *Handler) RejectArticleRequest(c *gin.Context) {
	if err := h.service.RejectArticleRequest(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "request rejected", nil)
}

func (h *Handler) CancelArticleRequest(c *gin.Context) {
	err := h.service.CancelArticleRequest(c.Param("id"), middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "request canceled", nil)
}

func (h *Handler) SubmitUserRequest(c *gin.Context) {
	var dto SubmitUserRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "rol_deseado is required")
		return
	}
	req, err := h.service.SubmitUserRequest(middleware.CurrentUserID(c), dto.DesiredRole)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "role request submitted", gin.H{"_id": req.ID})
}

func (h *Handler) ListUserRequests(c *gin.Context) {
	views, p, err := h.service.ListUserRequests(pagination.FromContext(c), filterFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "requests", views, p)
}

func (h *Handler) GetUserRequest(c *gin.Context) {
	view, err := h.service.GetUserRequest(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) ApproveUserRequest(c *gin.Context) {
	if err := h.service.ApproveUserRequest(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "request approved", nil)
}

func (h *Handler) RejectUserRequest(c *gin.Context) {
	if err := h.service.RejectUserRequest(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "request rejected", nil)
}

func (h *Handler) CancelUserRequest(c *gin.Context) {
	err := h.service.CancelUserRequest(c.Param("id"), middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "request canceled", nil)
}

// filterFromContext reads the optional estado and user query filters.
// Article listings filter by autor_id, user listings by user_id.
func filterFromContext(c *gin.Context) ListFilter {
	var f ListFilter
	if v := c.Query("estado"); v != "" {
		st := models.WorkflowState(v)
		f.State = &st
	}
	if v := c.Query("autor_id"); v != "" {
		f.UserID = &v
	} else if v := c.Query("user_id"); v != "" {
		f.UserID = &v
	}
	return f
}
