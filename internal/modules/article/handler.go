package article

import (
	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/middleware"
	"github.com/plumablog/core/internal/pkg/pagination"
	"github.com/plumablog/core/internal/pkg/response"
)

// Handler exposes the published catalog over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the article routes. Reads are public; deletion and
// rendering need authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	g := r.Group("/articles")
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.GET("/:id/render", h.Render)
		g.DELETE("/:id", auth, h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if v := c.Query("tag"); v != "" {
		f.TagID = &v
	}
	if v := c.Query("autor_id"); v != "" {
		f.AuthorID = &v
	}
	views, p, err := h.service.List(pagination.FromContext(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "articles", views, p)
}

func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Param("id"), middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "article deleted", nil)
}

func (h *Handler) Render(c *gin.Context) {
	out, err := h.service.Render(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"html": out})
}
