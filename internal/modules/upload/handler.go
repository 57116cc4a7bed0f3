package upload

import (
	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/pkg/response"
)

// Handler exposes image upload over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	r.POST("/upload/image", auth, h.UploadImage)
}

// UploadImage accepts a multipart form with an "imagen" file field and
// returns the stored object's public URL.
func (h *Handler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("imagen")
	if err != nil {
		response.BadRequest(c, "imagen file field is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "could not read uploaded file")
		return
	}
	defer f.Close()

	url, err := h.service.UploadImage(c.Request.Context(), fh.Header.Get("Content-Type"), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "image uploaded", gin.H{"imagen_url": url})
}
