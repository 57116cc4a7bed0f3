package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/pkg/response"
)

// Handler exposes signup and login.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/auth")
	{
		g.POST("/signup", h.Signup)
		g.POST("/login", h.Login)
	}
}

func (h *Handler) Signup(c *gin.Context) {
	var dto SignupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "nombre, correo and password (min 8 chars) are required")
		return
	}
	user, err := h.service.Signup(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "account created", gin.H{"_id": user.ID})
}

func (h *Handler) Login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "correo and password are required")
		return
	}
	token, user, err := h.service.Login(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "login successful", gin.H{
		"token": token,
		"user":  user,
	})
}
