// Package response centralizes the JSON envelope: successes carry a
// message plus payload fields, failures carry {"error": ...} with the
// status mapped from the apperr taxonomy.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/pkg/apperr"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// OK sends a 200 response with the given payload.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Message sends a 200 response with a message and optional extra fields.
func Message(c *gin.Context, msg string, extra gin.H) {
	body := gin.H{"message": msg}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Created sends a 201 response with a message and optional extra fields.
func Created(c *gin.Context, msg string, extra gin.H) {
	body := gin.H{"message": msg}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusCreated, body)
}

// Paged sends a paginated collection keyed by its collection name, e.g.
// {"articles": [...], "pagination": {...}}.
func Paged(c *gin.Context, key string, items interface{}, p Pagination) {
	c.JSON(http.StatusOK, gin.H{key: items, "pagination": p})
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": message})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": message})
}

// Error maps a domain error to its HTTP status. Unknown and storage errors
// surface as a generic 500 without internal detail.
func Error(c *gin.Context, err error) {
	msg := apperr.MessageOf(err)
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
	case apperr.KindInvalidState:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": msg})
	case apperr.KindNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": msg})
	case apperr.KindUnauthorized:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
	case apperr.KindForbidden:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msg})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
