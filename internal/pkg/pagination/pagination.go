package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 9
	MaxPerPage     = 100
)

// Query holds parsed pagination parameters.
type Query struct {
	Page    int
	PerPage int
}

// FromContext extracts and validates pagination params from the request.
func FromContext(c *gin.Context) Query {
	page := parseIntOr(c.DefaultQuery("page", "1"), DefaultPage)
	perPage := parseIntOr(c.DefaultQuery("per_page", "9"), DefaultPerPage)

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return Query{Page: page, PerPage: perPage}
}

// Paginate applies limit/offset to a GORM query and returns the pagination
// metadata. Total is always a true count of the filtered set, never the
// length of the returned page.
func Paginate[T any](tx *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	offset := (q.Page - 1) * q.PerPage
	if err := tx.Offset(offset).Limit(q.PerPage).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}

	pages := int((total + int64(q.PerPage) - 1) / int64(q.PerPage))

	return response.Pagination{
		Total:   total,
		Page:    q.Page,
		PerPage: q.PerPage,
		Pages:   pages,
	}, nil
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
