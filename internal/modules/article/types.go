package article

import (
	"time"

	"github.com/plumablog/core/internal/models"
)

// View is the enriched wire representation of a published article. The id
// key is "id" here, unlike the "_id" used everywhere else; existing
// clients depend on this asymmetry.
type View struct {
	ID          string            `json:"id"`
	Title       string            `json:"titulo"`
	Description string            `json:"descripcion"`
	Markdown    string            `json:"contenido_markdown"`
	ImageURL    string            `json:"imagen_url"`
	Tags        []models.TagModel `json:"tags"`
	AuthorName  string            `json:"autor"`
	AuthorID    string            `json:"autor_id"`
	CreatedAt   time.Time         `json:"fecha_creacion"`
	ModifiedAt  *time.Time        `json:"fecha_actualizacion,omitempty"`
}

// ListFilter narrows the catalog listing.
type ListFilter struct {
	TagID    *string
	AuthorID *string
}
