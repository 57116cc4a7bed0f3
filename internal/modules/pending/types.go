package pending

import (
	"encoding/json"
	"time"

	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/apperr"
)

// TagList accepts the two tag shapes clients send — bare id strings and
// tag objects carrying an id field — and normalizes both to bare ids.
// Any other element shape is a validation error.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperr.Validationf("tags must be an array")
	}

	out := make([]string, 0, len(raw))
	for _, el := range raw {
		var s string
		if err := json.Unmarshal(el, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			MongoID string `json:"_id"`
			ID      string `json:"id"`
		}
		if err := json.Unmarshal(el, &obj); err == nil {
			if obj.MongoID != "" {
				out = append(out, obj.MongoID)
				continue
			}
			if obj.ID != "" {
				out = append(out, obj.ID)
				continue
			}
		}
		return apperr.Validationf("tags must be ids or objects with an _id field")
	}
	*t = out
	return nil
}

// CreateDTO is the payload for creating a draft or a direct submission.
// The author is taken from the authenticated request, never from the body.
type CreateDTO struct {
	Title             string            `json:"titulo" binding:"required"`
	Description       string            `json:"descripcion"`
	Markdown          string            `json:"contenido_markdown" binding:"required"`
	ImageURL          string            `json:"imagen_url"`
	Tags              TagList           `json:"tags"`
	Type              models.ChangeType `json:"tipo" binding:"required"`
	OriginalArticleID *string           `json:"id_articulo_original"`
	IsDraft           bool              `json:"borrador"`
}

// UpdateDTO is a partial patch. nil means "field not present".
type UpdateDTO struct {
	Title       *string `json:"titulo"`
	Description *string `json:"descripcion"`
	Markdown    *string `json:"contenido_markdown"`
	ImageURL    *string `json:"imagen_url"`
	Tags        TagList `json:"tags"`
}

func (d *UpdateDTO) empty() bool {
	return d.Title == nil && d.Description == nil && d.Markdown == nil &&
		d.ImageURL == nil && d.Tags == nil
}

// View is the enriched wire representation of a pending article.
type View struct {
	ID                string               `json:"_id"`
	Title             string               `json:"titulo"`
	Description       string               `json:"descripcion"`
	Markdown          string               `json:"contenido_markdown"`
	ImageURL          string               `json:"imagen_url"`
	Tags              []models.TagModel    `json:"tags"`
	AuthorName        string               `json:"autor"`
	AuthorID          string               `json:"autor_id"`
	CreatedAt         time.Time            `json:"fecha_creacion"`
	ModifiedAt        *time.Time           `json:"fecha_actualizacion,omitempty"`
	Type              models.ChangeType    `json:"tipo"`
	State             models.WorkflowState `json:"estado"`
	OriginalArticleID *string              `json:"id_articulo_original,omitempty"`
	IsDraft           bool                 `json:"borrador"`
}
