package models

import "time"

// PendingArticleModel is a draft or an in-flight content change (id paNNN).
//
// Exactly one of the two shapes holds:
//   - Type == ChangeNew and OriginalArticleID == nil
//   - Type == ChangeUpdate and OriginalArticleID references an article
//
// While IsDraft is true the row is freely editable by its author. Pushing
// flips IsDraft to false and links the row to exactly one article request;
// from then on State is owned by the moderation engine.
type PendingArticleModel struct {
	ID                string        `json:"_id"                gorm:"primaryKey;size:64"`
	Title             string        `json:"titulo"`
	Markdown          string        `json:"contenido_markdown" gorm:"type:longtext"`
	ImageURL          string        `json:"imagen_url"`
	Tags              StringSlice   `json:"tags"               gorm:"type:json;serializer:json"`
	AuthorID          string        `json:"autor_id"           gorm:"index"`
	Description       string        `json:"descripcion"`
	Type              ChangeType    `json:"tipo"               gorm:"size:16"`
	OriginalArticleID *string       `json:"id_articulo_original,omitempty" gorm:"index"`
	IsDraft           bool          `json:"borrador"           gorm:"index"`
	State             WorkflowState `json:"estado"             gorm:"size:16;index"`
	CreatedAt         time.Time     `json:"fecha_creacion"`
	ModifiedAt        *time.Time    `json:"fecha_actualizacion,omitempty"`
}

func (PendingArticleModel) TableName() string { return "pending_articles" }
