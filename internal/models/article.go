package models

import "time"

// ArticleModel is a published article. Rows are created and mutated only
// by the moderation engine's approval path; the id (aNNN) comes from the
// sequence allocator, never from the database.
type ArticleModel struct {
	ID          string      `json:"_id"                gorm:"primaryKey;size:64"`
	Title       string      `json:"titulo"             gorm:"not null"`
	Markdown    string      `json:"contenido_markdown" gorm:"type:longtext"`
	ImageURL    string      `json:"imagen_url"`
	Tags        StringSlice `json:"tags"               gorm:"type:json;serializer:json"`
	AuthorID    string      `json:"autor_id"           gorm:"index"`
	Description string      `json:"descripcion"`
	CreatedAt   time.Time   `json:"fecha_creacion"`
	// ModifiedAt is stamped only by approval of an update request.
	ModifiedAt *time.Time `json:"fecha_actualizacion,omitempty"`
}

func (ArticleModel) TableName() string { return "articles" }
