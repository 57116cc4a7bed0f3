package models

import "time"

// ArticleRequestModel is a moderation ticket for a content change
// (id reqNNN). It is created when a pending article is submitted and is
// resolved exactly once: pendiente → aprobado | denegado | cancelado.
type ArticleRequestModel struct {
	ID                string        `json:"_id"      gorm:"primaryKey;size:64"`
	AuthorID          string        `json:"autor_id" gorm:"index"`
	Type              ChangeType    `json:"tipo"     gorm:"size:16"`
	PendingArticleID  string        `json:"id_articulo_nuevo" gorm:"index"`
	OriginalArticleID *string       `json:"id_articulo_original,omitempty" gorm:"index"`
	State             WorkflowState `json:"estado"   gorm:"size:16;index"`
	SubmittedAt       time.Time     `json:"fecha"`
}

func (ArticleRequestModel) TableName() string { return "article_requests" }

// UserRequestModel is a role-change ticket (id req_userNNN). At most one
// pendiente row may exist per user.
type UserRequestModel struct {
	ID          string        `json:"_id"         gorm:"primaryKey;size:64"`
	UserID      string        `json:"user_id"     gorm:"index"`
	DesiredRole Role          `json:"rol_deseado" gorm:"size:16"`
	State       WorkflowState `json:"estado"      gorm:"size:16;index"`
	SubmittedAt time.Time     `json:"fecha"`
}

func (UserRequestModel) TableName() string { return "user_requests" }
