package request

import (
	"time"

	"github.com/plumablog/core/internal/models"
)

// SubmitUserRequestDTO is the payload for requesting a role change. The
// requesting user comes from the authenticated context.
type SubmitUserRequestDTO struct {
	DesiredRole models.Role `json:"rol_deseado" binding:"required"`
}

// ArticleRequestView is the enriched wire representation of an article
// moderation ticket.
type ArticleRequestView struct {
	ID                string               `json:"_id"`
	AuthorID          string               `json:"autor_id"`
	AuthorName        string               `json:"autor"`
	Type              models.ChangeType    `json:"tipo"`
	PendingArticleID  string               `json:"id_articulo_nuevo"`
	PendingTitle      string               `json:"articulo_nuevo"`
	OriginalArticleID *string              `json:"id_articulo_original,omitempty"`
	OriginalTitle     *string              `json:"articulo_original"`
	State             models.WorkflowState `json:"estado"`
	SubmittedAt       time.Time            `json:"fecha"`
}

// UserRequestView is the enriched wire representation of a role-change
// ticket. CurrentRole reflects the user's role at read time.
type UserRequestView struct {
	ID          string               `json:"_id"`
	UserID      string               `json:"user_id"`
	UserName    string               `json:"usuario"`
	CurrentRole models.Role          `json:"rol_actual"`
	DesiredRole models.Role          `json:"rol_deseado"`
	State       models.WorkflowState `json:"estado"`
	SubmittedAt time.Time            `json:"fecha"`
}

// ListFilter narrows request listings.
type ListFilter struct {
	State  *models.WorkflowState
	UserID *string // author for article requests, subject for user requests
}
