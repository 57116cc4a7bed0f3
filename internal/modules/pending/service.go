package pending

import (
	"errors"
	"time"

	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/modules/request"
	"github.com/plumablog/core/internal/pkg/apperr"
	"github.com/plumablog/core/internal/pkg/enrich"
	"github.com/plumablog/core/internal/pkg/ids"
	"github.com/plumablog/core/internal/pkg/pagination"
	"github.com/plumablog/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service manages drafts and submitted pending articles. Submitting hands
// the row over to the moderation engine, which owns its state from then on.
type Service struct {
	db       *gorm.DB
	alloc    *ids.Allocator
	requests *request.Service
}

func NewService(db *gorm.DB, alloc *ids.Allocator, requests *request.Service) *Service {
	return &Service{db: db, alloc: alloc, requests: requests}
}

// Create stores a new pending article for the author. With IsDraft set the
// row lands in the author's drawer; otherwise it is submitted immediately
// and the moderation ticket is created in the same transaction.
func (s *Service) Create(authorID string, role models.Role, dto *CreateDTO) (*models.PendingArticleModel, error) {
	if role != models.RoleWriter && role != models.RoleAdmin {
		return nil, apperr.Forbiddenf("writer role required to create articles")
	}

	switch dto.Type {
	case models.ChangeNew:
		if dto.OriginalArticleID != nil {
			return nil, apperr.Validationf("a new article cannot reference an original article")
		}
	case models.ChangeUpdate:
		if dto.OriginalArticleID == nil || *dto.OriginalArticleID == "" {
			return nil, apperr.Validationf("an update requires id_articulo_original")
		}
		if err := s.checkUpdateTarget(*dto.OriginalArticleID); err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Validationf("tipo must be new or update")
	}

	paID, err := s.alloc.Next(ids.PendingArticle)
	if err != nil {
		return nil, err
	}
	var ticketID string
	if !dto.IsDraft {
		ticketID, err = s.alloc.Next(ids.ArticleRequest)
		if err != nil {
			return nil, err
		}
	}

	pa := models.PendingArticleModel{
		ID:                paID,
		Title:             dto.Title,
		Markdown:          dto.Markdown,
		ImageURL:          dto.ImageURL,
		Tags:              models.StringSlice(dto.Tags),
		AuthorID:          authorID,
		Description:       dto.Description,
		Type:              dto.Type,
		OriginalArticleID: dto.OriginalArticleID,
		IsDraft:           dto.IsDraft,
		State:             models.StatePending,
		CreatedAt:         time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pa).Error; err != nil {
			return apperr.Storage(err)
		}
		if !dto.IsDraft {
			return s.requests.CreateArticleTicketTx(tx, ticketID, &pa)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pa, nil
}

// Update applies a partial patch. Only the author or an admin may edit,
// and only while the row is still pendiente. An empty patch writes
// nothing. Present tags always replace the stored list wholesale.
func (s *Service) Update(id, actorID string, admin bool, dto *UpdateDTO) (*models.PendingArticleModel, error) {
	pa, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !admin && pa.AuthorID != actorID {
		return nil, apperr.Forbiddenf("only the author may edit this article")
	}
	if pa.State.Terminal() {
		return nil, apperr.InvalidStatef("article %s is already resolved as %s", id, pa.State)
	}
	if dto.empty() {
		return pa, nil
	}

	if dto.Title != nil {
		pa.Title = *dto.Title
	}
	if dto.Description != nil {
		pa.Description = *dto.Description
	}
	if dto.Markdown != nil {
		pa.Markdown = *dto.Markdown
	}
	if dto.ImageURL != nil {
		pa.ImageURL = *dto.ImageURL
	}
	if dto.Tags != nil {
		pa.Tags = models.StringSlice(dto.Tags)
	}
	now := time.Now()
	pa.ModifiedAt = &now

	if err := s.db.Save(pa).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return pa, nil
}

// Push submits a draft for review: the row leaves the drawer and a
// moderation ticket is created in the same transaction. Re-submitting an
// already submitted row is an invalid state, not a new ticket.
func (s *Service) Push(id, actorID string, admin bool) (string, error) {
	pa, err := s.load(id)
	if err != nil {
		return "", err
	}
	if !admin && pa.AuthorID != actorID {
		return "", apperr.Forbiddenf("only the author may submit this article")
	}
	if !pa.IsDraft {
		return "", apperr.InvalidStatef("article %s is already submitted", id)
	}

	ticketID, err := s.alloc.Next(ids.ArticleRequest)
	if err != nil {
		return "", err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PendingArticleModel{}).
			Where("id = ? AND is_draft = ?", id, true).
			Update("is_draft", false)
		if res.Error != nil {
			return apperr.Storage(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidStatef("article %s is already submitted", id)
		}
		return s.requests.CreateArticleTicketTx(tx, ticketID, pa)
	})
	if err != nil {
		return "", err
	}
	return ticketID, nil
}

// Delete removes a draft from the author's drawer. Submitted rows belong
// to the moderation engine and cannot be deleted; cancel the ticket
// instead, which returns the row to the drawer.
func (s *Service) Delete(id, actorID string, admin bool) error {
	pa, err := s.load(id)
	if err != nil {
		return err
	}
	if !admin && pa.AuthorID != actorID {
		return apperr.Forbiddenf("only the author may delete this article")
	}
	if !pa.IsDraft {
		return apperr.InvalidStatef("article %s is submitted; cancel its request first", id)
	}

	if err := s.db.Delete(&models.PendingArticleModel{}, "id = ?", id).Error; err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// SubmissionFilter narrows the submissions listing.
type SubmissionFilter struct {
	State    *models.WorkflowState
	AuthorID *string
}

// ListSubmissions returns submitted pending articles, newest first.
func (s *Service) ListSubmissions(q pagination.Query, f SubmissionFilter) ([]View, response.Pagination, error) {
	tx := s.db.Model(&models.PendingArticleModel{}).Where("is_draft = ?", false)
	if f.State != nil {
		tx = tx.Where("state = ?", *f.State)
	}
	if f.AuthorID != nil {
		tx = tx.Where("author_id = ?", *f.AuthorID)
	}
	tx = tx.Order("created_at DESC")

	var rows []models.PendingArticleModel
	p, err := pagination.Paginate(tx, q, &rows)
	if err != nil {
		return nil, response.Pagination{}, apperr.Storage(err)
	}
	views, err := s.views(rows)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return views, p, nil
}

// ListDrafts returns the author's drawer, newest first.
func (s *Service) ListDrafts(q pagination.Query, authorID string) ([]View, response.Pagination, error) {
	tx := s.db.Model(&models.PendingArticleModel{}).
		Where("is_draft = ? AND author_id = ?", true, authorID).
		Order("created_at DESC")

	var rows []models.PendingArticleModel
	p, err := pagination.Paginate(tx, q, &rows)
	if err != nil {
		return nil, response.Pagination{}, apperr.Storage(err)
	}
	views, err := s.views(rows)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return views, p, nil
}

// Get returns one enriched pending article.
func (s *Service) Get(id string) (*View, error) {
	pa, err := s.load(id)
	if err != nil {
		return nil, err
	}
	views, err := s.views([]models.PendingArticleModel{*pa})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CheckActive reports whether the published article has an unresolved
// change ticket.
func (s *Service) CheckActive(articleID string) (bool, error) {
	return s.requests.HasActiveArticleChange(articleID)
}

// checkUpdateTarget verifies the original article exists and has no other
// draft already queued against it.
func (s *Service) checkUpdateTarget(originalID string) error {
	var n int64
	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", originalID).Count(&n).Error; err != nil {
		return apperr.Storage(err)
	}
	if n == 0 {
		return apperr.NotFoundf("article %s not found", originalID)
	}

	err := s.db.Model(&models.PendingArticleModel{}).
		Where("original_article_id = ? AND state = ?", originalID, models.StatePending).
		Count(&n).Error
	if err != nil {
		return apperr.Storage(err)
	}
	if n > 0 {
		return apperr.Conflictf("article %s already has a pending change", originalID)
	}
	return nil
}

func (s *Service) load(id string) (*models.PendingArticleModel, error) {
	var pa models.PendingArticleModel
	if err := s.db.Where("id = ?", id).First(&pa).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("pending article %s not found", id)
		}
		return nil, apperr.Storage(err)
	}
	return &pa, nil
}

// views enriches rows with author names and resolved tag objects.
func (s *Service) views(rows []models.PendingArticleModel) ([]View, error) {
	authorIDs := make([]string, 0, len(rows))
	tagIDs := make([]string, 0)
	for _, r := range rows {
		authorIDs = append(authorIDs, r.AuthorID)
		tagIDs = append(tagIDs, r.Tags...)
	}

	names, err := enrich.AuthorNames(s.db, authorIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	tags, err := enrich.Tags(s.db, tagIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	views := make([]View, 0, len(rows))
	for _, r := range rows {
		views = append(views, View{
			ID:                r.ID,
			Title:             r.Title,
			Description:       r.Description,
			Markdown:          r.Markdown,
			ImageURL:          r.ImageURL,
			Tags:              enrich.ResolveTags(tags, r.Tags),
			AuthorName:        names[r.AuthorID],
			AuthorID:          r.AuthorID,
			CreatedAt:         r.CreatedAt,
			ModifiedAt:        r.ModifiedAt,
			Type:              r.Type,
			State:             r.State,
			OriginalArticleID: r.OriginalArticleID,
			IsDraft:           r.IsDraft,
		})
	}
	return views, nil
}
