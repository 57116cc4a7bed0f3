package article

import (
	"bytes"
	"errors"

	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/apperr"
	"github.com/plumablog/core/internal/pkg/enrich"
	"github.com/plumablog/core/internal/pkg/pagination"
	"github.com/plumablog/core/internal/pkg/response"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

// Service reads the published catalog. Articles are written only by the
// moderation engine's approval path; the one mutation here is deletion.
type Service struct {
	db *gorm.DB
	md goldmark.Markdown
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// List returns published articles, newest first, optionally filtered by
// tag or author.
func (s *Service) List(q pagination.Query, f ListFilter) ([]View, response.Pagination, error) {
	tx := s.db.Model(&models.ArticleModel{})
	if f.TagID != nil {
		// Tags are stored as a JSON array of ids; a quoted LIKE match
		// works across backends without JSON operators.
		tx = tx.Where("tags LIKE ?", "%\""+*f.TagID+"\"%")
	}
	if f.AuthorID != nil {
		tx = tx.Where("author_id = ?", *f.AuthorID)
	}
	tx = tx.Order("created_at DESC")

	var rows []models.ArticleModel
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

// Get returns one enriched article.
func (s *Service) Get(id string) (*View, error) {
	var art models.ArticleModel
	if err := s.db.Where("id = ?", id).First(&art).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("article %s not found", id)
		}
		return nil, apperr.Storage(err)
	}
	views, err := s.views([]models.ArticleModel{art})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes a published article. Only the author or an admin may
// delete.
func (s *Service) Delete(id, actorID string, admin bool) error {
	var art models.ArticleModel
	if err := s.db.Where("id = ?", id).First(&art).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("article %s not found", id)
		}
		return apperr.Storage(err)
	}
	if !admin && art.AuthorID != actorID {
		return apperr.Forbiddenf("only the author may delete this article")
	}
	if err := s.db.Delete(&models.ArticleModel{}, "id = ?", id).Error; err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// Render returns the article's body converted to HTML with GFM
// extensions.
func (s *Service) Render(id string) (string, error) {
	var art models.ArticleModel
	if err := s.db.Select("id, markdown").Where("id = ?", id).First(&art).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFoundf("article %s not found", id)
		}
		return "", apperr.Storage(err)
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(art.Markdown), &buf); err != nil {
		return "", apperr.Validationf("markdown could not be rendered")
	}
	return buf.String(), nil
}

func (s *Service) views(rows []models.ArticleModel) ([]View, error) {
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
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Markdown:    r.Markdown,
			ImageURL:    r.ImageURL,
			Tags:        enrich.ResolveTags(tags, r.Tags),
			AuthorName:  names[r.AuthorID],
			AuthorID:    r.AuthorID,
			CreatedAt:   r.CreatedAt,
			ModifiedAt:  r.ModifiedAt,
		})
	}
	return views, nil
}
