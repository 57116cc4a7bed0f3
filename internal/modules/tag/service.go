package tag

import (
	"errors"
	"strings"

	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/apperr"
	"github.com/plumablog/core/internal/pkg/ids"
	"gorm.io/gorm"
)

// Service manages the tag catalog referenced by articles.
type Service struct {
	db    *gorm.DB
	alloc *ids.Allocator
}

func NewService(db *gorm.DB, alloc *ids.Allocator) *Service {
	return &Service{db: db, alloc: alloc}
}

// List returns all tags. The catalog is small; no pagination.
func (s *Service) List() ([]models.TagModel, error) {
	var tags []models.TagModel
	if err := s.db.Order("name").Find(&tags).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return tags, nil
}

// Get returns one tag.
func (s *Service) Get(id string) (*models.TagModel, error) {
	var t models.TagModel
	if err := s.db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("tag %s not found", id)
		}
		return nil, apperr.Storage(err)
	}
	return &t, nil
}

// Create adds a tag. Names are unique case-insensitively.
func (s *Service) Create(name, description string) (*models.TagModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("tag name is required")
	}

	var n int64
	if err := s.db.Model(&models.TagModel{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&n).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	if n > 0 {
		return nil, apperr.Conflictf("tag %q already exists", name)
	}

	id, err := s.alloc.Next(ids.Tag)
	if err != nil {
		return nil, err
	}
	t := models.TagModel{ID: id, Name: name, Description: description}
	if err := s.db.Create(&t).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return &t, nil
}

// Update changes a tag's name or description.
func (s *Service) Update(id, name, description string) (*models.TagModel, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		t.Name = name
	}
	if description != "" {
		t.Description = description
	}
	if err := s.db.Save(t).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return t, nil
}

// Delete removes a tag. Article tag lists keep the dangling id; listings
// drop unresolved ids at render time.
func (s *Service) Delete(id string) error {
	res := s.db.Delete(&models.TagModel{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("tag %s not found", id)
	}
	return nil
}
