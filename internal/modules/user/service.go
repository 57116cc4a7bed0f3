package user

import (
	"errors"

	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/apperr"
	"github.com/plumablog/core/internal/pkg/pagination"
	"github.com/plumablog/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service reads accounts and applies direct role changes. Role changes
// initiated by users themselves go through the moderation engine instead.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns accounts, optionally filtered by role.
func (s *Service) List(q pagination.Query, role *models.Role) ([]models.UserModel, response.Pagination, error) {
	tx := s.db.Model(&models.UserModel{})
	if role != nil {
		tx = tx.Where("role = ?", *role)
	}
	tx = tx.Order("created_at DESC")

	var rows []models.UserModel
	p, err := pagination.Paginate(tx, q, &rows)
	if err != nil {
		return nil, response.Pagination{}, apperr.Storage(err)
	}
	return rows, p, nil
}

// Get returns one account.
func (s *Service) Get(id string) (*models.UserModel, error) {
	var user models.UserModel
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %s not found", id)
		}
		return nil, apperr.Storage(err)
	}
	return &user, nil
}

// SetRole assigns a role directly, bypassing the request workflow. Caller
// must have verified admin rights.
func (s *Service) SetRole(id string, role models.Role) error {
	if !models.ValidRole(role) {
		return apperr.Validationf("unknown role %q", role)
	}
	res := s.db.Model(&models.UserModel{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("user %s not found", id)
	}
	return nil
}
