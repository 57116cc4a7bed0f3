package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/apperr"
	"github.com/plumablog/core/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

// Service handles account registration and credential login.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Signup registers a new lector account. Emails are unique.
func (s *Service) Signup(dto *SignupDTO) (*models.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	var n int64
	if err := s.db.Model(&models.UserModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	if n > 0 {
		return nil, apperr.Conflictf("email %s is already registered", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	user := models.UserModel{
		ID:        "u" + uuid.NewString()[:8],
		Name:      dto.Name,
		Email:     email,
		Password:  string(hash),
		Phone:     dto.Phone,
		Role:      models.RoleReader,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return &user, nil
}

// Login verifies credentials and issues a JWT carrying the user's id and
// role at issue time.
func (s *Service) Login(dto *LoginDTO) (string, *models.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	var user models.UserModel
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.Unauthorizedf("invalid email or password")
		}
		return "", nil, apperr.Storage(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return "", nil, apperr.Unauthorizedf("invalid email or password")
	}

	token, err := jwt.Sign(user.ID, string(user.Role), tokenTTL)
	if err != nil {
		return "", nil, apperr.Storage(err)
	}
	return token, &user, nil
}
