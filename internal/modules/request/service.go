package request

import (
	"errors"
	"time"

	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/apperr"
	"github.com/plumablog/core/internal/pkg/enrich"
	"github.com/plumablog/core/internal/pkg/ids"
	"github.com/plumablog/core/internal/pkg/metrics"
	"github.com/plumablog/core/internal/pkg/pagination"
	"github.com/plumablog/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service is the moderation engine. It owns every state transition of
// article and role-change tickets; no other module flips a ticket state.
type Service struct {
	db    *gorm.DB
	alloc *ids.Allocator
}

func NewService(db *gorm.DB, alloc *ids.Allocator) *Service {
	return &Service{db: db, alloc: alloc}
}

// CreateArticleTicketTx inserts a ticket for a freshly submitted pending
// article inside the caller's transaction. For update submissions it
// rejects the insert when another unresolved ticket already targets the
// same original article, so an article never has two changes in flight.
func (s *Service) CreateArticleTicketTx(tx *gorm.DB, ticketID string, pa *models.PendingArticleModel) error {
	if pa.OriginalArticleID != nil {
		var n int64
		err := tx.Model(&models.ArticleRequestModel{}).
			Where("original_article_id = ? AND state = ?", *pa.OriginalArticleID, models.StatePending).
			Count(&n).Error
		if err != nil {
			return apperr.Storage(err)
		}
		if n > 0 {
			return apperr.Conflictf("article %s already has a change under review", *pa.OriginalArticleID)
		}
	}

	req := models.ArticleRequestModel{
		ID:                ticketID,
		AuthorID:          pa.AuthorID,
		Type:              pa.Type,
		PendingArticleID:  pa.ID,
		OriginalArticleID: pa.OriginalArticleID,
		State:             models.StatePending,
		SubmittedAt:       time.Now(),
	}
	if err := tx.Create(&req).Error; err != nil {
		return apperr.Storage(err)
	}
	metrics.Transition("article_request", "submit")
	return nil
}

// HasActiveArticleChange reports whether an unresolved ticket targets the
// given published article.
func (s *Service) HasActiveArticleChange(articleID string) (bool, error) {
	var n int64
	err := s.db.Model(&models.ArticleRequestModel{}).
		Where("original_article_id = ? AND state = ?", articleID, models.StatePending).
		Count(&n).Error
	if err != nil {
		return false, apperr.Storage(err)
	}
	return n > 0, nil
}

// ListArticleRequests returns enriched article tickets, newest first.
func (s *Service) ListArticleRequests(q pagination.Query, f ListFilter) ([]ArticleRequestView, response.Pagination, error) {
	tx := s.db.Model(&models.ArticleRequestModel{})
	if f.State != nil {
		tx = tx.Where("state = ?", *f.State)
	}
	if f.UserID != nil {
		tx = tx.Where("author_id = ?", *f.UserID)
	}
	tx = tx.Order("submitted_at DESC")

	var rows []models.ArticleRequestModel
	p, err := pagination.Paginate(tx, q, &rows)
	if err != nil {
		return nil, response.Pagination{}, apperr.Storage(err)
	}

	views, err := s.articleViews(rows)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return views, p, nil
}

// GetArticleRequest returns one enriched article ticket.
func (s *Service) GetArticleRequest(id string) (*ArticleRequestView, error) {
	req, err := s.loadArticleTicket(s.db, id)
	if err != nil {
		return nil, err
	}
	views, err := s.articleViews([]models.ArticleRequestModel{*req})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ApproveArticleRequest resolves a ticket as aprobado and applies its
// content change in the same transaction: a new-article ticket publishes
// the pending article under a freshly allocated article id, an update
// ticket merges the pending fields into the original article and stamps
// its modification time. Returns the id of the affected article.
func (s *Service) ApproveArticleRequest(id string) (string, error) {
	req, err := s.loadArticleTicket(s.db, id)
	if err != nil {
		return "", err
	}
	if req.State.Terminal() {
		return "", apperr.InvalidStatef("request %s is already resolved as %s", id, req.State)
	}

	// The article id is allocated before the workflow transaction opens;
	// a rollback burns the number, which is harmless.
	var newArticleID string
	if req.Type == models.ChangeNew {
		newArticleID, err = s.alloc.Next(ids.Article)
		if err != nil {
			return "", err
		}
	}

	var articleID string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := flipTicket(tx, &models.ArticleRequestModel{}, id, models.StateApproved); err != nil {
			return err
		}

		var pa models.PendingArticleModel
		if err := tx.Where("id = ?", req.PendingArticleID).First(&pa).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("pending article %s not found", req.PendingArticleID)
			}
			return apperr.Storage(err)
		}
		pa.State = models.StateApproved
		if err := tx.Save(&pa).Error; err != nil {
			return apperr.Storage(err)
		}

		switch req.Type {
		case models.ChangeUpdate:
			if req.OriginalArticleID == nil {
				return apperr.InvalidStatef("request %s has no original article", id)
			}
			var art models.ArticleModel
			if err := tx.Where("id = ?", *req.OriginalArticleID).First(&art).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("article %s not found", *req.OriginalArticleID)
				}
				return apperr.Storage(err)
			}
			now := time.Now()
			art.Title = pa.Title
			art.Markdown = pa.Markdown
			art.ImageURL = pa.ImageURL
			art.Tags = pa.Tags
			art.Description = pa.Description
			art.ModifiedAt = &now
			if err := tx.Save(&art).Error; err != nil {
				return apperr.Storage(err)
			}
			articleID = art.ID

		default: // ChangeNew
			art := models.ArticleModel{
				ID:          newArticleID,
				Title:       pa.Title,
				Markdown:    pa.Markdown,
				ImageURL:    pa.ImageURL,
				Tags:        pa.Tags,
				AuthorID:    pa.AuthorID,
				Description: pa.Description,
				CreatedAt:   time.Now(),
			}
			if err := tx.Create(&art).Error; err != nil {
				return apperr.Storage(err)
			}
			articleID = art.ID
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.Transition("article_request", "approve")
	return articleID, nil
}

// RejectArticleRequest resolves a ticket as denegado. The pending article
// is marked denegado as well; no article is touched.
func (s *Service) RejectArticleRequest(id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := flipTicket(tx, &models.ArticleRequestModel{}, id, models.StateRejected); err != nil {
			return err
		}
		var req models.ArticleRequestModel
		if err := tx.Where("id = ?", id).First(&req).Error; err != nil {
			return apperr.Storage(err)
		}
		res := tx.Model(&models.PendingArticleModel{}).
			Where("id = ?", req.PendingArticleID).
			Update("state", models.StateRejected)
		if res.Error != nil {
			return apperr.Storage(res.Error)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.Transition("article_request", "reject")
	return nil
}

// CancelArticleRequest withdraws a ticket. Only the submitting author or
// an admin may cancel. The linked pending article returns to the author's
// drawer as an editable draft.
func (s *Service) CancelArticleRequest(id, actorID string, admin bool) error {
	req, err := s.loadArticleTicket(s.db, id)
	if err != nil {
		return err
	}
	if !admin && req.AuthorID != actorID {
		return apperr.Forbiddenf("only the author may cancel this request")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := flipTicket(tx, &models.ArticleRequestModel{}, id, models.StateCanceled); err != nil {
			return err
		}
		res := tx.Model(&models.PendingArticleModel{}).
			Where("id = ?", req.PendingArticleID).
			Updates(map[string]interface{}{"is_draft": true, "state": models.StatePending})
		if res.Error != nil {
			return apperr.Storage(res.Error)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.Transition("article_request", "cancel")
	return nil
}

// SubmitUserRequest opens a role-change ticket for the user. A user may
// have at most one unresolved ticket at a time.
func (s *Service) SubmitUserRequest(userID string, desired models.Role) (*models.UserRequestModel, error) {
	if !models.ValidRole(desired) {
		return nil, apperr.Validationf("unknown role %q", desired)
	}

	var user models.UserModel
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %s not found", userID)
		}
		return nil, apperr.Storage(err)
	}
	if user.Role == desired {
		return nil, apperr.Validationf("user already has role %s", desired)
	}

	ticketID, err := s.alloc.Next(ids.UserRequest)
	if err != nil {
		return nil, err
	}

	req := models.UserRequestModel{
		ID:          ticketID,
		UserID:      userID,
		DesiredRole: desired,
		State:       models.StatePending,
		SubmittedAt: time.Now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		err := tx.Model(&models.UserRequestModel{}).
			Where("user_id = ? AND state = ?", userID, models.StatePending).
			Count(&n).Error
		if err != nil {
			return apperr.Storage(err)
		}
		if n > 0 {
			return apperr.Conflictf("user %s already has a role request under review", userID)
		}
		if err := tx.Create(&req).Error; err != nil {
			return apperr.Storage(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Transition("user_request", "submit")
	return &req, nil
}

// ListUserRequests returns enriched role-change tickets, newest first.
func (s *Service) ListUserRequests(q pagination.Query, f ListFilter) ([]UserRequestView, response.Pagination, error) {
	tx := s.db.Model(&models.UserRequestModel{})
	if f.State != nil {
		tx = tx.Where("state = ?", *f.State)
	}
	if f.UserID != nil {
		tx = tx.Where("user_id = ?", *f.UserID)
	}
	tx = tx.Order("submitted_at DESC")

	var rows []models.UserRequestModel
	p, err := pagination.Paginate(tx, q, &rows)
	if err != nil {
		return nil, response.Pagination{}, apperr.Storage(err)
	}

	views, err := s.userViews(rows)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return views, p, nil
}

// GetUserRequest returns one enriched role-change ticket.
func (s *Service) GetUserRequest(id string) (*UserRequestView, error) {
	req, err := s.loadUserTicket(id)
	if err != nil {
		return nil, err
	}
	views, err := s.userViews([]models.UserRequestModel{*req})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ApproveUserRequest resolves a role-change ticket as aprobado and grants
// the requested role in the same transaction.
func (s *Service) ApproveUserRequest(id string) error {
	req, err := s.loadUserTicket(id)
	if err != nil {
		return err
	}
	if req.State.Terminal() {
		return apperr.InvalidStatef("request %s is already resolved as %s", id, req.State)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := flipTicket(tx, &models.UserRequestModel{}, id, models.StateApproved); err != nil {
			return err
		}
		res := tx.Model(&models.UserModel{}).
			Where("id = ?", req.UserID).
			Update("role", req.DesiredRole)
		if res.Error != nil {
			return apperr.Storage(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFoundf("user %s not found", req.UserID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.Transition("user_request", "approve")
	return nil
}

// RejectUserRequest resolves a role-change ticket as denegado. The user's
// role is untouched.
func (s *Service) RejectUserRequest(id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return flipTicket(tx, &models.UserRequestModel{}, id, models.StateRejected)
	})
	if err != nil {
		return err
	}

	metrics.Transition("user_request", "reject")
	return nil
}

// CancelUserRequest withdraws a role-change ticket. Only the requesting
// user or an admin may cancel.
func (s *Service) CancelUserRequest(id, actorID string, admin bool) error {
	req, err := s.loadUserTicket(id)
	if err != nil {
		return err
	}
	if !admin && req.UserID != actorID {
		return apperr.Forbiddenf("only the requesting user may cancel this request")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return flipTicket(tx, &models.UserRequestModel{}, id, models.StateCanceled)
	})
	if err != nil {
		return err
	}

	metrics.Transition("user_request", "cancel")
	return nil
}

// flipTicket moves a ticket from pendiente to a terminal state with a
// conditional update, so concurrent resolutions cannot both win. On a
// zero-row update it reports NotFound for a missing ticket and
// InvalidState for an already-resolved one.
func flipTicket(tx *gorm.DB, model interface{}, id string, to models.WorkflowState) error {
	res := tx.Model(model).
		Where("id = ? AND state = ?", id, models.StatePending).
		Update("state", to)
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
			return apperr.Storage(err)
		}
		if n == 0 {
			return apperr.NotFoundf("request %s not found", id)
		}
		return apperr.InvalidStatef("request %s is already resolved", id)
	}
	return nil
}

func (s *Service) loadArticleTicket(db *gorm.DB, id string) (*models.ArticleRequestModel, error) {
	var req models.ArticleRequestModel
	if err := db.Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("request %s not found", id)
		}
		return nil, apperr.Storage(err)
	}
	return &req, nil
}

func (s *Service) loadUserTicket(id string) (*models.UserRequestModel, error) {
	var req models.UserRequestModel
	if err := s.db.Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("request %s not found", id)
		}
		return nil, apperr.Storage(err)
	}
	return &req, nil
}

// articleViews enriches ticket rows with author names and the titles of
// the pending and original articles.
func (s *Service) articleViews(rows []models.ArticleRequestModel) ([]ArticleRequestView, error) {
	authorIDs := make([]string, 0, len(rows))
	pendingIDs := make([]string, 0, len(rows))
	originalIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		authorIDs = append(authorIDs, r.AuthorID)
		pendingIDs = append(pendingIDs, r.PendingArticleID)
		if r.OriginalArticleID != nil {
			originalIDs = append(originalIDs, *r.OriginalArticleID)
		}
	}

	names, err := enrich.AuthorNames(s.db, authorIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	pendingTitles, err := titlesByID(s.db, "pending_articles", pendingIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	originalTitles, err := titlesByID(s.db, "articles", originalIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	views := make([]ArticleRequestView, 0, len(rows))
	for _, r := range rows {
		v := ArticleRequestView{
			ID:                r.ID,
			AuthorID:          r.AuthorID,
			AuthorName:        names[r.AuthorID],
			Type:              r.Type,
			PendingArticleID:  r.PendingArticleID,
			PendingTitle:      pendingTitles[r.PendingArticleID],
			OriginalArticleID: r.OriginalArticleID,
			State:             r.State,
			SubmittedAt:       r.SubmittedAt,
		}
		if r.OriginalArticleID != nil {
			if t, ok := originalTitles[*r.OriginalArticleID]; ok {
				v.OriginalTitle = &t
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// userViews enriches ticket rows with user names and current roles.
func (s *Service) userViews(rows []models.UserRequestModel) ([]UserRequestView, error) {
	userIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.UserID)
	}

	var users []models.UserModel
	if len(userIDs) > 0 {
		if err := s.db.Select("id, name, role").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, apperr.Storage(err)
		}
	}
	byID := make(map[string]models.UserModel, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]UserRequestView, 0, len(rows))
	for _, r := range rows {
		u := byID[r.UserID]
		views = append(views, UserRequestView{
			ID:          r.ID,
			UserID:      r.UserID,
			UserName:    u.Name,
			CurrentRole: u.Role,
			DesiredRole: r.DesiredRole,
			State:       r.State,
			SubmittedAt: r.SubmittedAt,
		})
	}
	return views, nil
}

func titlesByID(db *gorm.DB, table string, keys []string) (map[string]string, error) {
	titles := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return titles, nil
	}
	var rows []struct {
		ID    string
		Title string
	}
	if err := db.Table(table).Select("id, title").Where("id IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		titles[r.ID] = r.Title
	}
	return titles, nil
}
