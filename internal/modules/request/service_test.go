package request_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/plumablog/core/internal/database"
	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/modules/pending"
	"github.com/plumablog/core/internal/modules/request"
	"github.com/plumablog/core/internal/pkg/apperr"
	"github.com/plumablog/core/internal/pkg/ids"
	"github.com/plumablog/core/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db       *gorm.DB
	requests *request.Service
	pendings *pending.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	alloc := ids.New(db)
	reqSvc := request.NewService(db, alloc)
	return &fixture{
		db:       db,
		requests: reqSvc,
		pendings: pending.NewService(db, alloc, reqSvc),
	}
}

func (f *fixture) seedUser(t *testing.T, id, name string, role models.Role) {
	t.Helper()
	u := models.UserModel{ID: id, Name: name, Email: id + "@example.com", Password: "x", Role: role}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

// submit creates a pending article for the writer and submits it in one
// step, returning the pending article id and its ticket id.
func (f *fixture) submit(t *testing.T, authorID string, dto pending.CreateDTO) (string, string) {
	t.Helper()
	dto.IsDraft = false
	pa, err := f.pendings.Create(authorID, models.RoleWriter, &dto)
	if err != nil {
		t.Fatalf("submit pending article: %v", err)
	}

	var req models.ArticleRequestModel
	if err := f.db.Where("pending_article_id = ?", pa.ID).First(&req).Error; err != nil {
		t.Fatalf("load ticket: %v", err)
	}
	return pa.ID, req.ID
}

func newArticleDTO(title string) pending.CreateDTO {
	return pending.CreateDTO{
		Title:    title,
		Markdown: "# " + title,
		Type:     models.ChangeNew,
	}
}

func TestApproveNewArticlePublishes(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-writer", "Ana", models.RoleWriter)

	paID, reqID := f.submit(t, "u-writer", newArticleDTO("First post"))
	if paID != "pa001" || reqID != "req001" {
		t.Fatalf("ids = (%s, %s), want (pa001, req001)", paID, reqID)
	}

	articleID, err := f.requests.ApproveArticleRequest(reqID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if articleID != "a001" {
		t.Errorf("article id = %q, want a001", articleID)
	}

	var art models.ArticleModel
	if err := f.db.Where("id = ?", articleID).First(&art).Error; err != nil {
		t.Fatalf("load article: %v", err)
	}
	if art.Title != "First post" || art.AuthorID != "u-writer" {
		t.Errorf("article = %+v, want title and author carried over", art)
	}
	if art.ModifiedAt != nil {
		t.Errorf("new article has ModifiedAt set")
	}

	var req models.ArticleRequestModel
	f.db.First(&req, "id = ?", reqID)
	if req.State != models.StateApproved {
		t.Errorf("ticket state = %s, want aprobado", req.State)
	}
	var pa models.PendingArticleModel
	f.db.First(&pa, "id = ?", paID)
	if pa.State != models.StateApproved {
		t.Errorf("pending state = %s, want aprobado", pa.State)
	}
}

func TestResolvedTicketIsImmutable(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-writer", "Ana", models.RoleWriter)
	_, reqID := f.submit(t, "u-writer", newArticleDTO("Post"))

	if _, err := f.requests.ApproveArticleRequest(reqID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := f.requests.ApproveArticleRequest(reqID); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("second approve error = %v, want invalid state", err)
	}
	if err := f.requests.RejectArticleRequest(reqID); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("reject after approve error = %v, want invalid state", err)
	}
	if err := f.requests.CancelArticleRequest(reqID, "u-writer", false); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("cancel after approve error = %v, want invalid state", err)
	}

	var n int64
	f.db.Model(&models.ArticleModel{}).Count(&n)
	if n != 1 {
		t.Errorf("article count = %d, want 1 despite repeated approvals", n)
	}
}

func TestRejectLeavesCatalogUntouched(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-writer", "Ana", models.RoleWriter)
	paID, reqID := f.submit(t, "u-writer", newArticleDTO("Rejected post"))

	if err := f.requests.RejectArticleRequest(reqID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	var n int64
	f.db.Model(&models.ArticleModel{}).Count(&n)
	if n != 0 {
		t.Errorf("article count = %d, want 0", n)
	}
	var pa models.PendingArticleModel
	f.db.First(&pa, "id = ?", paID)
	if pa.State != models.StateRejected {
		t.Errorf("pending state = %s, want denegado", pa.State)
	}
}

func TestCancelReturnsPendingToDrawer(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-writer", "Ana", models.RoleWriter)
	paID, reqID := f.submit(t, "u-writer", newArticleDTO("Withdrawn"))

	if err := f.requests.CancelArticleRequest(reqID, "u-writer", false); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	var req models.ArticleRequestModel
	f.db.First(&req, "id = ?", reqID)
	if req.State != models.StateCanceled {
		t.Errorf("ticket state = %s, want cancelado", req.State)
	}
	var pa models.PendingArticleModel
	f.db.First(&pa, "id = ?", paID)
	if !pa.IsDraft {
		t.Errorf("pending article did not return to the drawer")
	}
}

func TestCancelRequiresAuthorOrAdmin(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-writer", "Ana", models.RoleWriter)
	f.seedUser(t, "u-other", "Eva", models.RoleWriter)
	_, reqID := f.submit(t, "u-writer", newArticleDTO("Post"))

	err := f.requests.CancelArticleRequest(reqID, "u-other", false)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("cancel by stranger error = %v, want forbidden", err)
	}
	if err := f.requests.CancelArticleRequest(reqID, "u-other", true); err != nil {
		t.Errorf("cancel by admin: %v", err)
	}
}

func TestApproveUpdateMergesIntoOriginal(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-writer", "Ana", models.RoleWriter)

	_, reqID := f.submit(t, "u-writer", newArticleDTO("v1"))
	articleID, err := f.requests.ApproveArticleRequest(reqID)
	if err != nil {
		t.Fatalf("approve new: %v", err)
	}

	dto := pending.CreateDTO{
		Title:             "v2",
		Markdown:          "# v2",
		Description:       "second edition",
		Type:              models.ChangeUpdate,
		OriginalArticleID: &articleID,
	}
	_, updReqID := f.submit(t, "u-writer", dto)

	gotID, err := f.requests.ApproveArticleRequest(updReqID)
	if err != nil {
		t.Fatalf("approve update: %v", err)
	}
	if gotID != articleID {
		t.Errorf("approve update returned %q, want original %q", gotID, articleID)
	}

	var art models.ArticleModel
	f.db.First(&art, "id = ?", articleID)
	if art.Title != "v2" || art.Description != "second edition" {
		t.Errorf("article = %+v, want merged fields", art)
	}
	if art.ModifiedAt == nil {
		t.Errorf("ModifiedAt not stamped on update approval")
	}

	var n int64
	f.db.Model(&models.ArticleModel{}).Count(&n)
	if n != 1 {
		t.Errorf("article count = %d, want 1 (update must not publish a new row)", n)
	}
}

func TestOneActiveChangePerArticle(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-writer", "Ana", models.RoleWriter)

	_, reqID := f.submit(t, "u-writer", newArticleDTO("Base"))
	articleID, err := f.requests.ApproveArticleRequest(reqID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	dto := pending.CreateDTO{
		Title:             "edit one",
		Markdown:          "x",
		Type:              models.ChangeUpdate,
		OriginalArticleID: &articleID,
	}
	f.submit(t, "u-writer", dto)

	dto.Title = "edit two"
	_, err = f.pendings.Create("u-writer", models.RoleWriter, &dto)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("second change error = %v, want conflict", err)
	}

	active, err := f.requests.HasActiveArticleChange(articleID)
	if err != nil {
		t.Fatalf("check active: %v", err)
	}
	if !active {
		t.Errorf("active check = false, want true while a change is in flight")
	}
	if active, _ := f.requests.HasActiveArticleChange("a999"); active {
		t.Errorf("active check for unknown article = true, want false")
	}
}

func TestApproveRollsBackWhenPendingMissing(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-writer", "Ana", models.RoleWriter)
	paID, reqID := f.submit(t, "u-writer", newArticleDTO("Ghost"))

	// Simulate a corrupted link; the whole approval must roll back.
	if err := f.db.Delete(&models.PendingArticleModel{}, "id = ?", paID).Error; err != nil {
		t.Fatalf("delete pending: %v", err)
	}

	if _, err := f.requests.ApproveArticleRequest(reqID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("approve error = %v, want not found", err)
	}

	var req models.ArticleRequestModel
	f.db.First(&req, "id = ?", reqID)
	if req.State != models.StatePending {
		t.Errorf("ticket state = %s, want pendiente after rollback", req.State)
	}
	var n int64
	f.db.Model(&models.ArticleModel{}).Count(&n)
	if n != 0 {
		t.Errorf("article count = %d, want 0 after rollback", n)
	}
}

func TestListArticleRequestsFilters(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-writer", "Ana", models.RoleWriter)
	f.seedUser(t, "u-other", "Eva", models.RoleWriter)

	_, req1 := f.submit(t, "u-writer", newArticleDTO("one"))
	f.submit(t, "u-other", newArticleDTO("two"))
	if _, err := f.requests.ApproveArticleRequest(req1); err != nil {
		t.Fatalf("approve: %v", err)
	}

	q := pagination.Query{Page: 1, PerPage: 9}

	st := models.StatePending
	views, p, err := f.requests.ListArticleRequests(q, request.ListFilter{State: &st})
	if err != nil {
		t.Fatalf("list by state: %v", err)
	}
	if p.Total != 1 || len(views) != 1 || views[0].AuthorID != "u-other" {
		t.Errorf("pendiente list = %+v (total %d), want the one unresolved ticket", views, p.Total)
	}

	author := "u-writer"
	views, p, err = f.requests.ListArticleRequests(q, request.ListFilter{UserID: &author})
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if p.Total != 1 || len(views) != 1 || views[0].AuthorName != "Ana" {
		t.Errorf("author list = %+v (total %d), want Ana's enriched ticket", views, p.Total)
	}
	if views[0].PendingTitle != "one" {
		t.Errorf("ticket title = %q, want pending article title", views[0].PendingTitle)
	}
}

func TestUserRequestLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-reader", "Leo", models.RoleReader)

	req, err := f.requests.SubmitUserRequest("u-reader", models.RoleWriter)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.ID != "req_user001" {
		t.Errorf("ticket id = %q, want req_user001", req.ID)
	}

	// Only one unresolved ticket per user.
	if _, err := f.requests.SubmitUserRequest("u-reader", models.RoleAdmin); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("duplicate submit error = %v, want conflict", err)
	}

	if err := f.requests.ApproveUserRequest(req.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	var user models.UserModel
	f.db.First(&user, "id = ?", "u-reader")
	if user.Role != models.RoleWriter {
		t.Errorf("role = %s, want escritor after approval", user.Role)
	}

	if err := f.requests.ApproveUserRequest(req.ID); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("re-approve error = %v, want invalid state", err)
	}
}

func TestUserRequestValidation(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-reader", "Leo", models.RoleReader)

	if _, err := f.requests.SubmitUserRequest("u-reader", "emperador"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown role error = %v, want validation", err)
	}
	if _, err := f.requests.SubmitUserRequest("u-reader", models.RoleReader); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("same-role error = %v, want validation", err)
	}
	if _, err := f.requests.SubmitUserRequest("u-ghost", models.RoleWriter); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown user error = %v, want not found", err)
	}
}

func TestRejectUserRequestKeepsRole(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-reader", "Leo", models.RoleReader)

	req, err := f.requests.SubmitUserRequest("u-reader", models.RoleWriter)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.requests.RejectUserRequest(req.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	var user models.UserModel
	f.db.First(&user, "id = ?", "u-reader")
	if user.Role != models.RoleReader {
		t.Errorf("role = %s, want lector untouched", user.Role)
	}
}

func TestCancelUserRequestOwnership(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-reader", "Leo", models.RoleReader)

	req, err := f.requests.SubmitUserRequest("u-reader", models.RoleWriter)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := f.requests.CancelUserRequest(req.ID, "u-stranger", false); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("cancel by stranger error = %v, want forbidden", err)
	}
	if err := f.requests.CancelUserRequest(req.ID, "u-reader", false); err != nil {
		t.Errorf("cancel by owner: %v", err)
	}
}
