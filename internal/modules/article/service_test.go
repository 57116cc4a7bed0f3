package article

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/plumablog/core/internal/database"
	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/apperr"
	"github.com/plumablog/core/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*gorm.DB, *Service) {
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
	return db, NewService(db)
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []interface{}{
		&models.UserModel{ID: "u-ana", Name: "Ana", Email: "ana@example.com", Password: "x", Role: models.RoleWriter},
		&models.TagModel{ID: "t001", Name: "go"},
		&models.TagModel{ID: "t002", Name: "web"},
		&models.ArticleModel{ID: "a001", Title: "Go intro", AuthorID: "u-ana", Tags: models.StringSlice{"t001"}},
		&models.ArticleModel{ID: "a002", Title: "Web intro", AuthorID: "u-ana", Tags: models.StringSlice{"t002"}},
		&models.ArticleModel{ID: "a003", Title: "Untagged", AuthorID: "u-eva"},
	}
	for _, r := range rows {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestListFiltersByTag(t *testing.T) {
	db, svc := newTestService(t)
	seedCatalog(t, db)

	tagID := "t001"
	views, p, err := svc.List(pagination.Query{Page: 1, PerPage: 9}, ListFilter{TagID: &tagID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if p.Total != 1 || len(views) != 1 || views[0].ID != "a001" {
		t.Errorf("tag filter returned %+v (total %d), want only a001", views, p.Total)
	}
	if len(views[0].Tags) != 1 || views[0].Tags[0].Name != "go" {
		t.Errorf("tags = %+v, want resolved tag objects", views[0].Tags)
	}
	if views[0].AuthorName != "Ana" {
		t.Errorf("autor = %q, want Ana", views[0].AuthorName)
	}
}

func TestListFiltersByAuthor(t *testing.T) {
	db, svc := newTestService(t)
	seedCatalog(t, db)

	author := "u-eva"
	views, p, err := svc.List(pagination.Query{Page: 1, PerPage: 9}, ListFilter{AuthorID: &author})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if p.Total != 1 || len(views) != 1 || views[0].ID != "a003" {
		t.Errorf("author filter returned %+v (total %d), want only a003", views, p.Total)
	}
	// Unknown author resolves to an empty name, never an error.
	if views[0].AuthorName != "" {
		t.Errorf("autor = %q, want empty for unknown user", views[0].AuthorName)
	}
}

func TestGetUnknownArticle(t *testing.T) {
	_, svc := newTestService(t)
	if _, err := svc.Get("a999"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("get error = %v, want not found", err)
	}
}

func TestDeleteOwnership(t *testing.T) {
	db, svc := newTestService(t)
	seedCatalog(t, db)

	if err := svc.Delete("a001", "u-eva", false); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("delete by stranger error = %v, want forbidden", err)
	}
	if err := svc.Delete("a001", "u-ana", false); err != nil {
		t.Fatalf("delete by author: %v", err)
	}
	if err := svc.Delete("a003", "u-admin", true); err != nil {
		t.Fatalf("delete by admin: %v", err)
	}

	var n int64
	db.Model(&models.ArticleModel{}).Count(&n)
	if n != 1 {
		t.Errorf("article count = %d, want 1", n)
	}
}

func TestRenderMarkdown(t *testing.T) {
	db, svc := newTestService(t)
	art := models.ArticleModel{ID: "a001", Title: "Hola", Markdown: "# Hola\n\n- uno\n- dos"}
	if err := db.Create(&art).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := svc.Render("a001")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<li>uno</li>") {
		t.Errorf("render output = %q, want heading and list items", out)
	}

	if _, err := svc.Render("a999"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("render unknown article error = %v, want not found", err)
	}
}
