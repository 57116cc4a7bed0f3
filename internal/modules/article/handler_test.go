package article

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/middleware"
	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/jwt"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, svc := newTestService(t)
	seedCatalog(t, db)

	r := gin.New()
	api := r.Group("/api")
	NewHandler(svc).RegisterRoutes(api, middleware.Auth())
	return r, svc
}

func TestListEnvelope(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/articles?per_page=2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Articles   []map[string]interface{} `json:"articles"`
		Pagination struct {
			Total   int `json:"total"`
			Page    int `json:"page"`
			PerPage int `json:"per_page"`
			Pages   int `json:"pages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Pagination.Total != 3 || body.Pagination.Pages != 2 || len(body.Articles) != 2 {
		t.Errorf("pagination = %+v with %d items, want total 3 over 2 pages",
			body.Pagination, len(body.Articles))
	}
	// The catalog uses "id", not the "_id" of the other collections.
	if _, ok := body.Articles[0]["id"]; !ok {
		t.Errorf("article item lacks the id key: %v", body.Articles[0])
	}
	if _, ok := body.Articles[0]["_id"]; ok {
		t.Errorf("article item must not expose _id: %v", body.Articles[0])
	}
}

func TestDeleteNeedsAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/articles/a001", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}

	token, err := jwt.Sign("u-ana", string(models.RoleWriter), time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req := httptest.NewRequest("DELETE", "/api/articles/a001", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status with token = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}
