package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plumablog/core/internal/middleware"
	"github.com/plumablog/core/internal/modules/article"
	"github.com/plumablog/core/internal/modules/auth"
	"github.com/plumablog/core/internal/modules/pending"
	"github.com/plumablog/core/internal/modules/request"
	"github.com/plumablog/core/internal/modules/tag"
	"github.com/plumablog/core/internal/modules/upload"
	"github.com/plumablog/core/internal/modules/user"
	"github.com/plumablog/core/internal/pkg/ids"
	"github.com/plumablog/core/internal/pkg/metrics"
	pkgredis "github.com/plumablog/core/internal/pkg/redis"
	"go.uber.org/zap"
)

func (a *App) registerRoutes() error {
	r := a.router
	db := a.db

	authMW := middleware.Auth()
	adminMW := middleware.RequireAdmin(db)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	r.GET("/metrics", metrics.Handler())

	// Shared services
	alloc := ids.New(db)
	requestSvc := request.NewService(db, alloc)
	pendingSvc := pending.NewService(db, alloc, requestSvc)
	articleSvc := article.NewService(db)
	uploadSvc, err := upload.NewService(a.cfg.S3)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	api := r.Group("/api")
	api.Use(middleware.Cache(a.rc, middleware.CacheOptions{
		TTL:     15 * time.Second,
		Disable: a.cfg.IsDev(),
	}))
	api.Use(purgeOnWrite(a.rc, a.logger))

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api)
	article.NewHandler(articleSvc).RegisterRoutes(api, authMW)
	pending.NewHandler(pendingSvc).RegisterRoutes(api, authMW)
	request.NewHandler(requestSvc).RegisterRoutes(api, authMW, adminMW)
	user.NewHandler(user.NewService(db)).RegisterRoutes(api, authMW, adminMW)
	tag.NewHandler(tag.NewService(db, alloc)).RegisterRoutes(api, authMW, adminMW)
	upload.NewHandler(uploadSvc).RegisterRoutes(api, authMW)

	return nil
}

// purgeOnWrite drops the cached listings after any successful mutation,
// so reads right after a workflow transition never serve stale state.
func purgeOnWrite(rc *pkgredis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if rc == nil || c.Request.Method == http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		if _, err := middleware.PurgeCache(c.Request.Context(), rc); err != nil {
			logger.Warn("cache purge failed", zap.Error(err))
		}
	}
}
