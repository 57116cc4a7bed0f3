package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	pkgredis "github.com/plumablog/core/internal/pkg/redis"
)

const cacheKeyPrefix = "plumablog:httpcache:"

// CacheOptions tunes the read-through listing cache.
type CacheOptions struct {
	TTL     time.Duration
	Disable bool
}

type cachedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *cachedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Cache caches successful GET responses in Redis. Workflow writes purge
// the whole namespace via PurgeCache, so reads after a transition see
// fresh data.
func Cache(rc *pkgredis.Client, opts CacheOptions) gin.HandlerFunc {
	if opts.TTL <= 0 {
		opts.TTL = 15 * time.Second
	}
	return func(c *gin.Context) {
		if opts.Disable || rc == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKeyPrefix + c.Request.URL.RequestURI()
		if body, err := rc.Get(c.Request.Context(), key); err == nil && body != "" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(body))
			c.Abort()
			return
		}

		w := &cachedWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if c.Writer.Status() == http.StatusOK && w.buf.Len() > 0 {
			_ = rc.Set(c.Request.Context(), key, w.buf.String(), opts.TTL)
		}
	}
}

// PurgeCache removes every cached response. Called after any workflow
// write so listings never serve stale moderation state.
func PurgeCache(ctx context.Context, rc *pkgredis.Client) (int64, error) {
	if rc == nil {
		return 0, nil
	}
	return rc.DelPattern(ctx, cacheKeyPrefix+"*")
}
