// Package ids hands out the human-readable entity ids (a001, pa014,
// req003, req_user002, ...). Each kind has a sequence row; the counter is
// seeded lazily from the ids already present in the kind's table, so
// pre-existing data keeps numbering monotonic. Allocation is serialized
// per kind with a mutex and the counter update runs in its own short
// transaction, which removes the scan-then-insert duplicate-id race of
// naive max-scan allocation. A rolled-back caller burns a number; gaps
// are harmless.
package ids

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/plumablog/core/internal/models"
	"github.com/plumablog/core/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Kind identifies one id namespace.
type Kind struct {
	Name   string // sequence row key
	Prefix string // id prefix
	Table  string // table scanned to seed the counter
}

var (
	Article        = Kind{Name: "article", Prefix: "a", Table: "articles"}
	PendingArticle = Kind{Name: "pending_article", Prefix: "pa", Table: "pending_articles"}
	ArticleRequest = Kind{Name: "article_request", Prefix: "req", Table: "article_requests"}
	UserRequest    = Kind{Name: "user_request", Prefix: "req_user", Table: "user_requests"}
	Tag            = Kind{Name: "tag", Prefix: "t", Table: "tags"}
)

// Allocator allocates collision-free ids backed by the sequences table.
type Allocator struct {
	db *gorm.DB

	mu    sync.Mutex
	kinds map[string]*sync.Mutex
}

func New(db *gorm.DB) *Allocator {
	return &Allocator{db: db, kinds: make(map[string]*sync.Mutex)}
}

func (a *Allocator) kindMu(k Kind) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.kinds[k.Name]
	if !ok {
		m = &sync.Mutex{}
		a.kinds[k.Name] = m
	}
	return m
}

// Next returns the next id for the kind, e.g. "pa042". The numeric suffix
// is zero-padded to three digits but never truncated beyond that.
func (a *Allocator) Next(k Kind) (string, error) {
	mu := a.kindMu(k)
	mu.Lock()
	defer mu.Unlock()

	var value int64
	err := a.db.Transaction(func(tx *gorm.DB) error {
		var seq models.SequenceModel
		err := tx.Where("kind = ?", k.Name).First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seeded, serr := seedMax(tx, k)
			if serr != nil {
				return serr
			}
			seq = models.SequenceModel{Kind: k.Name, Value: seeded}
			if cerr := tx.Create(&seq).Error; cerr != nil {
				return cerr
			}
		} else if err != nil {
			return err
		}

		seq.Value++
		value = seq.Value
		return tx.Model(&models.SequenceModel{}).
			Where("kind = ?", k.Name).
			Update("value", seq.Value).Error
	})
	if err != nil {
		return "", apperr.Storage(err)
	}

	return Format(k, value), nil
}

// Format renders an id for the kind, zero-padded to width 3.
func Format(k Kind, n int64) string {
	return fmt.Sprintf("%s%03d", k.Prefix, n)
}

// seedMax scans the kind's table for the highest numeric suffix among ids
// matching prefix+digits. Legacy ids that do not match are ignored.
func seedMax(tx *gorm.DB, k Kind) (int64, error) {
	var existing []string
	if err := tx.Table(k.Table).Pluck("id", &existing).Error; err != nil {
		return 0, err
	}

	var max int64
	for _, id := range existing {
		n, ok := parseSuffix(k.Prefix, id)
		if ok && n > max {
			max = n
		}
	}
	return max, nil
}

func parseSuffix(prefix, id string) (int64, bool) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
