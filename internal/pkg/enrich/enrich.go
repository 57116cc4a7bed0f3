// Package enrich provides the cross-reference lookups shared by listing
// endpoints: author display names and tag objects. Missing references
// resolve to zero values, never errors.
package enrich

import (
	"github.com/plumablog/core/internal/models"
	"gorm.io/gorm"
)

// AuthorNames resolves user ids to display names. Unknown ids are absent
// from the map; callers render an empty string.
func AuthorNames(db *gorm.DB, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var users []models.UserModel
	if err := db.Select("id, name").Where("id IN ?", dedupe(ids)).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// Tags resolves tag ids to full tag objects. Unknown ids are dropped.
func Tags(db *gorm.DB, ids []string) (map[string]models.TagModel, error) {
	tags := make(map[string]models.TagModel, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	var rows []models.TagModel
	if err := db.Where("id IN ?", dedupe(ids)).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, t := range rows {
		tags[t.ID] = t
	}
	return tags, nil
}

// ResolveTags maps a stored tag-id list to tag objects, skipping ids that
// no longer exist.
func ResolveTags(lookup map[string]models.TagModel, ids models.StringSlice) []models.TagModel {
	out := make([]models.TagModel, 0, len(ids))
	for _, id := range ids {
		if t, ok := lookup[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
