// Package tagging maps external provider category tags onto the fixed
// category taxonomy.
package tagging

import (
	"sort"
	"strings"

	"github.com/localpress/localpress/internal/models"
)

// providerCategories is the provider tag table. Tags are compared after
// lower-casing and trimming.
var providerCategories = map[string]models.CategoryKey{
	"politics":    models.CategoryPolitics,
	"business":    models.CategoryBusiness,
	"sports":      models.CategorySports,
	"domestic":    models.CategoryLocal,
	"other":       models.CategoryCommunity,
	"environment": models.CategoryCommunity,
	"health":      models.CategoryCommunity,
	"science":     models.CategoryCommunity,
	"technology":  models.CategoryBusiness,
}

// MapCategory resolves a single provider tag. Unknown or empty tags map to
// the default category.
func MapCategory(tag string) models.CategoryRef {
	key, ok := providerCategories[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return models.DefaultCategoryRef()
	}
	return key.Ref()
}

// MapCategories resolves a provider record's tag list. Only the first tag
// is considered; the rest are ignored.
func MapCategories(tags []string) models.CategoryRef {
	if len(tags) == 0 {
		return models.DefaultCategoryRef()
	}
	return MapCategory(tags[0])
}

// ProviderTags lists the provider tags that map onto key, sorted.
func ProviderTags(key models.CategoryKey) []string {
	tags := make([]string, 0)
	for tag, k := range providerCategories {
		if k == key {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}
