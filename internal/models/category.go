package models

// CategoryKey identifies one entry of the fixed category taxonomy.
type CategoryKey string

const (
	CategoryLocal     CategoryKey = "local"
	CategoryPolitics  CategoryKey = "politics"
	CategoryBusiness  CategoryKey = "business"
	CategorySports    CategoryKey = "sports"
	CategoryWeather   CategoryKey = "weather"
	CategoryCommunity CategoryKey = "community"
)

// DefaultCategory is assigned whenever a record carries no usable category.
const DefaultCategory = CategoryLocal

// Category is a taxonomy entry with its presentation attributes.
type Category struct {
	Key         CategoryKey `json:"key"`
	Label       string      `json:"label"`
	Style       string      `json:"style"`
	Description string      `json:"description"`
}

// CategoryRef is the category tag carried by an Article.
type CategoryRef struct {
	Key   CategoryKey `json:"key"`
	Value string      `json:"value"`
}

var taxonomy = []Category{
	{Key: CategoryLocal, Label: "Local News", Style: "news-local", Description: "Community news and local events"},
	{Key: CategoryPolitics, Label: "Politics", Style: "news-politics", Description: "Political news and government updates"},
	{Key: CategoryBusiness, Label: "Business", Style: "news-business", Description: "Business news and economic updates"},
	{Key: CategorySports, Label: "Sports", Style: "news-sports", Description: "Sports news and athletic events"},
	{Key: CategoryWeather, Label: "Weather", Style: "news-weather", Description: "Weather updates and forecasts"},
	{Key: CategoryCommunity, Label: "Community", Style: "news-community", Description: "Community events and social news"},
}

var taxonomyByKey = func() map[CategoryKey]Category {
	m := make(map[CategoryKey]Category, len(taxonomy))
	for _, c := range taxonomy {
		m[c.Key] = c
	}
	return m
}()

// Categories returns the taxonomy in display order.
func Categories() []Category {
	out := make([]Category, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// LookupCategory returns the taxonomy entry for key.
func LookupCategory(key CategoryKey) (Category, bool) {
	c, ok := taxonomyByKey[key]
	return c, ok
}

// IsValid reports whether the key belongs to the taxonomy.
func (k CategoryKey) IsValid() bool {
	_, ok := taxonomyByKey[k]
	return ok
}

// Ref builds the article tag for key, substituting the default for unknown keys.
func (k CategoryKey) Ref() CategoryRef {
	c, ok := taxonomyByKey[k]
	if !ok {
		c = taxonomyByKey[DefaultCategory]
	}
	return CategoryRef{Key: c.Key, Value: c.Label}
}

// DefaultCategoryRef is the tag applied to unmapped records.
func DefaultCategoryRef() CategoryRef {
	return DefaultCategory.Ref()
}
