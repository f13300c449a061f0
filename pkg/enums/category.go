package enums

import "fmt"

// Category groups subscriptions for spend breakdowns.
type Category string

const (
	CategoryStreaming    Category = "streaming"
	CategoryMusic        Category = "music"
	CategoryGaming       Category = "gaming"
	CategoryProductivity Category = "productivity"
	CategoryFitness      Category = "fitness"
	CategoryNews         Category = "news"
	CategoryCloud        Category = "cloud"
	CategoryFood         Category = "food"
	CategoryOther        Category = "other"
)

var validCategories = []Category{
	CategoryStreaming,
	CategoryMusic,
	CategoryGaming,
	CategoryProductivity,
	CategoryFitness,
	CategoryNews,
	CategoryCloud,
	CategoryFood,
	CategoryOther,
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategory converts raw input into a Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}
