package enums

import (
	"fmt"
	"strings"
)

// ItemCategory classifies a catalog item. Package marks travel packages; the
// remaining values are motorcycle segments.
type ItemCategory string

const (
	ItemCategorySport     ItemCategory = "Sport"
	ItemCategoryCruiser   ItemCategory = "Cruiser"
	ItemCategoryAdventure ItemCategory = "Adventure"
	ItemCategoryNaked     ItemCategory = "Naked"
	ItemCategoryTouring   ItemCategory = "Touring"
	ItemCategoryPackage   ItemCategory = "Package"
)

var validItemCategories = []ItemCategory{
	ItemCategorySport,
	ItemCategoryCruiser,
	ItemCategoryAdventure,
	ItemCategoryNaked,
	ItemCategoryTouring,
	ItemCategoryPackage,
}

// String implements fmt.Stringer.
func (c ItemCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ItemCategory.
func (c ItemCategory) IsValid() bool {
	for _, candidate := range validItemCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCategory converts raw input into an ItemCategory. Matching is
// case-insensitive so "/items/category/sport" resolves like "Sport".
func ParseItemCategory(value string) (ItemCategory, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validItemCategories {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item category %q", value)
}
