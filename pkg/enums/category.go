package enums

import "fmt"

// Category classifies an order line item. CategoryXerox marks print jobs,
// which carry a print configuration instead of a catalog product reference.
type Category string

const (
	CategoryStationery Category = "stationery"
	CategoryBooks      Category = "books"
	CategoryFood       Category = "food"
	CategoryEssentials Category = "essentials"
	CategoryXerox      Category = "xerox"
)

var validCategories = []Category{
	CategoryStationery,
	CategoryBooks,
	CategoryFood,
	CategoryEssentials,
	CategoryXerox,
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

// IsXerox reports whether the category is the print-job category.
func (c Category) IsXerox() bool {
	return c == CategoryXerox
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
