package enums

import "fmt"

// FeatureCategory partitions optional features into their multi-select groups.
type FeatureCategory string

const (
	FeatureCategoryAssistance FeatureCategory = "assistance"
	FeatureCategoryComfort    FeatureCategory = "comfort"
)

var validFeatureCategories = []FeatureCategory{
	FeatureCategoryAssistance,
	FeatureCategoryComfort,
}

// String implements fmt.Stringer.
func (f FeatureCategory) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FeatureCategory.
func (f FeatureCategory) IsValid() bool {
	for _, candidate := range validFeatureCategories {
		if candidate == f {
			return true
		}
	}
	return false
}

// OptionCategory maps the feature group onto its multi-select option category.
func (f FeatureCategory) OptionCategory() OptionCategory {
	return OptionCategory(f)
}

// ParseFeatureCategory converts raw input into a FeatureCategory.
func ParseFeatureCategory(value string) (FeatureCategory, error) {
	for _, candidate := range validFeatureCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feature category %q", value)
}
