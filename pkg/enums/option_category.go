package enums

import "fmt"

// OptionCategory names a configurable dimension of a vehicle.
type OptionCategory string

const (
	OptionCategoryEngine       OptionCategory = "engine"
	OptionCategoryTransmission OptionCategory = "transmission"
	OptionCategoryColor        OptionCategory = "color"
	OptionCategoryRim          OptionCategory = "rim"
	OptionCategoryInterior     OptionCategory = "interior"
	OptionCategoryAssistance   OptionCategory = "assistance"
	OptionCategoryComfort      OptionCategory = "comfort"
)

var singleSelectCategories = []OptionCategory{
	OptionCategoryEngine,
	OptionCategoryTransmission,
	OptionCategoryColor,
	OptionCategoryRim,
	OptionCategoryInterior,
}

var multiSelectCategories = []OptionCategory{
	OptionCategoryAssistance,
	OptionCategoryComfort,
}

// String implements fmt.Stringer.
func (c OptionCategory) String() string {
	return string(c)
}

// IsSingleSelect reports whether at most one option of the category may be active.
func (c OptionCategory) IsSingleSelect() bool {
	for _, candidate := range singleSelectCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsMultiSelect reports whether the category holds a set of features.
func (c OptionCategory) IsMultiSelect() bool {
	for _, candidate := range multiSelectCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsValid reports whether the value is a known OptionCategory.
func (c OptionCategory) IsValid() bool {
	return c.IsSingleSelect() || c.IsMultiSelect()
}

// Step returns the completion step a selection in this category satisfies.
func (c OptionCategory) Step() Step {
	switch c {
	case OptionCategoryEngine:
		return StepEngine
	case OptionCategoryTransmission:
		return StepTransmission
	case OptionCategoryColor:
		return StepExteriorColor
	case OptionCategoryRim:
		return StepRims
	case OptionCategoryInterior:
		return StepUpholstery
	case OptionCategoryAssistance:
		return StepAssistance
	case OptionCategoryComfort:
		return StepComfort
	}
	return ""
}

// SingleSelectCategories returns the single-select categories in display order.
func SingleSelectCategories() []OptionCategory {
	out := make([]OptionCategory, len(singleSelectCategories))
	copy(out, singleSelectCategories)
	return out
}

// ParseOptionCategory converts raw input into an OptionCategory.
func ParseOptionCategory(value string) (OptionCategory, error) {
	candidate := OptionCategory(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid option category %q", value)
}
