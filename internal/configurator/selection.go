package configurator

import (
	"github.com/angelmondragon/configurator-backend/internal/catalog"
	"github.com/angelmondragon/configurator-backend/pkg/enums"
	"github.com/google/uuid"
)

// Selection is the active choice per single-select category plus the two feature sets.
// Feature sets are unique by id and keep insertion order.
type Selection struct {
	Engine       *catalog.Option   `json:"engine,omitempty"`
	Transmission *catalog.Option   `json:"transmission,omitempty"`
	Color        *catalog.Option   `json:"color,omitempty"`
	Rim          *catalog.Option   `json:"rim,omitempty"`
	Interior     *catalog.Option   `json:"interior,omitempty"`
	Assistance   []catalog.Feature `json:"assistance"`
	Comfort      []catalog.Feature `json:"comfort"`
}

func emptySelection() Selection {
	return Selection{Assistance: []catalog.Feature{}, Comfort: []catalog.Feature{}}
}

func (s *Selection) singleSlot(category enums.OptionCategory) **catalog.Option {
	switch category {
	case enums.OptionCategoryEngine:
		return &s.Engine
	case enums.OptionCategoryTransmission:
		return &s.Transmission
	case enums.OptionCategoryColor:
		return &s.Color
	case enums.OptionCategoryRim:
		return &s.Rim
	case enums.OptionCategoryInterior:
		return &s.Interior
	}
	return nil
}

func (s *Selection) featureSlot(category enums.OptionCategory) *[]catalog.Feature {
	switch category {
	case enums.OptionCategoryAssistance:
		return &s.Assistance
	case enums.OptionCategoryComfort:
		return &s.Comfort
	}
	return nil
}

// Single returns the active option for a single-select category, or nil.
func (s Selection) Single(category enums.OptionCategory) *catalog.Option {
	if slot := s.singleSlot(category); slot != nil {
		return *slot
	}
	return nil
}

// Features returns the active features of a multi-select category.
func (s Selection) Features(category enums.OptionCategory) []catalog.Feature {
	if slot := s.featureSlot(category); slot != nil {
		return *slot
	}
	return nil
}

// HasFeature reports whether id is in the category's set.
func (s Selection) HasFeature(category enums.OptionCategory, id uuid.UUID) bool {
	for _, f := range s.Features(category) {
		if f.ID == id {
			return true
		}
	}
	return false
}

func (s Selection) clone() Selection {
	out := Selection{
		Assistance: append([]catalog.Feature{}, s.Assistance...),
		Comfort:    append([]catalog.Feature{}, s.Comfort...),
	}
	for _, category := range enums.SingleSelectCategories() {
		if opt := s.Single(category); opt != nil {
			copied := *opt
			*out.singleSlot(category) = &copied
		}
	}
	return out
}
