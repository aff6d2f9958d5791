package catalog

import (
	"github.com/angelmondragon/configurator-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Model is a vehicle line offered for configuration.
type Model struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Brand     string          `json:"brand"`
	BasePrice decimal.Decimal `json:"base_price"`
	ImageURL  string          `json:"image_url,omitempty"`
	AssetURL  string          `json:"asset_url,omitempty"`
}

// Option is an immutable catalog entry for one single-select category.
type Option struct {
	ID              uuid.UUID            `json:"id"`
	Category        enums.OptionCategory `json:"category"`
	Name            string               `json:"name"`
	Brand           string               `json:"brand,omitempty"`
	AdditionalPrice decimal.Decimal      `json:"additional_price"`
}

// Feature is an optional extra belonging to the assistance or comfort group.
type Feature struct {
	Option
	FeatureCategory enums.FeatureCategory `json:"feature_category"`
}

// Catalog is everything offered for one model, already filtered to the model's brand.
type Catalog struct {
	Model         Model     `json:"model"`
	Engines       []Option  `json:"engines"`
	Transmissions []Option  `json:"transmissions"`
	Colors        []Option  `json:"colors"`
	Rims          []Option  `json:"rims"`
	Interiors     []Option  `json:"interiors"`
	Assistance    []Feature `json:"assistance"`
	Comfort       []Feature `json:"comfort"`
}

// Options returns the offered options for a single-select category.
func (c *Catalog) Options(category enums.OptionCategory) []Option {
	if c == nil {
		return nil
	}
	switch category {
	case enums.OptionCategoryEngine:
		return c.Engines
	case enums.OptionCategoryTransmission:
		return c.Transmissions
	case enums.OptionCategoryColor:
		return c.Colors
	case enums.OptionCategoryRim:
		return c.Rims
	case enums.OptionCategoryInterior:
		return c.Interiors
	}
	return nil
}

// Features returns the offered features for a multi-select category.
func (c *Catalog) Features(category enums.OptionCategory) []Feature {
	if c == nil {
		return nil
	}
	switch category {
	case enums.OptionCategoryAssistance:
		return c.Assistance
	case enums.OptionCategoryComfort:
		return c.Comfort
	}
	return nil
}

// Lookup finds a single-select option by id.
func (c *Catalog) Lookup(category enums.OptionCategory, id uuid.UUID) (Option, bool) {
	for _, opt := range c.Options(category) {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// LookupFeature finds a feature by id within its group.
func (c *Catalog) LookupFeature(category enums.OptionCategory, id uuid.UUID) (Feature, bool) {
	for _, feature := range c.Features(category) {
		if feature.ID == id {
			return feature, true
		}
	}
	return Feature{}, false
}
