package configurator

import (
	"github.com/angelmondragon/configurator-backend/internal/catalog"
	"github.com/angelmondragon/configurator-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func opt(category enums.OptionCategory, name, price string) catalog.Option {
	return catalog.Option{
		ID:              uuid.New(),
		Category:        category,
		Name:            name,
		Brand:           "Nordwind",
		AdditionalPrice: decimal.RequireFromString(price),
	}
}

func feat(group enums.FeatureCategory, name, price string) catalog.Feature {
	return catalog.Feature{Option: opt(group.OptionCategory(), name, price), FeatureCategory: group}
}

// scenarioCatalog has one entry per category at the prices of the reference
// end-to-end example plus a few alternatives.
func scenarioCatalog(base string) *catalog.Catalog {
	return &catalog.Catalog{
		Model: catalog.Model{
			ID:        uuid.New(),
			Name:      "Aurora",
			Type:      "sedan",
			Brand:     "Nordwind",
			BasePrice: decimal.RequireFromString(base),
		},
		Engines: []catalog.Option{
			opt(enums.OptionCategoryEngine, "V6", "3500"),
			opt(enums.OptionCategoryEngine, "V8", "5000"),
		},
		Transmissions: []catalog.Option{opt(enums.OptionCategoryTransmission, "Automatic", "0")},
		Colors: []catalog.Option{
			opt(enums.OptionCategoryColor, "Glacier", "900"),
			opt(enums.OptionCategoryColor, "Obsidian", "1200"),
		},
		Rims:      []catalog.Option{opt(enums.OptionCategoryRim, "19 inch", "1200")},
		Interiors: []catalog.Option{opt(enums.OptionCategoryInterior, "Leather", "600")},
		Assistance: []catalog.Feature{
			feat(enums.FeatureCategoryAssistance, "Lane assist", "1100"),
			feat(enums.FeatureCategoryAssistance, "Park assist", "800"),
			feat(enums.FeatureCategoryAssistance, "Night vision", "1500"),
		},
		Comfort: []catalog.Feature{
			feat(enums.FeatureCategoryComfort, "Heated seats", "400"),
			feat(enums.FeatureCategoryComfort, "Ambient light", "250"),
		},
	}
}
