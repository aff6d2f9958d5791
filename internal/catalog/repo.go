package catalog

import (
	"context"
	"errors"

	"github.com/angelmondragon/configurator-backend/pkg/db"
	"github.com/angelmondragon/configurator-backend/pkg/db/models"
	"github.com/angelmondragon/configurator-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrModelNotFound is returned by Fetcher.FetchModel for unknown or inactive models.
var ErrModelNotFound = errors.New("catalog: model not found")

// Fetcher returns flat catalog lists. Callers filter and partition the results.
type Fetcher interface {
	FetchModels(ctx context.Context) ([]Model, error)
	FetchModel(ctx context.Context, id uuid.UUID) (*Model, error)
	FetchEngines(ctx context.Context) ([]Option, error)
	FetchTransmissions(ctx context.Context) ([]Option, error)
	FetchColors(ctx context.Context) ([]Option, error)
	FetchRims(ctx context.Context) ([]Option, error)
	FetchInteriors(ctx context.Context) ([]Option, error)
	FetchFeatures(ctx context.Context) ([]Feature, error)
}

// Repository reads the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) FetchModels(ctx context.Context) ([]Model, error) {
	var rows []models.VehicleModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("brand ASC").
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Model, 0, len(rows))
	for _, row := range rows {
		out = append(out, modelFromRow(row))
	}
	return out, nil
}

func (r *Repository) FetchModel(ctx context.Context, id uuid.UUID) (*Model, error) {
	var row models.VehicleModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&row).Error
	if db.IsNotFound(err) {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, err
	}
	model := modelFromRow(row)
	return &model, nil
}

func (r *Repository) FetchEngines(ctx context.Context) ([]Option, error) {
	return r.fetchOptions(ctx, enums.OptionCategoryEngine)
}

func (r *Repository) FetchTransmissions(ctx context.Context) ([]Option, error) {
	return r.fetchOptions(ctx, enums.OptionCategoryTransmission)
}

func (r *Repository) FetchColors(ctx context.Context) ([]Option, error) {
	return r.fetchOptions(ctx, enums.OptionCategoryColor)
}

func (r *Repository) FetchRims(ctx context.Context) ([]Option, error) {
	return r.fetchOptions(ctx, enums.OptionCategoryRim)
}

func (r *Repository) FetchInteriors(ctx context.Context) ([]Option, error) {
	return r.fetchOptions(ctx, enums.OptionCategoryInterior)
}

func (r *Repository) FetchFeatures(ctx context.Context) ([]Feature, error) {
	rows, err := r.optionRows(ctx, enums.OptionCategoryAssistance, enums.OptionCategoryComfort)
	if err != nil {
		return nil, err
	}
	out := make([]Feature, 0, len(rows))
	for _, row := range rows {
		group := enums.FeatureCategory(row.Category)
		if row.FeatureCategory != nil {
			group = *row.FeatureCategory
		}
		out = append(out, Feature{Option: optionFromRow(row), FeatureCategory: group})
	}
	return out, nil
}

func (r *Repository) fetchOptions(ctx context.Context, category enums.OptionCategory) ([]Option, error) {
	rows, err := r.optionRows(ctx, category)
	if err != nil {
		return nil, err
	}
	out := make([]Option, 0, len(rows))
	for _, row := range rows {
		out = append(out, optionFromRow(row))
	}
	return out, nil
}

func (r *Repository) optionRows(ctx context.Context, categories ...enums.OptionCategory) ([]models.CatalogOption, error) {
	var rows []models.CatalogOption
	err := r.db.WithContext(ctx).
		Where("category IN ? AND is_active = ?", categories, true).
		Order("position ASC").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func modelFromRow(row models.VehicleModel) Model {
	model := Model{
		ID:        row.ID,
		Name:      row.Name,
		Type:      row.Type,
		Brand:     row.Brand,
		BasePrice: row.BasePrice,
	}
	if row.ImageURL != nil {
		model.ImageURL = *row.ImageURL
	}
	if row.AssetURL != nil {
		model.AssetURL = *row.AssetURL
	}
	return model
}

func optionFromRow(row models.CatalogOption) Option {
	return Option{
		ID:              row.ID,
		Category:        row.Category,
		Name:            row.Name,
		Brand:           row.Brand,
		AdditionalPrice: row.AdditionalPrice,
	}
}
