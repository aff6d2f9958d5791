package drafts

import (
	"context"
	"fmt"

	"github.com/angelmondragon/configurator-backend/pkg/db"
	"github.com/angelmondragon/configurator-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStore persists drafts in the configuration_drafts table.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(conn *gorm.DB) *DBStore {
	return &DBStore{db: conn}
}

func (s *DBStore) Put(ctx context.Context, draft Draft) error {
	raw, err := encode(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	row := models.ConfigurationDraft{
		ID:      draft.ID,
		ModelID: draft.Model.ID,
		Payload: string(raw),
		SavedAt: draft.SavedAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"model_id", "payload", "saved_at", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *DBStore) Get(ctx context.Context, id uuid.UUID) (Draft, error) {
	var row models.ConfigurationDraft
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if db.IsNotFound(err) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, err
	}
	return decode([]byte(row.Payload))
}

func (s *DBStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ConfigurationDraft{}).Error
}

func (s *DBStore) List(ctx context.Context) ([]Draft, error) {
	return s.list(s.db.WithContext(ctx))
}

func (s *DBStore) ListByModel(ctx context.Context, modelID uuid.UUID) ([]Draft, error) {
	return s.list(s.db.WithContext(ctx).Where("model_id = ?", modelID))
}

func (s *DBStore) list(query *gorm.DB) ([]Draft, error) {
	var rows []models.ConfigurationDraft
	if err := query.Order("saved_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Draft, 0, len(rows))
	for _, row := range rows {
		d, err := decode([]byte(row.Payload))
		if err != nil {
			return nil, fmt.Errorf("decode draft %s: %w", row.ID, err)
		}
		out = append(out, d)
	}
	return out, nil
}
