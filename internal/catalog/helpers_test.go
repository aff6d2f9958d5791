package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	vehicleModels := `
CREATE TABLE IF NOT EXISTS vehicle_models (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  brand TEXT NOT NULL,
  base_price TEXT NOT NULL,
  image_url TEXT,
  asset_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	catalogOptions := `
CREATE TABLE IF NOT EXISTS catalog_options (
  id TEXT PRIMARY KEY,
  category TEXT NOT NULL,
  feature_category TEXT,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  additional_price TEXT NOT NULL DEFAULT '0',
  position INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(vehicleModels).Error)
	require.NoError(t, conn.Exec(catalogOptions).Error)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
