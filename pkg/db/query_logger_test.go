package db

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"

	"github.com/angelmondragon/configurator-backend/pkg/config"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
)

func openLogged(t *testing.T, slow time.Duration) (*Client, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	client, err := Open(context.Background(), sqlite.Open(dsn), config.DBConfig{SlowQuery: slow}, logg)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().AutoMigrate(&testDraftRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	buf.Reset()
	return client, &buf
}

func TestQueryLoggerReportsFailuresButNotMissingRows(t *testing.T) {
	client, buf := openLogged(t, time.Hour)

	var row testDraftRow
	if err := client.DB().First(&row, "id = ?", 42).Error; !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("not found should not be logged, got %s", buf.String())
	}

	if err := client.DB().Exec("SELECT * FROM missing_table").Error; err == nil {
		t.Fatal("expected query error")
	}
	if !strings.Contains(buf.String(), "db.query_failed") || !strings.Contains(buf.String(), "missing_table") {
		t.Fatalf("expected failed query log, got %s", buf.String())
	}
}

func TestQueryLoggerReportsSlowQueries(t *testing.T) {
	client, buf := openLogged(t, time.Nanosecond)

	if err := client.DB().Create(&testDraftRow{Name: "slow"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(buf.String(), "db.slow_query") {
		t.Fatalf("expected slow query log, got %s", buf.String())
	}
}
