package db

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/craftbazaar/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Open(sqlite.Open("file::memory:"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := Wrap(db, config.LocalDriverSQLite)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	client := Wrap(newTestDB(t), config.LocalDriverSQLite)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.Dialect() != config.LocalDriverSQLite {
		t.Fatalf("unexpected dialect %q", client.Dialect())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(context.Background(), config.LocalStoreConfig{Driver: config.LocalDriverSQLite}, nil); err == nil {
		t.Fatalf("expected error without dsn")
	}
	if _, err := New(context.Background(), config.LocalStoreConfig{Driver: "redis", DSN: "x"}, nil); err == nil {
		t.Fatalf("expected error for non-sql driver")
	}
}

func TestNewOpensSQLite(t *testing.T) {
	dsn := t.TempDir() + "/local.db"
	client, err := New(context.Background(), config.LocalStoreConfig{Driver: config.LocalDriverSQLite, DSN: dsn, MaxOpenConns: 1}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = client.Close() }()
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
