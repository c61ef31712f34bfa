// Package dbtest opens isolated in-memory SQLite databases carrying the application schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/db"
)

// schema mirrors the goose migrations in SQLite terms. Price columns keep NUMERIC
// affinity so decimal parameters compare by value, as they do in Postgres.
var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_subscriber BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE deals (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		price NUMERIC NOT NULL,
		original_price NUMERIC,
		currency TEXT NOT NULL DEFAULT 'USD',
		image_url TEXT,
		is_expired BOOLEAN NOT NULL DEFAULT 0,
		is_disabled BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE wishlist_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		deal_id TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
		alert_enabled BOOLEAN NOT NULL DEFAULT 0,
		saved_price NUMERIC,
		created_at DATETIME,
		CONSTRAINT wishlist_items_user_deal_key UNIQUE (user_id, deal_id)
	)`,
	`CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL DEFAULT 'price_drop',
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		read_at DATETIME,
		created_at DATETIME
	)`,
}

// Open returns a fresh database that lives until the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// a single connection keeps shared-cache table locks out of the way
	sqlDB.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// Client wraps Open in the shared db client.
func Client(t testing.TB) *db.Client {
	t.Helper()
	return db.Wrap(Open(t))
}
