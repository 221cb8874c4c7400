// Package dbtest opens throwaway SQLite databases carrying the storefront
// schema for repository tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
)

// Schema mirrors the Postgres migrations in SQLite types.
const Schema = `
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL,
  price TEXT NOT NULL,
  available_for TEXT NOT NULL DEFAULT '{}',
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(id),
  action TEXT NOT NULL CHECK (action IN ('buy', 'rent')),
  status TEXT NOT NULL DEFAULT 'pending',
  quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
  unit_price TEXT NOT NULL,
  created_at DATETIME
);
`

// Open returns a private in-memory database with Schema applied. Foreign keys
// are enforced so inserts referencing unknown products fail.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.Exec(Schema).Error; err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return conn
}

// SeedProduct inserts a product row and returns it.
func SeedProduct(t testing.TB, conn *gorm.DB, p models.Product) models.Product {
	t.Helper()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.AvailableFor == nil {
		p.AvailableFor = pq.StringArray{"buy"}
	}
	if err := conn.Create(&p).Error; err != nil {
		t.Fatalf("seed product %q: %v", p.Name, err)
	}
	return p
}

// SeedUser inserts a customer account and returns it.
func SeedUser(t testing.TB, conn *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		FullName:     "Test Pilot",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	if err := conn.Create(&u).Error; err != nil {
		t.Fatalf("seed user %q: %v", email, err)
	}
	return u
}
