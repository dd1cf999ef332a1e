// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"travel_risk/internal/db"
	"travel_risk/internal/domain"
	"travel_risk/internal/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenInMemoryDB opens a migrated in-memory SQLite database private to the test.
func OpenInMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Shared cache keeps every pooled connection on the same in-memory database.
	dsn := db.SQLiteDSN("file:" + t.Name() + "?mode=memory&cache=shared")
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

// CreateUser inserts a user with a hashed password
func CreateUser(t *testing.T, d *gorm.DB, username, role, password string) *domain.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{Username: username, Email: username + "@example.com", Password: hash, Role: role, Timezone: "UTC"}
	if err := d.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateTraveler inserts a traveler profile for user
func CreateTraveler(t *testing.T, d *gorm.DB, user *domain.User) *domain.Traveler {
	t.Helper()
	tr := &domain.Traveler{UserID: user.ID}
	if err := d.Create(tr).Error; err != nil {
		t.Fatalf("create traveler: %v", err)
	}
	return tr
}

// CreateTrip inserts a trip for traveler
func CreateTrip(t *testing.T, d *gorm.DB, traveler *domain.Traveler, country string) *domain.Trip {
	t.Helper()
	start, _ := domain.ParseDate("2025-06-01")
	end, _ := domain.ParseDate("2025-06-10")
	trip := &domain.Trip{TravelerID: traveler.ID, DestinationCountry: country, StartDate: start, EndDate: end, Purpose: "Business"}
	if err := d.Create(trip).Error; err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return trip
}
