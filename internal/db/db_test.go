package db

import (
	"path/filepath"
	"testing"

	"travel_risk/internal/config"
	"travel_risk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "app.db?_foreign_keys=1", SQLiteDSN("app.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=1", SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "app.db?_foreign_keys=0", SQLiteDSN("app.db?_foreign_keys=0"))
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "risk.db")}
	d, err := Open(cfg)
	require.NoError(t, err)
	sqlDB, _ := d.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(d))
	for _, table := range []string{"users", "travelers", "trips"} {
		assert.True(t, d.Migrator().HasTable(table), table)
	}

	// Duplicate unique keys surface as gorm.ErrDuplicatedKey
	u := domain.User{Username: "a", Email: "a@example.com", Password: "x", Role: domain.RoleTraveler, Timezone: "UTC"}
	require.NoError(t, d.Create(&u).Error)
	dup := domain.User{Username: "a", Email: "b@example.com", Password: "x", Role: domain.RoleTraveler, Timezone: "UTC"}
	assert.ErrorIs(t, d.Create(&dup).Error, gorm.ErrDuplicatedKey)
}
