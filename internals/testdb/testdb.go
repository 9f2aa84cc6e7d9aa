// Package testdb menyiapkan SQLite in-memory yang sudah ter-migrate untuk test.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"smartstudy_backend/internals/configs"
	database "smartstudy_backend/internals/databases"
)

const (
	TestJWTSecret     = "test-secret"
	TestRefreshSecret = "test-refresh-secret"
)

// New: satu database per test (nama unik), satu koneksi supaya transaksi konsisten.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	configs.JWTSecret = TestJWTSecret
	configs.JWTRefreshSecret = TestRefreshSecret
	configs.MidtransServerKey = ""
	configs.GoogleClientID = ""

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}
