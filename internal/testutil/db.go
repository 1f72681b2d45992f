package testutil

import (
	"path/filepath"
	"testing"

	"medlink/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated SQLite database in a per-test temp dir. A single connection
// keeps writes serialised, so callbacks inside db.Transaction must use the tx handle.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	return openTestDB(t, "?_busy_timeout=5000", 1)
}

// NewConcurrentTestDB is NewTestDB with a WAL journal and a pool of connections, so
// goroutines really race on the database. Transactions begin IMMEDIATE and writers wait
// on the busy timeout instead of failing with SQLITE_BUSY.
func NewConcurrentTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	return openTestDB(t, "?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate", 8)
}

func openTestDB(t testing.TB, params string, conns int) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "medlink.db") + params
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedRewardSettings(db); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	return db
}
