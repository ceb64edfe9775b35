package database

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/protein-tracker/internal/config"
	"github.com/vladimiradmaev/protein-tracker/internal/database/migrations"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db, slog.New(slog.NewTextHandler(io.Discard, nil))))
	return db
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Date("2026-10-17"), d)

	require.NoError(t, d.Scan("2026-10-18T00:00:00Z"))
	assert.Equal(t, Date("2026-10-18"), d)

	require.NoError(t, d.Scan([]byte("2026-10-19")))
	assert.Equal(t, Date("2026-10-19"), d)

	assert.Error(t, d.Scan(42))
}

func TestDailyLogRoundTripsDate(t *testing.T) {
	db := newTestDB(t)

	log := DailyLog{UserID: "u1", Date: "2026-10-17", GoalProtein: 120}
	require.NoError(t, db.Create(&log).Error)
	assert.NotEqual(t, uuid.Nil, log.ID)

	var got DailyLog
	require.NoError(t, db.Where("user_id = ? AND date = ?", "u1", Date("2026-10-17")).First(&got).Error)
	assert.Equal(t, log.ID, got.ID)
	assert.Equal(t, "2026-10-17", got.ToDomain().Date)
}

func TestDailyLogUniquePerUserAndDate(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&DailyLog{UserID: "u1", Date: "2026-10-17", GoalProtein: 120}).Error)
	assert.Error(t, db.Create(&DailyLog{UserID: "u1", Date: "2026-10-17", GoalProtein: 150}).Error)
	assert.NoError(t, db.Create(&DailyLog{UserID: "u2", Date: "2026-10-17", GoalProtein: 150}).Error)
}

func TestFoodEntryBeforeCreateSetsIDAndUTCTime(t *testing.T) {
	db := newTestDB(t)

	entry := FoodEntry{UserID: "u1", FoodName: "Eggs", ProteinGrams: 12, MealTime: "breakfast"}
	require.NoError(t, db.Create(&entry).Error)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, time.UTC, entry.CreatedAt.Location())
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestMigratorRunsPendingOnce(t *testing.T) {
	db := newTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fsys := fstest.MapFS{
		"sql/0001_index.sql": {Data: []byte("CREATE INDEX idx_food_entries_name ON food_entries (food_name);")},
		"sql/0002_notes.sql": {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY);")},
		"sql/README.md":      {Data: []byte("ignored")},
	}

	m := migrations.NewMigrator(logger)
	require.NoError(t, m.LoadSQLMigrations(fsys, "sql"))

	applied, err := m.RunMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_index", "0002_notes"}, applied)
	assert.True(t, db.Migrator().HasTable("notes"))

	applied, err = m.RunMigrations(db)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigratorStopsOnFailure(t *testing.T) {
	db := newTestDB(t)
	m := migrations.NewMigrator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.Register("0001_broken", func(tx *gorm.DB) error {
		return tx.Exec("THIS IS NOT SQL").Error
	}, nil)

	_, err := m.RunMigrations(db)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&migrations.MigrationRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEmbeddedMigrationsAreRegistered(t *testing.T) {
	m := migrations.NewMigrator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, m.LoadSQLMigrations(migrations.SQLFiles, "sql"))
	entries, err := migrations.SQLFiles.ReadDir("sql")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
