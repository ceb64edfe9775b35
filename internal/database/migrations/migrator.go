package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// SQLFiles holds the PostgreSQL migrations shipped with the binary
//
//go:embed sql/*.sql
var SQLFiles embed.FS

// Migration represents a database migration
type Migration struct {
	ID   string
	Up   func(*gorm.DB) error
	Down func(*gorm.DB) error
}

// Migrator keeps a registry of migrations and applies pending ones in ID order
type Migrator struct {
	migrations map[string]Migration
	logger     *slog.Logger
}

func NewMigrator(logger *slog.Logger) *Migrator {
	return &Migrator{
		migrations: make(map[string]Migration),
		logger:     logger,
	}
}

// Register adds a new migration to the registry
func (m *Migrator) Register(id string, up, down func(*gorm.DB) error) {
	m.migrations[id] = Migration{
		ID:   id,
		Up:   up,
		Down: down,
	}
}

// MigrationRecord represents a record of executed migrations
type MigrationRecord struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt int64  `gorm:"autoCreateTime"`
}

// RunMigrations executes all pending migrations and returns the IDs it applied
func (m *Migrator) RunMigrations(db *gorm.DB) ([]string, error) {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	ids := make([]string, 0, len(m.migrations))
	for id := range m.migrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var executed []MigrationRecord
	if err := db.Find(&executed).Error; err != nil {
		return nil, fmt.Errorf("failed to get executed migrations: %w", err)
	}

	executedMap := make(map[string]bool, len(executed))
	for _, rec := range executed {
		executedMap[rec.ID] = true
	}

	var applied []string
	for _, id := range ids {
		if executedMap[id] {
			continue
		}

		migration := m.migrations[id]
		m.logger.Info("Running migration", "id", id)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{ID: id}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("failed to run migration %s: %w", id, err)
		}
		applied = append(applied, id)
		m.logger.Info("Completed migration", "id", id)
	}

	return applied, nil
}

// LoadSQLMigrations registers every .sql file in dir of fsys, keyed by file name
func (m *Migrator) LoadSQLMigrations(fsys fs.FS, dir string) error {
	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		id := strings.TrimSuffix(file.Name(), ".sql")
		content, err := fs.ReadFile(fsys, path.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		statement := string(content)
		m.Register(id, func(db *gorm.DB) error {
			return db.Exec(statement).Error
		}, nil) // No down migration for SQL files
	}

	return nil
}
