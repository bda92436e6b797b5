package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// Migration represents an applied database migration
type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName keeps migration bookkeeping apart from domain tables.
func (Migration) TableName() string {
	return "schema_migrations"
}

// MigrationFunc is a function that performs a migration
type MigrationFunc func(*gorm.DB) error

// MigrationEntry represents a single migration
type MigrationEntry struct {
	Version string
	Name    string
	Up      MigrationFunc
}

// Migrator handles database migrations
type Migrator struct {
	db         *gorm.DB
	migrations []MigrationEntry
	logger     interfaces.Logger
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *gorm.DB, migrations []MigrationEntry, logger interfaces.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: migrations,
		logger:     logger,
	}
}

// Migrate runs all pending migrations, each in its own transaction
func (m *Migrator) Migrate() error {
	pending, err := m.GetPendingMigrations()
	if err != nil {
		return err
	}

	for _, migration := range pending {
		m.logger.Info("Running migration",
			interfaces.String("version", migration.Version),
			interfaces.String("name", migration.Name))

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}

			return tx.Create(&Migration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}
	}

	return nil
}

// Applied returns applied migrations, newest first
func (m *Migrator) Applied() ([]Migration, error) {
	if err := m.db.AutoMigrate(&Migration{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []Migration
	if err := m.db.Order("applied_at DESC").Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return applied, nil
}

// GetPendingMigrations returns a list of pending migrations in order
func (m *Migrator) GetPendingMigrations() ([]MigrationEntry, error) {
	applied, err := m.Applied()
	if err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(applied))
	for _, migration := range applied {
		done[migration.Version] = true
	}

	var pending []MigrationEntry
	for _, migration := range m.migrations {
		if !done[migration.Version] {
			pending = append(pending, migration)
		}
	}

	return pending, nil
}
