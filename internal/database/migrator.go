package database

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Migration is one additive schema step owned by a module
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// SchemaMigration records an applied step
type SchemaMigration struct {
	Module    string    `gorm:"primaryKey;type:varchar(64)"`
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"type:varchar(255);not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the SchemaMigration model
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// ApplyMigrations runs every step of module newer than the recorded schema
// version, each in its own transaction. It returns the number of steps applied.
func ApplyMigrations(db *gorm.DB, module string, migrations []Migration) (int, error) {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	steps := make([]Migration, len(migrations))
	copy(steps, migrations)
	sort.Slice(steps, func(i, j int) bool { return steps[i].Version < steps[j].Version })
	for i := 1; i < len(steps); i++ {
		if steps[i].Version == steps[i-1].Version {
			return 0, fmt.Errorf("duplicate migration version %d for module %s", steps[i].Version, module)
		}
	}

	current, err := SchemaVersion(db, module)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, step := range steps {
		if step.Version <= current {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := step.Up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Module:    module,
				Version:   step.Version,
				Name:      step.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration %s/%d (%s) failed: %w", module, step.Version, step.Name, err)
		}
		applied++
	}

	return applied, nil
}

// SchemaVersion returns the highest applied version for module, or 0
func SchemaVersion(db *gorm.DB, module string) (int, error) {
	var version sql.NullInt64
	err := db.Model(&SchemaMigration{}).
		Where("module = ?", module).
		Select("MAX(version)").
		Row().
		Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version for %s: %w", module, err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

// ExecAll runs each statement in order, stopping at the first failure
func ExecAll(tx *gorm.DB, statements ...string) error {
	for _, stmt := range statements {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return nil
}
