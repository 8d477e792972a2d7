package chore

import (
	"chorebot-api/internal/database"

	"gorm.io/gorm"
)

const MigrationModule = "chore"

func migrations() []database.Migration {
	return []database.Migration{
		{
			Version: 1,
			Name:    "create tasks and task_history",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&Task{}, &TaskHistory{})
			},
		},
	}
}

// RunMigrations brings the task tables up to date
func RunMigrations(db *gorm.DB) error {
	_, err := database.ApplyMigrations(db, MigrationModule, migrations())
	return err
}
