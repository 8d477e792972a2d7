package shopping

import (
	"time"

	"chorebot-api/internal/common"
	"chorebot-api/internal/database"

	"gorm.io/gorm"
)

const MigrationModule = "shopping"

// itemV1 is the list as first shipped, without categories or folded keys
type itemV1 struct {
	ID        uint      `gorm:"primaryKey"`
	ItemText  string    `gorm:"type:varchar(255);not null"`
	IsChecked bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

func (itemV1) TableName() string { return "shopping_items" }

type itemV2 struct {
	itemV1
	Category string `gorm:"type:varchar(64);not null;default:'supermarket'"`
}

func (itemV2) TableName() string { return "shopping_items" }

func migrations() []database.Migration {
	return []database.Migration{
		{
			Version: 1,
			Name:    "create shopping_items",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&itemV1{})
			},
		},
		{
			Version: 2,
			Name:    "add category",
			Up: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&itemV2{}); err != nil {
					return err
				}
				return tx.Exec("UPDATE shopping_items SET category = ? WHERE category IS NULL OR category = ''", DefaultCategory).Error
			},
		},
		{
			Version: 3,
			Name:    "unique unchecked item key",
			Up:      addItemKey,
		},
	}
}

// addItemKey backfills the folded key, checks off older unchecked duplicates
// so the partial unique index can be built, then creates it.
func addItemKey(tx *gorm.DB) error {
	if err := tx.AutoMigrate(&Item{}); err != nil {
		return err
	}

	var items []Item
	if err := tx.Order("id ASC").Find(&items).Error; err != nil {
		return err
	}
	seen := make(map[string]bool)
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		key := common.FoldKey(item.ItemText)
		updates := map[string]interface{}{"item_key": key}
		if !item.IsChecked {
			if seen[key] {
				updates["is_checked"] = true
			}
			seen[key] = true
		}
		if err := tx.Model(&Item{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
			return err
		}
	}

	return database.ExecAll(tx,
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_shopping_items_unchecked_key ON shopping_items (item_key) WHERE is_checked = false",
		"CREATE INDEX IF NOT EXISTS idx_shopping_items_category ON shopping_items (category)",
	)
}

// RunMigrations brings the shopping list table up to date
func RunMigrations(db *gorm.DB) error {
	_, err := database.ApplyMigrations(db, MigrationModule, migrations())
	return err
}
