package shopping

import "time"

const (
	// DefaultCategory applies to items added without a category and to rows
	// created before categories existed.
	DefaultCategory = "supermarket"
	// CategoryAll disables the category filter in List
	CategoryAll = "all"
)

// Item is an entry on the shared shopping list
type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemText  string    `gorm:"type:varchar(255);not null" json:"item_text"`
	ItemKey   string    `gorm:"type:varchar(255);not null;default:''" json:"-"`
	IsChecked bool      `gorm:"not null;default:false" json:"is_checked"`
	Category  string    `gorm:"type:varchar(64);not null;default:'supermarket'" json:"category"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for the Item model
func (Item) TableName() string {
	return "shopping_items"
}

// Filter selects items for List. An empty Category behaves like CategoryAll.
type Filter struct {
	ShowChecked bool
	Category    string
}

// Counts is the checked/unchecked breakdown of the list
type Counts struct {
	Total     int64 `json:"total"`
	Unchecked int64 `json:"unchecked"`
	Checked   int64 `json:"checked"`
}
