package user

import (
	"fmt"
	"time"
)

// UnknownUserName is rendered for ids that are not in the registry
const UnknownUserName = "Неизвестный пользователь"

// User is a household member identified by their Telegram chat id
type User struct {
	ChatID    int64     `gorm:"primaryKey;autoIncrement:false" json:"chat_id"`
	Username  *string   `gorm:"type:varchar(255)" json:"username"`
	FirstName *string   `gorm:"type:varchar(255)" json:"first_name"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// DisplayName prefers the first name, then the username
func (u User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return placeholderFirstName(u.ChatID)
}

// Profile carries whatever the caller knows about a user at write time.
// Empty fields mean "unknown" and never overwrite stored values.
type Profile struct {
	ChatID    int64
	Username  string
	FirstName string
}

func placeholderUsername(chatID int64) string {
	return fmt.Sprintf("user_%d", chatID)
}

func placeholderFirstName(chatID int64) string {
	return fmt.Sprintf("User %d", chatID)
}
