package user

import (
	"context"
	"errors"
	"strconv"
	"time"

	"chorebot-api/internal/common"
	"chorebot-api/internal/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormUserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormUserRepository creates a new GORM-based user repository
func NewGormUserRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormUserRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertTx performs the user upsert on tx so callers can make it part of a
// larger transaction.
func UpsertTx(tx *gorm.DB, profile Profile, at time.Time) error {
	record := User{
		ChatID:   profile.ChatID,
		JoinedAt: at,
	}

	var updates []string
	username := profile.Username
	if username == "" {
		username = placeholderUsername(profile.ChatID)
	} else {
		updates = append(updates, "username")
	}
	firstName := profile.FirstName
	if firstName == "" {
		firstName = placeholderFirstName(profile.ChatID)
	} else {
		updates = append(updates, "first_name")
	}
	record.Username = &username
	record.FirstName = &firstName

	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "chat_id"}}}
	if len(updates) > 0 {
		onConflict.DoUpdates = clause.AssignmentColumns(updates)
	} else {
		onConflict.DoNothing = true
	}

	return tx.Clauses(onConflict).Create(&record).Error
}

func (r *gormUserRepository) Upsert(ctx context.Context, profile Profile, at time.Time) (*User, error) {
	r.logger.Debug("Upserting user", zap.Int64("chat_id", profile.ChatID))

	if err := UpsertTx(r.db.WithContext(ctx), profile, at); err != nil {
		return nil, common.WrapStorageError(err, "upsert user")
	}
	return r.Get(ctx, profile.ChatID)
}

func (r *gormUserRepository) Get(ctx context.Context, chatID int64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundError{Resource: "User", ID: strconv.FormatInt(chatID, 10)}
		}
		return nil, common.WrapStorageError(err, "get user")
	}
	return &u, nil
}

// FindByFirstName matches case-insensitively. Folding happens in Go because
// SQLite's lower() only handles ASCII and the registry is household-sized.
func (r *gormUserRepository) FindByFirstName(ctx context.Context, name string) (*User, error) {
	key := common.FoldKey(name)
	if key == "" {
		return nil, common.NewValidationError("name", "name is required")
	}

	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].FirstName != nil && common.FoldKey(*users[i].FirstName) == key {
			return &users[i], nil
		}
	}
	return nil, common.NotFoundError{Resource: "User", ID: name}
}

func (r *gormUserRepository) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := r.db.WithContext(ctx).Order("joined_at ASC, chat_id ASC").Find(&users).Error; err != nil {
		return nil, common.WrapStorageError(err, "list users")
	}
	return users, nil
}

func (r *gormUserRepository) DisplayName(ctx context.Context, chatID int64) string {
	u, err := r.Get(ctx, chatID)
	if err != nil {
		if !common.IsNotFound(err) {
			r.logger.Error("Failed to resolve user name", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		return UnknownUserName
	}
	return u.DisplayName()
}

func (r *gormUserRepository) DisplayNames(ctx context.Context, chatIDs []int64) map[int64]string {
	names := make(map[int64]string, len(chatIDs))
	if len(chatIDs) == 0 {
		return names
	}

	var users []User
	if err := r.db.WithContext(ctx).Where("chat_id IN ?", chatIDs).Find(&users).Error; err != nil {
		r.logger.Error("Failed to resolve user names", zap.Int("count", len(chatIDs)), zap.Error(err))
	}
	for _, u := range users {
		names[u.ChatID] = u.DisplayName()
	}
	for _, id := range chatIDs {
		if _, ok := names[id]; !ok {
			names[id] = UnknownUserName
		}
	}
	return names
}

const MigrationModule = "users"

// RunMigrations creates the users table
func RunMigrations(db *gorm.DB) error {
	_, err := database.ApplyMigrations(db, MigrationModule, []database.Migration{
		{
			Version: 1,
			Name:    "create users",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&User{})
			},
		},
	})
	return err
}
