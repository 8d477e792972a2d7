package shopping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"chorebot-api/internal/common"
	"chorebot-api/internal/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxTextLength     = 255
	maxCategoryLength = 64
)

type gormShoppingRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormShoppingRepository creates a new GORM-based shopping list repository
func NewGormShoppingRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormShoppingRepository{
		db:     db,
		logger: logger,
	}
}

// NormalizeCategory trims and lower-cases a category, defaulting empty input
func NormalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return DefaultCategory
	}
	return category
}

func itemNotFound(id uint) error {
	return common.NotFoundError{Resource: "Shopping item", ID: fmt.Sprint(id)}
}

func (r *gormShoppingRepository) Add(ctx context.Context, text, category string, at time.Time) (*Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.NewValidationError("item_text", "item_text is required")
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return nil, common.NewValidationError("item_text", fmt.Sprintf("item_text must be at most %d characters", maxTextLength))
	}
	category = NormalizeCategory(category)
	if category == CategoryAll {
		return nil, common.NewValidationError("category", "category 'all' is reserved")
	}
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return nil, common.NewValidationError("category", fmt.Sprintf("category must be at most %d characters", maxCategoryLength))
	}

	item := &Item{
		ItemText:  text,
		ItemKey:   common.FoldKey(text),
		Category:  category,
		CreatedAt: at.UTC().Truncate(time.Microsecond),
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Debug("Unchecked item already on the list", zap.String("item_text", text))
			return nil, common.ConflictError{Resource: "Shopping item", Field: "item_text", Value: text}
		}
		return nil, common.WrapStorageError(err, "add shopping item")
	}

	r.logger.Info("Shopping item added", zap.Uint("item_id", item.ID), zap.String("category", category))
	return item, nil
}

// List orders unchecked items first, newest first within each group
func (r *gormShoppingRepository) List(ctx context.Context, filter Filter) ([]Item, error) {
	query := r.db.WithContext(ctx).Model(&Item{})
	if !filter.ShowChecked {
		query = query.Where("is_checked = ?", false)
	}
	if category := NormalizeCategoryFilter(filter.Category); category != CategoryAll {
		query = query.Where("category = ?", category)
	}

	var items []Item
	if err := query.Order("is_checked ASC, created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, common.WrapStorageError(err, "list shopping items")
	}
	return items, nil
}

// NormalizeCategoryFilter maps an empty filter to CategoryAll
func NormalizeCategoryFilter(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return CategoryAll
	}
	return category
}

func (r *gormShoppingRepository) GetByID(ctx context.Context, id uint) (*Item, error) {
	var item Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, itemNotFound(id)
		}
		return nil, common.WrapStorageError(err, "get shopping item")
	}
	return &item, nil
}

// Toggle flips is_checked. Unchecking fails with a ConflictError when the same
// text is already unchecked elsewhere on the list.
func (r *gormShoppingRepository) Toggle(ctx context.Context, id uint) (*Item, error) {
	var item Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		item.IsChecked = !item.IsChecked
		return tx.Model(&Item{}).Where("id = ?", id).Update("is_checked", item.IsChecked).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, itemNotFound(id)
		case database.IsUniqueViolation(err):
			return nil, common.ConflictError{Resource: "Shopping item", Field: "item_text", Value: item.ItemText}
		default:
			return nil, common.WrapStorageError(err, "toggle shopping item")
		}
	}

	r.logger.Debug("Shopping item toggled", zap.Uint("item_id", id), zap.Bool("is_checked", item.IsChecked))
	return &item, nil
}

func (r *gormShoppingRepository) ClearChecked(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("is_checked = ?", true).Delete(&Item{})
	if res.Error != nil {
		return 0, common.WrapStorageError(res.Error, "clear checked shopping items")
	}
	r.logger.Info("Cleared checked shopping items", zap.Int64("count", res.RowsAffected))
	return res.RowsAffected, nil
}

func (r *gormShoppingRepository) ClearAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&Item{})
	if res.Error != nil {
		return 0, common.WrapStorageError(res.Error, "clear shopping list")
	}
	r.logger.Info("Cleared shopping list", zap.Int64("count", res.RowsAffected))
	return res.RowsAffected, nil
}

func (r *gormShoppingRepository) Count(ctx context.Context) (Counts, error) {
	var counts Counts
	db := r.db.WithContext(ctx)
	if err := db.Model(&Item{}).Count(&counts.Total).Error; err != nil {
		return Counts{}, common.WrapStorageError(err, "count shopping items")
	}
	if err := db.Model(&Item{}).Where("is_checked = ?", true).Count(&counts.Checked).Error; err != nil {
		return Counts{}, common.WrapStorageError(err, "count shopping items")
	}
	counts.Unchecked = counts.Total - counts.Checked
	return counts, nil
}
