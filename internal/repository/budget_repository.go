package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledger-service/internal/model"
)

type BudgetRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewBudgetRepository(db *gorm.DB, log *logrus.Logger) *BudgetRepository {
	return &BudgetRepository{
		db:  db,
		log: log,
	}
}

func (r *BudgetRepository) Create(ctx context.Context, budget *model.BudgetConfig) error {
	return r.db.WithContext(ctx).Create(budget).Error
}

// Save persists a full-record update of an existing budget.
func (r *BudgetRepository) Save(ctx context.Context, budget *model.BudgetConfig) error {
	return r.db.WithContext(ctx).Save(budget).Error
}

func (r *BudgetRepository) GetByID(ctx context.Context, id uint) (*model.BudgetConfig, error) {
	var budget model.BudgetConfig
	err := r.db.WithContext(ctx).First(&budget, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, id uint, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.BudgetConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ActiveByCategory returns the single active budget for a category.
func (r *BudgetRepository) ActiveByCategory(ctx context.Context, userID, category string) (*model.BudgetConfig, error) {
	var budget model.BudgetConfig
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND active = ?", userID, category, true).
		First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// ListActive returns every active budget for a user, snoozed or not.
func (r *BudgetRepository) ListActive(ctx context.Context, userID string) ([]model.BudgetConfig, error) {
	var budgets []model.BudgetConfig
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("category").
		Find(&budgets).Error
	return budgets, err
}

// ListEvaluable returns active budgets whose snooze window has elapsed.
// Snoozed budgets are filtered here so they never reach the monitor.
func (r *BudgetRepository) ListEvaluable(ctx context.Context, userID string, now time.Time) ([]model.BudgetConfig, error) {
	var budgets []model.BudgetConfig
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Where("snoozed_until IS NULL OR snoozed_until <= ?", now).
		Order("category").
		Find(&budgets).Error
	return budgets, err
}

// HasActive reports whether an active budget exists for the category.
// excludeID leaves one budget out of the check, for edits.
func (r *BudgetRepository) HasActive(ctx context.Context, userID, category string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&model.BudgetConfig{}).
		Where("user_id = ? AND category = ? AND active = ?", userID, category, true)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// Snooze suppresses a budget's alerts until the given time.
func (r *BudgetRepository) Snooze(ctx context.Context, id uint, userID string, until time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.BudgetConfig{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("snoozed_until", until)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Deactivate turns a budget off without deleting its alert history.
func (r *BudgetRepository) Deactivate(ctx context.Context, id uint, userID string) error {
	res := r.db.WithContext(ctx).
		Model(&model.BudgetConfig{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
