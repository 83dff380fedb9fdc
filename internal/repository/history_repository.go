package repository

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledger-service/internal/model"
)

type BudgetHistoryRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewBudgetHistoryRepository(db *gorm.DB, log *logrus.Logger) *BudgetHistoryRepository {
	return &BudgetHistoryRepository{
		db:  db,
		log: log,
	}
}

func (r *BudgetHistoryRepository) Create(ctx context.Context, entry *model.BudgetHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Recent returns the latest limit changes for a category, newest first.
func (r *BudgetHistoryRepository) Recent(ctx context.Context, userID, category string, limit int) ([]model.BudgetHistory, error) {
	if limit <= 0 {
		limit = 6
	}

	var entries []model.BudgetHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("change_date DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
