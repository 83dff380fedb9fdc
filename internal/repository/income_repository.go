package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledger-service/internal/model"
)

type IncomeRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewIncomeRepository(db *gorm.DB, log *logrus.Logger) *IncomeRepository {
	return &IncomeRepository{
		db:  db,
		log: log,
	}
}

func (r *IncomeRepository) Create(ctx context.Context, income *model.Income) error {
	income.Date = model.DateOnly(income.Date)
	return r.db.WithContext(ctx).Create(income).Error
}

func (r *IncomeRepository) GetByID(ctx context.Context, id uint) (*model.Income, error) {
	var income model.Income
	err := r.db.WithContext(ctx).First(&income, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &income, nil
}

func (r *IncomeRepository) Delete(ctx context.Context, id uint, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Income{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// TotalOnDay sums a user's income for one calendar day.
func (r *IncomeRepository) TotalOnDay(ctx context.Context, userID string, day time.Time) (decimal.Decimal, error) {
	return sumAmount(r.db.WithContext(ctx).
		Model(&model.Income{}).
		Where("user_id = ? AND date = ?", userID, model.DateOnly(day)))
}
