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

type ExpenseRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewExpenseRepository(db *gorm.DB, log *logrus.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:  db,
		log: log,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	expense.Date = model.DateOnly(expense.Date)
	return r.db.WithContext(ctx).Create(expense).Error
}

// Save persists a full-record update of an existing expense.
func (r *ExpenseRepository) Save(ctx context.Context, expense *model.Expense) error {
	expense.Date = model.DateOnly(expense.Date)
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uint) (*model.Expense, error) {
	var expense model.Expense
	err := r.db.WithContext(ctx).First(&expense, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id uint, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// TotalOnDay sums a user's expenses for one calendar day.
func (r *ExpenseRepository) TotalOnDay(ctx context.Context, userID string, day time.Time) (decimal.Decimal, error) {
	return sumAmount(r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Where("user_id = ? AND date = ?", userID, model.DateOnly(day)))
}

// TotalInRange sums a user's expenses for one category across a day range,
// bounds inclusive.
func (r *ExpenseRepository) TotalInRange(ctx context.Context, userID, category string, from, to time.Time) (decimal.Decimal, error) {
	return sumAmount(r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Where("user_id = ? AND category = ? AND date >= ? AND date <= ?",
			userID, category, model.DateOnly(from), model.DateOnly(to)))
}

// TotalsByCategory sums a user's expenses per category across a day range.
func (r *ExpenseRepository) TotalsByCategory(ctx context.Context, userID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	var rows []struct {
		Category string
		Total    decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ? AND date >= ? AND date <= ?",
			userID, model.DateOnly(from), model.DateOnly(to)).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Category] = row.Total
	}
	return totals, nil
}

// DailyTotals returns per-day expense sums for a category, oldest first.
func (r *ExpenseRepository) DailyTotals(ctx context.Context, userID, category string, from, to time.Time) ([]model.DailyTotal, error) {
	var rows []model.DailyTotal
	err := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Select("date, SUM(amount) AS total").
		Where("user_id = ? AND category = ? AND date >= ? AND date <= ?",
			userID, category, model.DateOnly(from), model.DateOnly(to)).
		Group("date").
		Order("date").
		Scan(&rows).Error
	return rows, err
}

// sumAmount runs a SUM(amount) aggregate, treating an empty result as zero.
func sumAmount(query *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := query.Select("SUM(amount)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
