package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-service/internal/model"
)

type AllowanceRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewAllowanceRepository(db *gorm.DB, log *logrus.Logger) *AllowanceRepository {
	return &AllowanceRepository{
		db:  db,
		log: log,
	}
}

// Upsert saves or replaces the user's monthly allowance setting.
func (r *AllowanceRepository) Upsert(ctx context.Context, setting *model.AllowanceSetting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"monthly_allowance", "updated_at"}),
		}).
		Create(setting).Error
}

// Get returns the user's allowance setting, or nil when none is stored.
// Absence is a documented default case, not an error.
func (r *AllowanceRepository) Get(ctx context.Context, userID string) (*model.AllowanceSetting, error) {
	var setting model.AllowanceSetting
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
