package repository

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-service/internal/model"
)

type CategoryRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewCategoryRepository(db *gorm.DB, log *logrus.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:  db,
		log: log,
	}
}

// EnsureDefaults creates any of the given category names the user does not
// have yet. Existing names are left untouched.
func (r *CategoryRepository) EnsureDefaults(ctx context.Context, userID string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	categories := make([]model.Category, 0, len(names))
	for _, name := range names {
		categories = append(categories, model.Category{UserID: userID, Name: name})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(&categories).Error
}

// ListNames returns the user's category names in alphabetical order.
func (r *CategoryRepository) ListNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("user_id = ?", userID).
		Order("name").
		Pluck("name", &names).Error
	return names, err
}
