package repository

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-service/internal/model"
)

type AlertEventRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewAlertEventRepository(db *gorm.DB, log *logrus.Logger) *AlertEventRepository {
	return &AlertEventRepository{
		db:  db,
		log: log,
	}
}

// InsertIfAbsent records an alert event unless one already exists for the
// same (budget, tier, day). The conditional insert happens in the database,
// so concurrent evaluations cannot both claim the same tier.
func (r *AlertEventRepository) InsertIfAbsent(ctx context.Context, event *model.AlertEvent) (bool, error) {
	event.TriggeredOn = model.DateOnly(event.TriggeredOn)

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "budget_id"},
				{Name: "threshold_level"},
				{Name: "triggered_on"},
			},
			DoNothing: true,
		}).
		Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AlertFilter narrows the alert history listing. Zero values mean "any".
type AlertFilter struct {
	Category string
	Severity model.Severity
	From     *time.Time
	To       *time.Time
	Limit    int
}

// List returns a user's alert events, newest first.
func (r *AlertEventRepository) List(ctx context.Context, userID string, filter AlertFilter) ([]model.AlertEvent, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.From != nil {
		query = query.Where("triggered_on >= ?", model.DateOnly(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("triggered_on <= ?", model.DateOnly(*filter.To))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var events []model.AlertEvent
	err := query.Order("triggered_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// Acknowledge marks an alert event as seen by its owner.
func (r *AlertEventRepository) Acknowledge(ctx context.Context, id uint, userID string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.AlertEvent{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
