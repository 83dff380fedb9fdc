package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledger-service/internal/model"
)

// Recorder logs ledger mutations for audit. Implementations must never make
// a failed audit write fatal to the mutation itself; callers log and move on.
type Recorder interface {
	Record(ctx context.Context, userID, action, resourceType, resourceID string, metadata map[string]interface{}) error
}

// GormRecorder persists audit entries in the ledger database.
type GormRecorder struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewGormRecorder(db *gorm.DB, log *logrus.Logger) *GormRecorder {
	return &GormRecorder{
		db:  db,
		log: log,
	}
}

func (r *GormRecorder) Record(ctx context.Context, userID, action, resourceType, resourceID string, metadata map[string]interface{}) error {
	payload := "{}"
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		payload = string(raw)
	}

	entry := model.AuditEntry{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     payload,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}
