package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/assistant"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IntentCount is how many chat turns a user spent on one intent.
type IntentCount struct {
	Intent string `json:"intent"`
	Count  int64  `json:"count"`
}

// Recorder writes user activity rows. Chat turns keep the intent and the
// wait only; message text is never stored.
type Recorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRecorder creates a recorder on db.
func NewRecorder(db *gorm.DB, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{db: db, logger: logger}
}

// Record stores one activity with optional metadata.
func (r *Recorder) Record(ctx context.Context, userID uint, kind model.ActivityType, ip string, meta map[string]any) error {
	entry := model.UserActivity{
		UserID:       userID,
		ActivityType: kind,
		IPAddress:    ip,
	}
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode activity metadata: %w", err)
		}
		entry.Metadata = datatypes.JSON(raw)
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record %s: %w", kind, err)
	}
	return nil
}

// RecordTurn stores one resolved chat turn.
func (r *Recorder) RecordTurn(ctx context.Context, userID uint, intent assistant.Intent, wait time.Duration, ip string) error {
	entry := model.UserActivity{
		UserID:       userID,
		ActivityType: model.ActivityTypeChatTurn,
		Intent:       string(intent),
		IPAddress:    ip,
		Duration:     wait.Milliseconds(),
	}
	raw, err := json.Marshal(map[string]any{"intent": intent, "wait_ms": wait.Milliseconds()})
	if err != nil {
		return err
	}
	entry.Metadata = datatypes.JSON(raw)

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record chat turn: %w", err)
	}
	r.logger.Debug("chat turn recorded", zap.Uint("user_id", userID), zap.String("intent", string(intent)))
	return nil
}

// IntentCounts aggregates the user's chat turns per intent, most used first.
func (r *Recorder) IntentCounts(ctx context.Context, userID uint) ([]IntentCount, error) {
	var counts []IntentCount
	err := r.db.WithContext(ctx).
		Model(&model.UserActivity{}).
		Select("intent, COUNT(*) AS count").
		Where("user_id = ? AND activity_type = ?", userID, model.ActivityTypeChatTurn).
		Group("intent").
		Order("count DESC, intent ASC").
		Scan(&counts).
		Error
	if err != nil {
		return nil, fmt.Errorf("count intents: %w", err)
	}
	return counts, nil
}
