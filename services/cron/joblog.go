package cron

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sahilchouksey/smart-campus-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Outcome is how a job run ended.
type Outcome struct {
	Message  string
	Metadata map[string]any
	Err      error
}

// JobLog records job runs.
type JobLog interface {
	Start(ctx context.Context, jobName string) (uint, error)
	Finish(ctx context.Context, id uint, outcome Outcome) error
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// GORMJobLog stores runs in the cron_job_logs table.
type GORMJobLog struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGORMJobLog creates a job log on db.
func NewGORMJobLog(db *gorm.DB) *GORMJobLog {
	return &GORMJobLog{db: db, now: time.Now}
}

func (l *GORMJobLog) Start(ctx context.Context, jobName string) (uint, error) {
	entry := model.CronJobLog{
		JobName:   jobName,
		Status:    model.CronJobRunning,
		StartedAt: l.now(),
		Metadata:  datatypes.JSON("{}"),
	}
	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return 0, err
	}
	return entry.ID, nil
}

func (l *GORMJobLog) Finish(ctx context.Context, id uint, outcome Outcome) error {
	var entry model.CronJobLog
	if err := l.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return err
	}

	done := l.now()
	updates := map[string]interface{}{
		"completed_at": done,
		"duration":     done.Sub(entry.StartedAt).Milliseconds(),
	}
	if outcome.Err != nil {
		updates["status"] = model.CronJobFailed
		updates["error_msg"] = outcome.Err.Error()
	} else {
		updates["status"] = model.CronJobCompleted
		updates["message"] = outcome.Message
	}
	if len(outcome.Metadata) > 0 {
		raw, err := json.Marshal(outcome.Metadata)
		if err != nil {
			return err
		}
		updates["metadata"] = datatypes.JSON(raw)
	}

	return l.db.WithContext(ctx).Model(&entry).Updates(updates).Error
}

// Prune hard-deletes runs that started before the cutoff.
func (l *GORMJobLog) Prune(ctx context.Context, before time.Time) (int64, error) {
	res := l.db.WithContext(ctx).
		Unscoped().
		Where("started_at < ?", before).
		Delete(&model.CronJobLog{})
	return res.RowsAffected, res.Error
}
