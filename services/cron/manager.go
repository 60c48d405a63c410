package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled housekeeping task. Run reports a short summary and
// optional metadata for the job log.
type Job struct {
	Name    string
	Spec    string // six-field cron expression, seconds first
	Timeout time.Duration
	Run     func(ctx context.Context) (string, map[string]any, error)
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron   *cron.Cron
	log    JobLog
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]Job
}

// NewCronManager creates a new cron manager
func NewCronManager(log JobLog, logger *zap.Logger, jobs ...Job) *CronManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &CronManager{
		cron:   cron.New(cron.WithSeconds()),
		log:    log,
		logger: logger,
		jobs:   make(map[string]Job, len(jobs)),
	}
	for _, j := range jobs {
		m.jobs[j.Name] = j
	}
	return m
}

// Start registers every job and starts the scheduler
func (m *CronManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, job := range m.jobs {
		if _, err := m.cron.AddFunc(job.Spec, func() { m.run(context.Background(), job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
		m.logger.Info("cron job registered", zap.String("job", job.Name), zap.String("spec", job.Spec))
	}

	m.cron.Start()
	m.logger.Info("cron jobs started", zap.Int("jobs", len(m.jobs)))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("cron jobs stopped")
}

// RunNow runs the named job synchronously.
func (m *CronManager) RunNow(ctx context.Context, name string) error {
	m.mu.Lock()
	job, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown cron job %q", name)
	}
	return m.run(ctx, job)
}

func (m *CronManager) run(ctx context.Context, job Job) error {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	id := m.logJobStart(ctx, job.Name)
	started := time.Now()

	msg, meta, err := job.Run(ctx)
	if err != nil {
		m.logJobError(ctx, id, job.Name, started, err)
		return err
	}
	m.logJobComplete(ctx, id, job.Name, started, msg, meta)
	return nil
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(ctx context.Context, jobName string) uint {
	m.logger.Info("cron job starting", zap.String("job", jobName))
	id, err := m.log.Start(ctx, jobName)
	if err != nil {
		m.logger.Warn("cron job log unavailable", zap.String("job", jobName), zap.Error(err))
	}
	return id
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(ctx context.Context, id uint, jobName string, started time.Time, message string, meta map[string]any) {
	m.logger.Info("cron job completed",
		zap.String("job", jobName),
		zap.String("message", message),
		zap.Duration("took", time.Since(started)),
	)
	if id == 0 {
		return
	}
	if err := m.log.Finish(ctx, id, Outcome{Message: message, Metadata: meta}); err != nil {
		m.logger.Warn("cron job log update failed", zap.String("job", jobName), zap.Error(err))
	}
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(ctx context.Context, id uint, jobName string, started time.Time, jobErr error) {
	m.logger.Error("cron job failed",
		zap.String("job", jobName),
		zap.Duration("took", time.Since(started)),
		zap.Error(jobErr),
	)
	if id == 0 {
		return
	}
	// The job context may be what failed; the log update gets its own.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := m.log.Finish(logCtx, id, Outcome{Err: jobErr}); err != nil {
		m.logger.Warn("cron job log update failed", zap.String("job", jobName), zap.Error(err))
	}
}
