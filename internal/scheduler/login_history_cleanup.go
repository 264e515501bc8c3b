// Package scheduler triggers periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/uploadauth/internal/config"
	"github.com/mrlokans/uploadauth/internal/logging"
)

// CleanupTrigger starts one login history cleanup run.
type CleanupTrigger interface {
	TriggerLoginCleanup(ctx context.Context, retentionDays int) error
}

// CleanupFunc adapts a plain function to CleanupTrigger.
type CleanupFunc func(ctx context.Context, retentionDays int) error

func (f CleanupFunc) TriggerLoginCleanup(ctx context.Context, retentionDays int) error {
	return f(ctx, retentionDays)
}

// LoginHistoryCleanupScheduler periodically prunes the login history.
type LoginHistoryCleanupScheduler struct {
	cfg     config.LoginHistory
	trigger CleanupTrigger
	log     logging.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewLoginHistoryCleanupScheduler(cfg config.LoginHistory, trigger CleanupTrigger, log logging.Logger) *LoginHistoryCleanupScheduler {
	if log == nil {
		log = logging.Nop()
	}
	return &LoginHistoryCleanupScheduler{
		cfg:     cfg,
		trigger: trigger,
		log:     log.With("component", "login_history_cleanup"),
		cron:    cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the cleanup job. It is a no-op when retention is disabled
// or the scheduler is already running. Cancelling ctx stops the scheduler.
func (s *LoginHistoryCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.cfg.RetentionDays <= 0 {
		s.log.Info(ctx, "login history cleanup disabled")
		return nil
	}

	if err := ValidateSchedule(s.cfg.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.CleanupSchedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.cfg.CleanupSchedule, func() {
		s.RunNow(cancelCtx)
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.cfg.CleanupSchedule, time.Now())
	s.log.Info(ctx, "login history cleanup scheduled",
		"schedule", s.cfg.CleanupSchedule,
		"retention_days", s.cfg.RetentionDays,
		"next_run", next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish, then stops the scheduler.
func (s *LoginHistoryCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	s.log.Info(context.Background(), "login history cleanup stopped")
}

// RunNow triggers a cleanup immediately and logs the outcome.
func (s *LoginHistoryCleanupScheduler) RunNow(ctx context.Context) {
	if err := s.trigger.TriggerLoginCleanup(ctx, s.cfg.RetentionDays); err != nil {
		s.log.Error(ctx, "login history cleanup failed", "error", err)
	}
}

func (s *LoginHistoryCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the job fires next, or nil when not running.
func (s *LoginHistoryCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}
