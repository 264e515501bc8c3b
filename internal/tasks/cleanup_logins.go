package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
)

// LoginHistoryPruner deletes login events older than a retention period.
type LoginHistoryPruner interface {
	Prune(ctx context.Context, retentionDays int) (int64, error)
}

// CleanupLoginEventsTask removes login events older than RetentionDays.
type CleanupLoginEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupLoginEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_login_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupLoginEventsProcessor runs CleanupLoginEventsTask against pruner.
func CleanupLoginEventsProcessor(pruner LoginHistoryPruner, m *metrics.Registry, log logging.Logger) backlite.QueueProcessor[CleanupLoginEventsTask] {
	if log == nil {
		log = logging.Nop()
	}
	return func(ctx context.Context, task CleanupLoginEventsTask) error {
		if pruner == nil {
			return errors.New("login history pruner not configured")
		}
		if task.RetentionDays <= 0 {
			return nil
		}

		deleted, err := pruner.Prune(ctx, task.RetentionDays)
		if err != nil {
			return err
		}

		m.LoginEventsCleanedUp(deleted)
		log.Info(ctx, "cleaned up login events", "deleted", deleted, "retention_days", task.RetentionDays)
		return nil
	}
}

func NewCleanupLoginEventsQueue(pruner LoginHistoryPruner, m *metrics.Registry, log logging.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupLoginEventsProcessor(pruner, m, log))
}

// TriggerLoginCleanup enqueues a CleanupLoginEventsTask.
func (c *Client) TriggerLoginCleanup(ctx context.Context, retentionDays int) error {
	_, err := c.Add(CleanupLoginEventsTask{RetentionDays: retentionDays}).Ctx(ctx).Save()
	return err
}
