package tasks

import (
	"path/filepath"
	"time"

	"github.com/mrlokans/uploadauth/internal/config"
)

const (
	defaultWorkers         = 1
	defaultReleaseAfter    = 15 * time.Minute
	defaultCleanupInterval = time.Hour
)

// withDefaults fills unset queue settings.
func withDefaults(cfg config.Tasks) config.Tasks {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.ReleaseAfter <= 0 {
		cfg.ReleaseAfter = defaultReleaseAfter
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}
	return cfg
}

// tasksDBPath places the queue database next to the main one with a
// "-tasks" suffix: ./data.db becomes ./data-tasks.db.
func tasksDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return mainDBPath[:len(mainDBPath)-len(ext)] + "-tasks" + ext
}
