package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/uploadauth/internal/config"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), config.Tasks{Workers: 1}, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	client, err := NewClient(dbPath, config.Tasks{}, nil)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, 1, client.config.Workers)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, "./data-tasks.db", tasksDBPath("./data.db"))
	assert.Equal(t, "/var/lib/app/auth-tasks.sqlite", tasksDBPath("/var/lib/app/auth.sqlite"))
	assert.Equal(t, "noext-tasks", tasksDBPath("noext"))
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestStopWithoutStart(t *testing.T) {
	client := newTestClient(t)
	assert.True(t, client.Stop(context.Background()))
}

type recordingPruner struct {
	mu    sync.Mutex
	calls []int
	err   error
	done  chan struct{}
}

func (p *recordingPruner) Prune(_ context.Context, retentionDays int) (int64, error) {
	p.mu.Lock()
	p.calls = append(p.calls, retentionDays)
	p.mu.Unlock()
	if p.done != nil {
		close(p.done)
	}
	return 3, p.err
}

func TestCleanupLoginEventsTaskConfig(t *testing.T) {
	cfg := CleanupLoginEventsTask{RetentionDays: 30}.Config()

	assert.Equal(t, "cleanup_login_events", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestCleanupLoginEventsProcessor(t *testing.T) {
	ctx := context.Background()
	reg := metrics.NewRegistry()

	pruner := &recordingPruner{}
	process := CleanupLoginEventsProcessor(pruner, reg, logging.Nop())

	require.NoError(t, process(ctx, CleanupLoginEventsTask{RetentionDays: 0}))
	assert.Empty(t, pruner.calls, "zero retention keeps everything")

	require.NoError(t, process(ctx, CleanupLoginEventsTask{RetentionDays: 90}))
	assert.Equal(t, []int{90}, pruner.calls)

	failing := &recordingPruner{err: errors.New("locked")}
	err := CleanupLoginEventsProcessor(failing, nil, nil)(ctx, CleanupLoginEventsTask{RetentionDays: 1})
	assert.Error(t, err)

	err = CleanupLoginEventsProcessor(nil, nil, nil)(ctx, CleanupLoginEventsTask{RetentionDays: 1})
	assert.Error(t, err)
}

func TestCleanupLoginEventsQueue_RunsEnqueuedTask(t *testing.T) {
	client := newTestClient(t)

	pruner := &recordingPruner{done: make(chan struct{})}
	client.Register(NewCleanupLoginEventsQueue(pruner, nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(CleanupLoginEventsTask{RetentionDays: 7}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case <-pruner.done:
		pruner.mu.Lock()
		assert.Equal(t, []int{7}, pruner.calls)
		pruner.mu.Unlock()
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestQueueLogger(t *testing.T) {
	var buf safeBuffer
	l := &queueLogger{log: logging.New("info", "text", &buf)}

	l.Info("task processed", "queue", "cleanup_login_events")
	l.Error("task failed", "error", "boom")

	out := buf.String()
	assert.Contains(t, out, "task processed")
	assert.Contains(t, out, "queue=cleanup_login_events")
	assert.Contains(t, out, "level=ERROR")
}

var _ backlite.Logger = (*queueLogger)(nil)
