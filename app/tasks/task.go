package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeBuildFeed TaskType = "build_feed"
)

type Task struct {
	ID        string
	Type      TaskType
	StartedAt *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:   uniqueID,
		Type: taskType,
	}
}

// Run executes task once. Failures are returned to the caller; nothing is retried.
func Run(ctx context.Context, task TaskInterface) error {
	task.Start()
	slog.Debug("Task started", "type", string(task.GetType()), "id", task.GetID())

	if err := task.Execute(ctx); err != nil {
		slog.Debug("Task failed", "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration(), "error", err)
		return err
	}

	return nil
}
