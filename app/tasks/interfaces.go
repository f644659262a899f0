package tasks

import (
	"context"
	"time"
)

// TaskInterface is a single unit of work executed by Run.
type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	Start()
	GetDuration() time.Duration
}
