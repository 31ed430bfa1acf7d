package queue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/service"
)

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

const (
	postSlotMaxRetry = 3
	// a slot pass runs twice a day, so one unique window per pass is plenty
	postSlotUniqueTTL = 30 * time.Minute
)

func NewPostSlotTask(slot models.Slot) (*asynq.Task, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("%q: %w", slot, service.ErrInvalidSlot)
	}

	taskPayload, err := json.Marshal(PostSlotPayload{Slot: slot})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypePostSlot, taskPayload), nil
}

func EnqueuePostSlot(asynqClient Enqueuer, slot models.Slot) error {
	task, err := NewPostSlotTask(slot)
	if err != nil {
		return err
	}

	info, err := asynqClient.Enqueue(task,
		asynq.MaxRetry(postSlotMaxRetry),
		asynq.Unique(postSlotUniqueTTL),
	)
	if err != nil {
		return err
	}

	slog.Info("posting task enqueued", "slot", slot, "task_id", info.ID, "queue", info.Queue)
	return nil
}
