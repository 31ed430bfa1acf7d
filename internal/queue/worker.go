package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/trendqueue/internal/service"
)

func (j *Queue) HandlePostSlotTask(ctx context.Context, task *asynq.Task) error {
	var payload PostSlotPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	summary, err := j.ps.PostApproved(ctx, payload.Slot)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSlot) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		slog.Error("posting task failed", "slot", payload.Slot, "error", err)
		return err
	}

	slog.Info("posting task done", "slot", summary.Slot, "posted", summary.Posted, "failed", summary.Failed)
	return nil
}

// Register binds the queue's task handlers to mux.
func (j *Queue) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypePostSlot, j.HandlePostSlotTask)
}
