package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/queue"
	"github.com/maheshrc27/trendqueue/internal/service"
)

// postingTimeout bounds an in-process pass; uploads can be slow.
const postingTimeout = 30 * time.Minute

// PostingJob fires the posting pass for a slot. With an asynq client the pass
// is handed to the worker, otherwise it runs in the cron goroutine.
type PostingJob struct {
	ps     service.PostingService
	client queue.Enqueuer
}

func NewPostingJob(ps service.PostingService, client queue.Enqueuer) *PostingJob {
	return &PostingJob{ps: ps, client: client}
}

func (j *PostingJob) Post3AM() {
	j.Run(models.Slot3AM)
}

func (j *PostingJob) Post3PM() {
	j.Run(models.Slot3PM)
}

func (j *PostingJob) Run(slot models.Slot) {
	slog.Info("running scheduled posting", "slot", slot)

	if j.client != nil {
		err := queue.EnqueuePostSlot(j.client, slot)
		if err == nil {
			return
		}
		slog.Error("error enqueueing posting task, posting in process", "slot", slot, "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), postingTimeout)
	defer cancel()

	if _, err := j.ps.PostApproved(ctx, slot); err != nil {
		slog.Error("scheduled posting failed", "slot", slot, "error", err)
	}
}
