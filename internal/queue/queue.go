package queue

import (
	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/service"
)

type Queue struct {
	ps service.PostingService
}

func NewQueue(ps service.PostingService) *Queue {
	return &Queue{ps: ps}
}

const TaskTypePostSlot = "post:slot"

type PostSlotPayload struct {
	Slot models.Slot `json:"slot"`
}
