package model

import (
	"fmt"

	"promo-bot/internal/domain"
)

// GroupOutcome is the result of a promotion run for a single group.
type GroupOutcome string

const (
	OutcomeSent    GroupOutcome = "sent"
	OutcomeSkipped GroupOutcome = "skipped"
	OutcomeFailed  GroupOutcome = "failed"
)

// PromotionRequest describes one promotion run. Groups and Messages are
// processed in the given order.
type PromotionRequest struct {
	RunID       string
	RequesterID int64
	GroupIDs    []int64
	Messages    []string
}

func (r PromotionRequest) Validate() error {
	if r.RequesterID <= 0 {
		return fmt.Errorf("requester: %w", domain.ErrInvalidArgument)
	}
	if len(r.GroupIDs) == 0 {
		return fmt.Errorf("groups: %w", domain.ErrInvalidArgument)
	}
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages: %w", domain.ErrInvalidArgument)
	}
	return nil
}

// PromotionResult is the tally reported to the requester once the run finishes.
// Succeeded + Failed always equals Total.
type PromotionResult struct {
	RunID     string
	Succeeded int
	Failed    int
	Total     int
	Outcomes  map[int64]GroupOutcome
}

func NewPromotionResult(runID string, total int) *PromotionResult {
	return &PromotionResult{
		RunID:    runID,
		Total:    total,
		Outcomes: make(map[int64]GroupOutcome, total),
	}
}

// Record stores the outcome for a group and updates the counters.
func (r *PromotionResult) Record(groupID int64, o GroupOutcome) {
	r.Outcomes[groupID] = o
	if o == OutcomeSent {
		r.Succeeded++
		return
	}
	r.Failed++
}
