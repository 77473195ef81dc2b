package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"promo-bot/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

const defaultStateTTL = 15 * time.Minute

// StateRepo keeps one JSON-encoded conversation step per user. Entries expire
// after ttl so an abandoned dialog does not capture the next message.
type StateRepo struct {
	store Store
	ttl   time.Duration
}

func NewStateRepo(store Store, ttl time.Duration) *StateRepo {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &StateRepo{store: store, ttl: ttl}
}

func stateKey(tgID int64) string { return "conv_state:" + strconv.FormatInt(tgID, 10) }

func (s *StateRepo) SetState(ctx context.Context, tgID int64, state *repository.ConversationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return s.store.Put(ctx, stateKey(tgID), raw, s.ttl)
}

// GetState returns nil without error when the user has no pending step.
func (s *StateRepo) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	raw, found, err := s.store.Get(ctx, stateKey(tgID))
	if err != nil || !found {
		return nil, err
	}
	st := new(repository.ConversationState)
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}

func (s *StateRepo) ClearState(ctx context.Context, tgID int64) error {
	return s.store.Delete(ctx, stateKey(tgID))
}
