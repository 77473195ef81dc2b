package usecase

import (
	"context"

	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

var _ SelectionUseCase = (*selectionUC)(nil)

// SelectionUseCase keeps each user's set of promotion targets. Every change
// rewrites the whole set; concurrent edits by the same user resolve to the last write.
type SelectionUseCase interface {
	// Toggle reports whether groupID is selected after the call.
	Toggle(ctx context.Context, userID, groupID int64) (bool, error)
	Clear(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (*model.Selection, error)
}

type selectionUC struct {
	selections repository.SelectionRepository
	log        *zerolog.Logger
}

func NewSelectionUseCase(selections repository.SelectionRepository, logger *zerolog.Logger) *selectionUC {
	l := logger.With().Str("component", "SelectionUC").Logger()
	return &selectionUC{selections: selections, log: &l}
}

func (s *selectionUC) Toggle(ctx context.Context, userID, groupID int64) (bool, error) {
	sel, err := s.selections.Get(ctx, repository.NoTX, userID)
	if err != nil {
		return false, err
	}
	selected := sel.Toggle(groupID)
	if err := s.selections.Save(ctx, repository.NoTX, sel); err != nil {
		return false, err
	}
	s.log.Debug().Int64("tg_id", userID).Int64("group", groupID).Bool("selected", selected).Msg("selection toggled")
	return selected, nil
}

func (s *selectionUC) Clear(ctx context.Context, userID int64) error {
	return s.selections.Save(ctx, repository.NoTX, model.NewSelection(userID))
}

func (s *selectionUC) Get(ctx context.Context, userID int64) (*model.Selection, error) {
	return s.selections.Get(ctx, repository.NoTX, userID)
}
