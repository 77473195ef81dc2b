package usecase

import (
	"context"
	"fmt"
	"strings"

	"promo-bot/internal/domain/model"
	"promo-bot/internal/domain/ports/repository"
	"promo-bot/internal/infra/logging"
	"promo-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Material sources, used as a metrics label.
const (
	MaterialSourceExplicit = "explicit"
	MaterialSourceAuto     = "auto"
)

var _ MaterialUseCase = (*materialUC)(nil)

type MaterialUseCase interface {
	// Save stores text and returns the user's material count afterwards.
	Save(ctx context.Context, userID int64, text, source string) (int, error)
	List(ctx context.Context, userID int64) ([]*model.Material, error)
	Get(ctx context.Context, userID, id int64) (*model.Material, error)
	Delete(ctx context.Context, userID, id int64) (int64, error)
	Clear(ctx context.Context, userID int64) (int64, error)
}

type materialUC struct {
	materials repository.MaterialRepository
	log       *zerolog.Logger
}

func NewMaterialUseCase(materials repository.MaterialRepository, logger *zerolog.Logger) *materialUC {
	l := logger.With().Str("component", "MaterialUC").Logger()
	return &materialUC{materials: materials, log: &l}
}

func (m *materialUC) Save(ctx context.Context, userID int64, text, source string) (int, error) {
	defer logging.TraceDuration(m.log, "MaterialUC.Save")()

	if source == MaterialSourceExplicit {
		text = strings.TrimSpace(text)
	}
	mat, err := model.NewMaterial(userID, text)
	if err != nil {
		return 0, err
	}
	if err := m.materials.Save(ctx, repository.NoTX, mat); err != nil {
		return 0, fmt.Errorf("save material: %w", err)
	}
	metrics.IncMaterialSaved(source)

	n, err := m.materials.CountByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	m.log.Debug().Int64("tg_id", userID).Int64("material_id", mat.ID).Str("source", source).Msg("material saved")
	return n, nil
}

func (m *materialUC) List(ctx context.Context, userID int64) ([]*model.Material, error) {
	return m.materials.ListByUser(ctx, repository.NoTX, userID)
}

func (m *materialUC) Get(ctx context.Context, userID, id int64) (*model.Material, error) {
	return m.materials.FindByID(ctx, repository.NoTX, userID, id)
}

func (m *materialUC) Delete(ctx context.Context, userID, id int64) (int64, error) {
	return m.materials.Delete(ctx, repository.NoTX, userID, &id)
}

func (m *materialUC) Clear(ctx context.Context, userID int64) (int64, error) {
	n, err := m.materials.Delete(ctx, repository.NoTX, userID, nil)
	if err == nil {
		m.log.Info().Int64("tg_id", userID).Int64("deleted", n).Msg("materials cleared")
	}
	return n, err
}
