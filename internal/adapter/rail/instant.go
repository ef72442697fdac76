// Package rail holds the SettlementExecutor implementations that move a
// settlement across an external payment rail.
package rail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/paycore/internal/domain"
)

// InstantExecutor settles immediately. It is the default when no rail is
// configured.
type InstantExecutor struct {
	logger zerolog.Logger
}

// NewInstantExecutor creates an InstantExecutor.
func NewInstantExecutor(logger zerolog.Logger) *InstantExecutor {
	return &InstantExecutor{logger: logger}
}

// Execute implements usecase.SettlementExecutor.
func (e *InstantExecutor) Execute(ctx context.Context, s *domain.Settlement) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.logger.Debug().
		Str("settlement_id", s.ID).
		Str("amount", s.Amount.String()).
		Str("currency", s.Currency).
		Msg("settled on instant rail")

	return nil
}
