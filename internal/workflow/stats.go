package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/commitgenie/internal/usage"
)

// ShowTokenStats displays the current and lifetime token usage.
func (o *Orchestrator) ShowTokenStats() {
	current, hasCurrent := o.tracker.CurrentStats()
	historical, hasHistorical := o.tracker.HistoricalStats()
	if !hasCurrent && !hasHistorical {
		o.ui.Info("No token usage recorded yet.")
		return
	}

	var c *usage.Stats
	if hasCurrent {
		c = &current
	}
	var h *usage.Historical
	if hasHistorical {
		h = &historical
	}
	o.ui.ShowStats(c, h)
}

// ResetTokenStats clears all token statistics after the user confirms.
func (o *Orchestrator) ResetTokenStats(ctx context.Context) error {
	const op = "resetTokenStats"
	tok := o.coord.CreateController(ctx)
	defer o.coord.Clear(tok)

	log := o.logger.With(zap.String("operation", op), zap.String("op_id", uuid.NewString()))
	return o.finish(tok, log, op, o.resetStats(tok.Context()))
}

func (o *Orchestrator) resetStats(ctx context.Context) error {
	ok, err := o.ui.ConfirmReset(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := o.tracker.Reset(ctx); err != nil {
		return fmt.Errorf("resetting token statistics: %w", err)
	}
	o.ui.Info("Token statistics have been reset.")
	return nil
}
