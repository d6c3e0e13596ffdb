package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SelectAvailableModel lists the models the service offers and saves the
// one the user picks. Only the API key and base URL need to be configured.
func (o *Orchestrator) SelectAvailableModel(ctx context.Context) error {
	const op = "selectAvailableModel"
	tok := o.coord.CreateController(ctx)
	defer o.coord.Clear(tok)

	log := o.logger.With(zap.String("operation", op), zap.String("op_id", uuid.NewString()))
	return o.finish(tok, log, op, o.selectModel(tok.Context(), log))
}

func (o *Orchestrator) selectModel(ctx context.Context, log *zap.Logger) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := validateService(cfg.Service, false); err != nil {
		return err
	}
	client, err := o.newClient(cfg.Service)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	o.ui.Status("Fetching available models...")
	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}
	log.Debug("models listed", zap.Int("count", len(models)))
	if len(models) == 0 {
		o.ui.Warn("No models available from current API configuration.")
		return nil
	}

	picked, ok, err := o.ui.SelectModel(ctx, models, cfg.Service.Model)
	if err != nil {
		return err
	}
	if !ok || picked == "" {
		return nil
	}
	if o.saveModel == nil {
		return fmt.Errorf("saving model: no model store configured")
	}
	if err := o.saveModel(picked); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}
	o.ui.Info(fmt.Sprintf("Model updated to %s.", picked))
	return nil
}
