package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

// Gateway fronts the model service. It owns the per-call readiness checks
// and the generation timeout; nothing in here retries or caches.
type Gateway struct {
	manager    domain.ServiceManager
	client     domain.ModelClient
	model      string
	genTimeout time.Duration
	logger     *observability.Logger
}

// NewGateway creates a Gateway for the given default model.
func NewGateway(manager domain.ServiceManager, client domain.ModelClient, model string, genTimeout time.Duration, logger *observability.Logger) *Gateway {
	return &Gateway{
		manager:    manager,
		client:     client,
		model:      model,
		genTimeout: genTimeout,
		logger:     logger.WithComponent("gateway"),
	}
}

// Model returns the configured default model name.
func (g *Gateway) Model() string {
	return g.model
}

// Status reports the service and model state, computed fresh on every
// call. The model is only probed while the service is running.
func (g *Gateway) Status(ctx context.Context) domain.ServiceStatus {
	status := domain.ServiceStatus{
		ContainerRunning: g.manager.IsRunning(ctx),
	}
	if status.ContainerRunning {
		status.ModelAvailable = g.client.HasModel(ctx, g.model)
	}

	return status
}

// StartService starts the model-serving container; an already running
// container counts as success.
func (g *Gateway) StartService(ctx context.Context) (bool, error) {
	return g.manager.Start(ctx)
}

// PullModel downloads name, or the configured default when name is empty.
// The service must be running.
func (g *Gateway) PullModel(ctx context.Context, name string, progress func(domain.PullProgress)) error {
	if !g.manager.IsRunning(ctx) {
		return domain.ServiceUnavailableError("model service is not running; start it first", nil)
	}

	if name == "" {
		name = g.model
	}

	g.logger.Info().Str("model", name).Msg("pulling model")

	return g.client.Pull(ctx, name, progress)
}

// Generate re-checks readiness, then runs a single completion bounded by
// the generation timeout.
func (g *Gateway) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if !g.manager.IsRunning(ctx) {
		return "", domain.ServiceUnavailableError("model service is not running; start it first", nil)
	}

	if !g.client.HasModel(ctx, g.model) {
		return "", domain.ModelNotReadyError(fmt.Sprintf("model %s is not available; pull it first", g.model), nil)
	}

	req.Model = g.model

	ctx, cancel := context.WithTimeout(ctx, g.genTimeout)
	defer cancel()

	start := time.Now()
	response, err := g.client.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	g.logger.Info().
		Str("model", req.Model).
		Int("prompt_len", len(req.Prompt)).
		Int("images", len(req.Images)).
		Dur("took", time.Since(start)).
		Msg("generation complete")

	return response, nil
}
