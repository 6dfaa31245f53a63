package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/llm"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

// ServiceHandler handles model-service lifecycle requests.
type ServiceHandler struct {
	logger  *observability.Logger
	gateway *llm.Gateway
}

// NewServiceHandler creates a new lifecycle handler.
func NewServiceHandler(logger *observability.Logger, gateway *llm.Gateway) *ServiceHandler {
	return &ServiceHandler{logger: logger, gateway: gateway}
}

// ServiceStatusDTO reports the container and model state.
type ServiceStatusDTO struct {
	ServiceRunning bool `json:"serviceRunning"`
	ModelAvailable bool `json:"modelAvailable"`
}

// StartResponseDTO reports whether the service is running after a start request.
type StartResponseDTO struct {
	Started bool `json:"started"`
}

// PullRequestDTO optionally overrides the configured model to pull.
type PullRequestDTO struct {
	Model string `json:"model,omitempty"`
}

// PullResponseDTO reports the outcome of a model pull.
type PullResponseDTO struct {
	Pulled bool `json:"pulled"`
}

// Status handles GET /service/status.
func (h *ServiceHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.gateway.Status(r.Context())
	writeJSON(w, http.StatusOK, ServiceStatusDTO{
		ServiceRunning: status.ContainerRunning,
		ModelAvailable: status.ModelAvailable,
	})
}

// Start handles POST /service/start. The response reports whether the
// service is running after the call; start failures are logged and
// surface as started=false rather than an error payload.
func (h *ServiceHandler) Start(w http.ResponseWriter, r *http.Request) {
	started, err := h.gateway.StartService(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Service start failed")
	}
	writeJSON(w, http.StatusOK, StartResponseDTO{Started: started})
}

// PullModel handles POST /service/pull_model. An absent or empty body
// pulls the configured default model.
func (h *ServiceHandler) PullModel(w http.ResponseWriter, r *http.Request) {
	var reqDTO PullRequestDTO
	if r.Body != nil {
		// The body is optional, so decode errors are ignored.
		_ = json.NewDecoder(r.Body).Decode(&reqDTO)
	}

	err := h.gateway.PullModel(r.Context(), reqDTO.Model, func(p domain.PullProgress) {
		h.logger.Debug().
			Str("status", p.Status).
			Str("digest", p.Digest).
			Int64("total", p.Total).
			Int64("completed", p.Completed).
			Msg("Pull progress")
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Model pull failed")
		if domain.IsType(err, domain.ErrorTypeServiceUnavailable) {
			// Pulling needs the service up first; that is a caller
			// sequencing problem, not a server fault.
			writeError(w, http.StatusBadRequest, errMessage(err), "")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PullResponseDTO{Pulled: true})
}
