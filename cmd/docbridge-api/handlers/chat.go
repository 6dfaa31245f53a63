package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/docbridge-ai/docbridge/internal/chat"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

// ChatHandler handles document question answering.
type ChatHandler struct {
	logger  *observability.Logger
	service *chat.Service
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, service *chat.Service) *ChatHandler {
	return &ChatHandler{logger: logger, service: service}
}

// ChatRequestDTO carries the optional inputs of a chat call. At least one
// of them must yield content.
type ChatRequestDTO struct {
	Prompt     string `json:"prompt,omitempty"`
	FileID     string `json:"fileId,omitempty"`
	ManualText string `json:"manualText,omitempty"`
}

// ChatResponseDTO carries the model's reply.
type ChatResponseDTO struct {
	Response string `json:"response"`
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var reqDTO ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	response, err := h.service.Chat(r.Context(), chat.Input{
		Prompt:     reqDTO.Prompt,
		FileID:     reqDTO.FileID,
		ManualText: reqDTO.ManualText,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("file_id", reqDTO.FileID).Msg("Chat failed")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponseDTO{Response: response})
}
