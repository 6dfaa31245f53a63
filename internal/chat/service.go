// Package chat orchestrates the document-to-answer pipeline: resolve the
// uploaded file, extract its content, compose the generation prompt, and
// relay the model's reply.
package chat

import (
	"context"
	"strings"

	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/extract"
	"github.com/docbridge-ai/docbridge/internal/llm"
	"github.com/docbridge-ai/docbridge/internal/observability"
	"github.com/docbridge-ai/docbridge/internal/prompt"
	"github.com/docbridge-ai/docbridge/internal/storage"
)

// Input is a single chat request. All fields are optional; the pipeline
// fails with NoContentProvided when none of them yields content.
type Input struct {
	Prompt     string
	FileID     string
	ManualText string
}

// Service runs the pipeline for chat requests.
type Service struct {
	store     *storage.BlobStore
	extractor *extract.Extractor
	composer  *prompt.Composer
	gateway   *llm.Gateway
	logger    *observability.Logger
}

func NewService(store *storage.BlobStore, extractor *extract.Extractor, composer *prompt.Composer, gateway *llm.Gateway, logger *observability.Logger) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		composer:  composer,
		gateway:   gateway,
		logger:    logger.WithComponent("chat"),
	}
}

// Chat answers a single request. Manual text suppresses file handling
// entirely, so a dangling fileId is not an error when manual text is
// present.
func (s *Service) Chat(ctx context.Context, in Input) (string, error) {
	var extraction *domain.ExtractionResult

	manual := strings.TrimSpace(in.ManualText) != ""
	if !manual && in.FileID != "" {
		file, err := s.store.Get(in.FileID)
		if err != nil {
			return "", err
		}

		result, err := s.extractor.Extract(ctx, file.StoredPath)
		if err != nil {
			return "", err
		}
		extraction = result
	}

	req, err := s.composer.Compose(prompt.Input{
		Prompt:     in.Prompt,
		ManualText: in.ManualText,
		Extraction: extraction,
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug().
		Bool("manual_text", manual).
		Str("file_id", in.FileID).
		Int("prompt_len", len(req.Prompt)).
		Msg("Composed generation request")

	return s.gateway.Generate(ctx, req)
}
