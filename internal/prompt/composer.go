// Package prompt composes the final model prompt from chat inputs.
package prompt

import (
	"fmt"
	"strings"

	"github.com/docbridge-ai/docbridge/internal/domain"
)

// Composition templates. The phrasing is fixed; answers downstream depend
// on it.
const (
	documentWithMessage = "The user has uploaded a document. Document content:\n%s\n\nUser message: %s"
	documentAnalyze     = "The user has uploaded a document. Document content:\n%s\n\nPlease analyze this document."
	imageWithMessage    = "The user has uploaded a document image. User message: %s"
	imageAnalyze        = "The user has uploaded a document image. Please analyze the document content."

	truncationMarker = "... [Prompt truncated]"
)

// Input carries the raw chat inputs for composition.
type Input struct {
	Prompt     string
	ManualText string
	Extraction *domain.ExtractionResult
}

// Composer builds the final prompt sent to the model.
type Composer struct {
	maxRunes int
}

// NewComposer creates a Composer that truncates composed prompts longer
// than maxRunes.
func NewComposer(maxRunes int) *Composer {
	return &Composer{maxRunes: maxRunes}
}

// Compose applies the content precedence rules and templates, then
// truncates the result. Precedence: manual text, extracted text, extracted
// images, bare prompt. With nothing usable it returns a no-content error.
func (c *Composer) Compose(in Input) (domain.GenerationRequest, error) {
	var (
		content string
		images  [][]byte
	)

	switch {
	case strings.TrimSpace(in.ManualText) != "":
		// Manual text wins verbatim; any uploaded file is ignored.
		content = in.ManualText
	case in.Extraction != nil:
		if in.Extraction.HasText() {
			content = in.Extraction.Text
		}
		images = in.Extraction.Images
	}

	hasMessage := strings.TrimSpace(in.Prompt) != ""

	var composed string
	switch {
	case content != "":
		if hasMessage {
			composed = fmt.Sprintf(documentWithMessage, content, in.Prompt)
		} else {
			composed = fmt.Sprintf(documentAnalyze, content)
		}
	case len(images) > 0:
		if hasMessage {
			composed = fmt.Sprintf(imageWithMessage, in.Prompt)
		} else {
			composed = imageAnalyze
		}
	case hasMessage:
		composed = in.Prompt
	default:
		return domain.GenerationRequest{}, domain.NoContentError("no prompt, file content, or manual text provided", nil)
	}

	return domain.GenerationRequest{
		Prompt: c.truncate(composed),
		Images: images,
	}, nil
}

// truncate keeps the first maxRunes characters and appends the marker. The
// cap applies to the composed prompt, document content included.
func (c *Composer) truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= c.maxRunes {
		return s
	}
	return string(runes[:c.maxRunes]) + truncationMarker
}
