// Package extract turns uploaded files into chat-ready content.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

// Extractor reads uploaded files and produces the text and page images
// used for prompt composition.
type Extractor struct {
	opener   domain.DocumentOpener
	maxBytes int64
	dpi      float64
	logger   *observability.Logger
}

// NewExtractor creates an Extractor. maxBytes caps the file size accepted
// for extraction; dpi is the raster resolution for the PDF fallback path.
func NewExtractor(opener domain.DocumentOpener, maxBytes int64, dpi float64, logger *observability.Logger) *Extractor {
	return &Extractor{
		opener:   opener,
		maxBytes: maxBytes,
		dpi:      dpi,
		logger:   logger.WithComponent("extract"),
	}
}

// Extract pulls text and, when needed, a first-page raster out of the file
// at path. The size cap is enforced before any parsing happens.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.ExtractionResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.FileNotFoundError("uploaded file is missing from disk", err)
		}
		return nil, domain.StorageError("stat uploaded file", err)
	}

	if info.Size() >= e.maxBytes {
		return nil, domain.FileTooLargeError(
			fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), e.maxBytes), nil)
	}

	var result *domain.ExtractionResult
	if isPDFPath(path) {
		result, err = e.extractPDF(ctx, path)
	} else {
		result, err = e.extractPlain(path)
	}
	if err != nil {
		return nil, err
	}

	if !result.HasText() && !result.HasImages() {
		return nil, domain.EmptyContentError("no text or image content could be extracted", nil)
	}

	e.logger.Debug().
		Str("path", path).
		Str("source", string(result.Source)).
		Int("text_len", len(result.Text)).
		Int("images", len(result.Images)).
		Msg("extraction complete")

	return result, nil
}

// extractPDF reads the text layer and falls back to a first-page raster
// plus synthesized metadata text when the document has no usable text.
func (e *Extractor) extractPDF(ctx context.Context, path string) (*domain.ExtractionResult, error) {
	doc, err := e.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	n := doc.NumPages()
	var sb strings.Builder
	for page := 0; page < n; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, err := doc.PageText(page)
		if err != nil {
			return nil, err
		}
		// Pages without a text layer contribute nothing, not a blank
		// line; each page with text keeps its own newline separator.
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}

	joined := sb.String()
	if strings.TrimSpace(joined) != "" {
		return &domain.ExtractionResult{
			Text:   joined,
			Source: domain.SourcePDFTextLayer,
		}, nil
	}

	// No text layer: rasterize the first page only and pair it with the
	// metadata title so the model always gets some text.
	raster, err := doc.RenderPNG(0, e.dpi)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Title())
	if title == "" {
		title = "Unknown"
	}

	return &domain.ExtractionResult{
		Text:   fmt.Sprintf("Document metadata title: %s", title),
		Images: [][]byte{raster},
		Source: domain.SourcePDFRasterFallback,
	}, nil
}

// extractPlain reads any non-PDF upload as UTF-8 text, dropping invalid
// byte sequences.
func (e *Extractor) extractPlain(path string) (*domain.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ExtractionError("failed to read file", err)
	}

	return &domain.ExtractionResult{
		Text:   strings.ToValidUTF8(string(data), ""),
		Source: domain.SourcePlainFile,
	}, nil
}

// isPDFPath detects PDFs by filename extension alone. The stored filename
// embeds the original upload name, so the extension survives storage.
func isPDFPath(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}
