package domain

import "strings"

// SourceKind identifies where chat content came from.
type SourceKind string

const (
	// SourceText is caller-supplied manual text.
	SourceText SourceKind = "text"
	// SourcePDFTextLayer is text read from a PDF's embedded text layer.
	SourcePDFTextLayer SourceKind = "pdf-text-layer"
	// SourcePDFRasterFallback is a first-page raster of a PDF without a
	// usable text layer, paired with synthesized metadata text.
	SourcePDFRasterFallback SourceKind = "pdf-raster-fallback"
	// SourcePlainFile is a non-PDF upload decoded as UTF-8.
	SourcePlainFile SourceKind = "plain-file"
)

// UploadedFile is a blob-store registry entry for a single upload.
type UploadedFile struct {
	ID           string
	StoredPath   string
	OriginalName string
}

// ExtractionResult carries the content pulled out of an uploaded file.
// Images holds at most one entry: the first-page raster produced when a
// PDF has no usable text layer.
type ExtractionResult struct {
	Text   string
	Images [][]byte
	Source SourceKind
}

// HasText reports whether the result carries non-blank text.
func (r *ExtractionResult) HasText() bool {
	return strings.TrimSpace(r.Text) != ""
}

// HasImages reports whether the result carries at least one page image.
func (r *ExtractionResult) HasImages() bool {
	return len(r.Images) > 0
}

// GenerationRequest is a single non-streaming model invocation.
type GenerationRequest struct {
	Model  string
	Prompt string
	Images [][]byte
}

// ServiceStatus is the model service state at probe time. It is computed
// on demand for every request and never cached.
type ServiceStatus struct {
	ContainerRunning bool
	ModelAvailable   bool
}

// PullProgress is one progress update from a model pull.
type PullProgress struct {
	Status    string
	Digest    string
	Total     int64
	Completed int64
}
