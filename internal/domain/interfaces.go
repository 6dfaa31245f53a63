package domain

import "context"

// DocumentOpener opens an on-disk document for page-level access.
type DocumentOpener interface {
	Open(path string) (Document, error)
}

// Document is one open paged document.
type Document interface {
	// NumPages returns the page count.
	NumPages() int

	// PageText returns the embedded text layer of the given zero-based page.
	PageText(page int) (string, error)

	// RenderPNG rasterizes the given zero-based page at the given DPI and
	// returns the encoded PNG bytes.
	RenderPNG(page int, dpi float64) ([]byte, error)

	// Title returns the document metadata title, empty when absent.
	Title() string

	// Close releases the underlying document resources.
	Close() error
}

// ServiceManager controls the lifecycle of the model-serving container.
type ServiceManager interface {
	// IsRunning reports whether the managed container is currently running.
	// Probe failures degrade to false.
	IsRunning(ctx context.Context) bool

	// Start launches the container unless it is already running. It reports
	// whether the container is running on return.
	Start(ctx context.Context) (bool, error)
}

// ModelClient talks to the model service HTTP API.
type ModelClient interface {
	// Generate runs a single non-streaming completion and returns the
	// response text.
	Generate(ctx context.Context, req GenerationRequest) (string, error)

	// HasModel reports whether the named model is present locally. Probe
	// failures degrade to false.
	HasModel(ctx context.Context, name string) bool

	// Pull downloads the named model, reporting progress through the
	// optional callback.
	Pull(ctx context.Context, name string, progress func(PullProgress)) error
}
