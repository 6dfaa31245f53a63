package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/extract"
	"github.com/docbridge-ai/docbridge/internal/llm"
	"github.com/docbridge-ai/docbridge/internal/observability"
	"github.com/docbridge-ai/docbridge/internal/prompt"
	"github.com/docbridge-ai/docbridge/internal/storage"
)

type fakeManager struct {
	running bool
}

func (f *fakeManager) IsRunning(ctx context.Context) bool { return f.running }

func (f *fakeManager) Start(ctx context.Context) (bool, error) { return f.running, nil }

type fakeModelClient struct {
	response  string
	generated []domain.GenerationRequest
}

func (f *fakeModelClient) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	f.generated = append(f.generated, req)
	return f.response, nil
}

func (f *fakeModelClient) HasModel(ctx context.Context, name string) bool { return true }

func (f *fakeModelClient) Pull(ctx context.Context, name string, progress func(domain.PullProgress)) error {
	return nil
}

// noPDFOpener satisfies domain.DocumentOpener for tests that only feed
// plain files through the pipeline.
type noPDFOpener struct{}

func (noPDFOpener) Open(path string) (domain.Document, error) {
	return nil, errors.New("unexpected PDF open")
}

type testPipeline struct {
	service *Service
	store   *storage.BlobStore
	client  *fakeModelClient
	manager *fakeManager
}

func newTestPipeline(t *testing.T, maxBytes int64) *testPipeline {
	t.Helper()

	logger := observability.Nop()
	store, err := storage.NewBlobStore(t.TempDir(), logger)
	require.NoError(t, err)

	client := &fakeModelClient{response: "Model reply."}
	manager := &fakeManager{running: true}

	extractor := extract.NewExtractor(noPDFOpener{}, maxBytes, 300, logger)
	composer := prompt.NewComposer(4000)
	gateway := llm.NewGateway(manager, client, "granite3.2:2b", time.Second, logger)

	return &testPipeline{
		service: NewService(store, extractor, composer, gateway, logger),
		store:   store,
		client:  client,
		manager: manager,
	}
}

func TestService_ChatWithUploadedFile(t *testing.T) {
	p := newTestPipeline(t, 10<<20)
	uploaded, err := p.store.Save("notes.txt", strings.NewReader("hello world"))
	require.NoError(t, err)

	got, err := p.service.Chat(context.Background(), Input{FileID: uploaded.ID})

	require.NoError(t, err)
	assert.Equal(t, "Model reply.", got)

	require.Len(t, p.client.generated, 1)
	assert.Equal(t,
		"The user has uploaded a document. Document content:\nhello world\n\nPlease analyze this document.",
		p.client.generated[0].Prompt)
}

func TestService_ChatWithManualTextAndMessage(t *testing.T) {
	p := newTestPipeline(t, 10<<20)

	_, err := p.service.Chat(context.Background(), Input{Prompt: "summarize", ManualText: "abc"})

	require.NoError(t, err)
	require.Len(t, p.client.generated, 1)
	assert.Equal(t,
		"The user has uploaded a document. Document content:\nabc\n\nUser message: summarize",
		p.client.generated[0].Prompt)
}

func TestService_ManualTextSuppressesFileLookup(t *testing.T) {
	p := newTestPipeline(t, 10<<20)

	// The fileId does not exist; manual text must win without touching it.
	got, err := p.service.Chat(context.Background(), Input{
		FileID:     "does-not-exist",
		ManualText: "pasted content",
	})

	require.NoError(t, err)
	assert.Equal(t, "Model reply.", got)
}

func TestService_UnknownFileID(t *testing.T) {
	p := newTestPipeline(t, 10<<20)

	_, err := p.service.Chat(context.Background(), Input{FileID: "missing"})

	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeFileNotFound), "got %v", err)
	assert.Empty(t, p.client.generated)
}

func TestService_NoContentProvided(t *testing.T) {
	p := newTestPipeline(t, 10<<20)

	_, err := p.service.Chat(context.Background(), Input{Prompt: "   "})

	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeNoContent), "got %v", err)
	assert.Empty(t, p.client.generated, "nothing should reach the model without content")
}

func TestService_OversizedFile(t *testing.T) {
	p := newTestPipeline(t, 8)
	uploaded, err := p.store.Save("big.txt", strings.NewReader("0123456789"))
	require.NoError(t, err)

	_, err = p.service.Chat(context.Background(), Input{FileID: uploaded.ID})

	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeFileTooLarge), "got %v", err)
}

func TestService_ServiceDownSurfacesAfterComposition(t *testing.T) {
	p := newTestPipeline(t, 10<<20)
	p.manager.running = false

	_, err := p.service.Chat(context.Background(), Input{Prompt: "hello"})

	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeServiceUnavailable), "got %v", err)
}
