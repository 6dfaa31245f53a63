package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, observability.Nop())
	require.NoError(t, err, "client construction should succeed for a valid host")
	return client
}

func TestClient_GenerateSendsNonStreamingRequest(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "granite3.2:2b",
			"response": "An answer.",
			"done":     true,
		})
	}))

	got, err := client.Generate(context.Background(), domain.GenerationRequest{
		Model:  "granite3.2:2b",
		Prompt: "hello",
		Images: [][]byte{{0x01, 0x02, 0x03}},
	})
	require.NoError(t, err)
	assert.Equal(t, "An answer.", got)

	assert.Equal(t, "granite3.2:2b", captured["model"])
	assert.Equal(t, "hello", captured["prompt"])
	assert.Equal(t, false, captured["stream"], "generation requests must be non-streaming")

	images, ok := captured["images"].([]any)
	require.True(t, ok, "images should be sent alongside the prompt")
	require.Len(t, images, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03}), images[0])
}

func TestClient_GenerateOmitsImagesWhenNoneProvided(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "ok", "done": true})
	}))

	_, err := client.Generate(context.Background(), domain.GenerationRequest{
		Model:  "granite3.2:2b",
		Prompt: "hello",
	})
	require.NoError(t, err)

	assert.Nil(t, captured["images"], "text-only requests should not carry an images array")
}

func TestClient_GenerateReturnsEmptyStringForMissingResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"model": "granite3.2:2b", "done": true})
	}))

	got, err := client.Generate(context.Background(), domain.GenerationRequest{Model: "granite3.2:2b", Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "", got, "a reply without a response field maps to the empty string")
}

func TestClient_GenerateMapsServerErrorToUpstream(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "model runner crashed"})
	}))

	_, err := client.Generate(context.Background(), domain.GenerationRequest{Model: "granite3.2:2b", Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeUpstream), "an error answered by the service is an upstream error, got %v", err)
}

func TestClient_GenerateMapsUnreachableServiceToConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(server.URL, observability.Nop())
	require.NoError(t, err)
	server.Close()

	_, err = client.Generate(context.Background(), domain.GenerationRequest{Model: "granite3.2:2b", Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConnection), "a refused connection is a connection error, got %v", err)
}

func TestClient_HasModel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "granite3.2:2b"},
				{"name": "llava:latest"},
			},
		})
	}))

	assert.True(t, client.HasModel(context.Background(), "granite3.2:2b"), "exact name should match")
	assert.True(t, client.HasModel(context.Background(), "llava"), "a bare name should match any tag of that model")
	assert.False(t, client.HasModel(context.Background(), "mistral"), "absent models should not match")
}

func TestClient_HasModelIsFalseWhenServiceUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(server.URL, observability.Nop())
	require.NoError(t, err)
	server.Close()

	assert.False(t, client.HasModel(context.Background(), "granite3.2:2b"))
}

func TestClient_PullReportsProgress(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pull", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "granite3.2:2b", req["model"])

		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"status":"downloading","digest":"sha256:abc","total":100,"completed":40}`)
		fmt.Fprintln(w, `{"status":"success"}`)
	}))

	var stages []domain.PullProgress
	err := client.Pull(context.Background(), "granite3.2:2b", func(p domain.PullProgress) {
		stages = append(stages, p)
	})
	require.NoError(t, err)

	require.Len(t, stages, 3)
	assert.Equal(t, "pulling manifest", stages[0].Status)
	assert.Equal(t, domain.PullProgress{
		Status:    "downloading",
		Digest:    "sha256:abc",
		Total:     100,
		Completed: 40,
	}, stages[1])
	assert.Equal(t, "success", stages[2].Status)
}

func TestClient_PullMapsServerErrorToUpstream(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "pull failed"})
	}))

	err := client.Pull(context.Background(), "granite3.2:2b", nil)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeUpstream), "got %v", err)
}

func TestNewClient_RejectsInvalidHost(t *testing.T) {
	_, err := NewClient("://not-a-url", observability.Nop())
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}
