// Package llm relays generation requests to the locally hosted model
// service and fronts them with readiness checks.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

// Client wraps the Ollama HTTP API. It implements domain.ModelClient.
type Client struct {
	api    *ollama.Client
	logger *observability.Logger
}

// NewClient creates a Client against the given host URL, e.g.
// "http://localhost:11434". API paths are derived from the host.
func NewClient(host string, logger *observability.Logger) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, domain.ConfigError(fmt.Sprintf("invalid model service host %q", host), err)
	}

	return &Client{
		api:    ollama.NewClient(u, &http.Client{}),
		logger: logger.WithComponent("llm"),
	}, nil
}

// Generate runs one non-streaming completion and returns the response
// text. A missing response field maps to the empty string.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	images := make([]ollama.ImageData, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, ollama.ImageData(img))
	}

	stream := false
	generateReq := &ollama.GenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Images: images,
		Stream: &stream,
	}

	var response strings.Builder
	err := c.api.Generate(ctx, generateReq, func(r ollama.GenerateResponse) error {
		response.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", classify(err)
	}

	return response.String(), nil
}

// HasModel reports whether the named model is present locally, matching
// either the exact name or any tagged variant of it. Probe failures
// degrade to false.
func (c *Client) HasModel(ctx context.Context, name string) bool {
	list, err := c.api.List(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("model list probe failed")
		return false
	}

	for _, m := range list.Models {
		if m.Name == name || strings.HasPrefix(m.Name, name+":") {
			return true
		}
	}

	return false
}

// Pull downloads the named model, reporting progress through the optional
// callback.
func (c *Client) Pull(ctx context.Context, name string, progress func(domain.PullProgress)) error {
	req := &ollama.PullRequest{Model: name}
	err := c.api.Pull(ctx, req, func(p ollama.ProgressResponse) error {
		if progress != nil {
			progress(domain.PullProgress{
				Status:    p.Status,
				Digest:    p.Digest,
				Total:     p.Total,
				Completed: p.Completed,
			})
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}

	return nil
}

// classify maps call failures onto the domain taxonomy. Failures to reach
// the service (refused connections, timeouts) are connection errors;
// anything the service itself answered with is an upstream error.
func classify(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return domain.ConnectionError("failed to reach model service", err)
	}

	var statusErr ollama.StatusError
	if errors.As(err, &statusErr) {
		return domain.UpstreamError(fmt.Sprintf("model service returned status %d", statusErr.StatusCode), err)
	}

	return domain.UpstreamError("model service returned an error", err)
}
