// Package docker manages the lifecycle of the model-serving container
// through the Docker Engine API.
package docker

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/go-connections/nat"

	"github.com/docbridge-ai/docbridge/internal/config"
	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

// Manager controls a single named model-serving container. It satisfies
// domain.ServiceManager. Probes degrade to negative answers rather than
// failing, so callers can treat "cannot tell" as "not running".
type Manager struct {
	cli    *client.Client
	name   string
	image  string
	port   int
	useGPU bool
	logger *observability.Logger
}

// NewManager connects to the container runtime using the standard
// environment configuration (DOCKER_HOST and friends).
func NewManager(cfg config.RuntimeConfig, logger *observability.Logger) (*Manager, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, domain.ConfigError("failed to create container runtime client", err)
	}

	return &Manager{
		cli:    cli,
		name:   cfg.ContainerName,
		image:  cfg.Image,
		port:   cfg.Port,
		useGPU: gpuEnabled(cfg.GPU),
		logger: logger.WithComponent("docker"),
	}, nil
}

// IsRunning reports whether the managed container is currently running.
// Runtime errors degrade to false.
func (m *Manager) IsRunning(ctx context.Context) bool {
	containers, err := m.list(ctx, false)
	if err != nil {
		m.logger.Debug().Err(err).Msg("Container list probe failed")
		return false
	}

	for _, c := range containers {
		if hasName(c.Names, m.name) && c.State == "running" {
			return true
		}
	}
	return false
}

// Start launches the managed container if it is not already running. The
// returned bool reports whether the container is running after the call.
// Stale stopped instances holding the name are removed first.
func (m *Manager) Start(ctx context.Context) (bool, error) {
	if m.IsRunning(ctx) {
		return true, nil
	}

	m.removeStale(ctx)

	id, err := m.create(ctx)
	if errdefs.IsNotFound(err) {
		m.logger.Info().Str("image", m.image).Msg("Image not present locally, pulling")
		if err := m.pullImage(ctx); err != nil {
			return false, err
		}
		id, err = m.create(ctx)
	}
	if err != nil {
		return false, domain.ServiceUnavailableError(fmt.Sprintf("failed to create container %s", m.name), err)
	}

	if err := m.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return false, domain.ServiceUnavailableError(fmt.Sprintf("failed to start container %s", m.name), err)
	}

	m.logger.Info().
		Str("container", m.name).
		Str("image", m.image).
		Bool("gpu", m.useGPU).
		Msg("Container started")
	return true, nil
}

// Close releases the runtime client.
func (m *Manager) Close() error {
	return m.cli.Close()
}

func (m *Manager) list(ctx context.Context, all bool) ([]types.Container, error) {
	return m.cli.ContainerList(ctx, container.ListOptions{
		All:     all,
		Filters: filters.NewArgs(filters.Arg("name", m.name)),
	})
}

// removeStale clears exited, created, or dead instances that would
// collide with the container name. Best effort: failures are logged and
// the start attempt proceeds anyway.
func (m *Manager) removeStale(ctx context.Context) {
	containers, err := m.list(ctx, true)
	if err != nil {
		m.logger.Debug().Err(err).Msg("Stale container scan failed")
		return
	}

	for _, c := range containers {
		if !hasName(c.Names, m.name) || !isStale(c.State) {
			continue
		}
		if err := m.cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{}); err != nil {
			m.logger.Warn().Err(err).Str("container_id", c.ID).Msg("Failed to remove stale container")
			continue
		}
		m.logger.Info().Str("container_id", c.ID).Str("state", c.State).Msg("Removed stale container")
	}
}

func (m *Manager) create(ctx context.Context) (string, error) {
	exposed := nat.Port(fmt.Sprintf("%d/tcp", m.port))

	cfg := &container.Config{
		Image:        m.image,
		ExposedPorts: nat.PortSet{exposed: struct{}{}},
	}
	host := &container.HostConfig{
		PortBindings: nat.PortMap{
			exposed: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(m.port)}},
		},
	}
	if m.useGPU {
		host.Resources.DeviceRequests = []container.DeviceRequest{{
			Driver:       "nvidia",
			Count:        -1,
			Capabilities: [][]string{{"gpu"}},
		}}
	}

	created, err := m.cli.ContainerCreate(ctx, cfg, host, nil, nil, m.name)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (m *Manager) pullImage(ctx context.Context) error {
	rc, err := m.cli.ImagePull(ctx, m.image, image.PullOptions{})
	if err != nil {
		return domain.ServiceUnavailableError(fmt.Sprintf("failed to pull image %s", m.image), err)
	}
	defer rc.Close()

	// The pull only completes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return domain.ServiceUnavailableError(fmt.Sprintf("failed to pull image %s", m.image), err)
	}
	return nil
}

// hasName reports whether the runtime's name list (each entry prefixed
// with a slash) contains an exact match. The list endpoint's name filter
// matches substrings, so results must be narrowed here.
func hasName(names []string, name string) bool {
	for _, n := range names {
		if strings.TrimPrefix(n, "/") == name {
			return true
		}
	}
	return false
}

// isStale reports whether a container in the given state is a leftover
// blocking reuse of its name.
func isStale(state string) bool {
	switch state {
	case "exited", "created", "dead":
		return true
	}
	return false
}

// gpuEnabled resolves the configured GPU mode. "auto" enables GPU
// passthrough on Linux hosts only, matching where the nvidia runtime is
// expected to exist.
func gpuEnabled(mode string) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return runtime.GOOS == "linux"
	}
}
