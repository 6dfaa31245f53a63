// Package config provides unified configuration loading for the service.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the docbridge service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Prompt        PromptConfig        `yaml:"prompt"`
	Ollama        OllamaConfig        `yaml:"ollama"`
	Runtime       RuntimeConfig       `yaml:"runtime"`
	CORS          CORSConfig          `yaml:"cors"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// StorageConfig holds upload blob store settings.
type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
}

// ExtractionConfig holds document extraction settings.
type ExtractionConfig struct {
	MaxFileBytes int64   `yaml:"max_file_bytes"`
	RasterDPI    float64 `yaml:"raster_dpi"`
}

// PromptConfig holds prompt composition settings.
type PromptConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// OllamaConfig holds model service API settings. The generate endpoint is
// derived from Host by the client library.
type OllamaConfig struct {
	Host            string        `yaml:"host"`
	Model           string        `yaml:"model"`
	GenerateTimeout time.Duration `yaml:"generate_timeout"`
	PullTimeout     time.Duration `yaml:"pull_timeout"`
}

// RuntimeConfig holds model-serving container settings.
type RuntimeConfig struct {
	ContainerName string `yaml:"container_name"`
	Image         string `yaml:"image"`
	Port          int    `yaml:"port"`
	GPU           string `yaml:"gpu"` // auto, on, or off; auto enables GPUs on Linux only
}

// CORSConfig holds cross-origin settings for the HTTP API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			ReadTimeout: 30 * time.Second,
			// Model pulls stream progress for many minutes, so the write
			// timeout stays disabled; slow requests are bounded per route
			// by the request timeout instead.
			WriteTimeout:     0,
			IdleTimeout:      120 * time.Second,
			RequestTimeout:   300 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Storage: StorageConfig{
			UploadDir: "uploads",
		},
		Extraction: ExtractionConfig{
			MaxFileBytes: 10 << 20,
			RasterDPI:    300,
		},
		Prompt: PromptConfig{
			MaxChars: 4000,
		},
		Ollama: OllamaConfig{
			Host:            "http://localhost:11434",
			Model:           "granite3.2:2b",
			GenerateTimeout: 180 * time.Second,
			PullTimeout:     30 * time.Minute,
		},
		Runtime: RuntimeConfig{
			ContainerName: "ollama_server",
			Image:         "ollama/ollama",
			Port:          11434,
			GPU:           "auto",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload dir must not be empty")
	}

	if c.Extraction.MaxFileBytes <= 0 {
		return fmt.Errorf("invalid max file bytes: %d", c.Extraction.MaxFileBytes)
	}

	if c.Extraction.RasterDPI <= 0 {
		return fmt.Errorf("invalid raster dpi: %v", c.Extraction.RasterDPI)
	}

	if c.Prompt.MaxChars <= 0 {
		return fmt.Errorf("invalid prompt max chars: %d", c.Prompt.MaxChars)
	}

	if c.Ollama.Host == "" {
		return fmt.Errorf("ollama host must not be empty")
	}

	if c.Ollama.Model == "" {
		return fmt.Errorf("ollama model must not be empty")
	}

	if c.Ollama.GenerateTimeout <= 0 {
		return fmt.Errorf("invalid generate timeout: %v", c.Ollama.GenerateTimeout)
	}

	if c.Ollama.PullTimeout <= 0 {
		return fmt.Errorf("invalid pull timeout: %v", c.Ollama.PullTimeout)
	}

	if c.Runtime.ContainerName == "" {
		return fmt.Errorf("container name must not be empty")
	}

	if c.Runtime.Port < 1 || c.Runtime.Port > 65535 {
		return fmt.Errorf("invalid runtime port: %d", c.Runtime.Port)
	}

	switch c.Runtime.GPU {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid gpu mode: %s", c.Runtime.GPU)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.Storage.UploadDir = v
	}

	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.Ollama.Host = v
	}

	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.Ollama.Model = v
	}

	if v := os.Getenv("OLLAMA_CONTAINER_NAME"); v != "" {
		cfg.Runtime.ContainerName = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
