// Package main provides the DocBridge CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docbridge-ai/docbridge/internal/config"
	"github.com/docbridge-ai/docbridge/internal/docker"
	"github.com/docbridge-ai/docbridge/internal/llm"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "docbridge",
	Short: "DocBridge CLI for the local document question-answering pipeline",
	Long: `DocBridge CLI manages the locally hosted vision-language model and
answers questions about documents without going through the API server.

Use this tool to:
- Check whether the model service and model are ready
- Start the model-serving container
- Pull the configured (or any) model
- Ask questions about a PDF, a text file, or a bare prompt

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables
		_ = godotenv.Load() // Ignore error if .env doesn't exist

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logLevel := cfg.Observability.LogLevel
		if verbose {
			logLevel = "debug"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       logLevel,
			Format:      logFormat,
			ServiceName: "docbridge-cli",
		})

		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newGateway builds the inference gateway and the container manager it
// depends on. The caller owns closing the manager.
func newGateway() (*llm.Gateway, *docker.Manager, error) {
	manager, err := docker.NewManager(cfg.Runtime, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect container runtime: %w", err)
	}

	client, err := llm.NewClient(cfg.Ollama.Host, logger)
	if err != nil {
		manager.Close()
		return nil, nil, fmt.Errorf("build model service client: %w", err)
	}

	gateway := llm.NewGateway(manager, client, cfg.Ollama.Model, cfg.Ollama.GenerateTimeout, logger)
	return gateway, manager, nil
}

// newStatusCmd creates the status subcommand.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report model service and model readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			gateway, manager, err := newGateway()
			if err != nil {
				return err
			}
			defer manager.Close()

			status := gateway.Status(ctx)

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"serviceRunning": status.ContainerRunning,
					"modelAvailable": status.ModelAvailable,
					"model":          cfg.Ollama.Model,
					"container":      cfg.Runtime.ContainerName,
				})
			}

			ui := NewUI(outputJSON, noColor)
			ui.KeyValue("Container", cfg.Runtime.ContainerName)
			ui.KeyValue("Endpoint", cfg.Ollama.Host)

			if status.ContainerRunning {
				ui.Success("Model service is running")
			} else {
				ui.Error("Model service is not running (run: docbridge start)")
			}

			if status.ModelAvailable {
				ui.Success("Model %s is available", cfg.Ollama.Model)
			} else {
				ui.Warning("Model %s is not available (run: docbridge pull)", cfg.Ollama.Model)
			}

			return nil
		},
	}
}

// newStartCmd creates the start subcommand.
func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the model-serving container",
		Long: `Start launches the configured model-serving container, removing stale
stopped instances first. It is a no-op when the service is already up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The image may need to be pulled on first start.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			gateway, manager, err := newGateway()
			if err != nil {
				return err
			}
			defer manager.Close()

			ui := NewUI(outputJSON, noColor)

			if gateway.Status(ctx).ContainerRunning {
				ui.Info("Model service is already running")
				if outputJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(map[string]interface{}{"started": true})
				}
				return nil
			}

			sp := ui.Spinner("Starting model service")
			sp.Start()
			started, err := gateway.StartService(ctx)
			sp.Stop()
			if err != nil {
				return fmt.Errorf("start service: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"started": started})
			}

			ui.Success("Model service started")
			return nil
		},
	}
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.Encode(map[string]string{
					"version": "0.1.0",
					"go":      "1.25",
				})
				return
			}
			fmt.Println("docbridge v0.1.0")
		},
	}
}
