package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docbridge-ai/docbridge/internal/domain"
)

// newPullCmd creates the pull subcommand.
func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull [model]",
		Short: "Pull a model into the local model service",
		Long: `Pull downloads the named model through the running model service. With no
argument the configured default model is pulled. The service must be up;
run "docbridge start" first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Ollama.PullTimeout)
			defer cancel()

			gateway, manager, err := newGateway()
			if err != nil {
				return err
			}
			defer manager.Close()

			name := cfg.Ollama.Model
			if len(args) > 0 {
				name = args[0]
			}

			ui := NewUI(outputJSON, noColor)
			ui.Info("Pulling %s", name)

			bar := ui.ProgressBar(name)
			var digest string
			err = gateway.PullModel(ctx, name, func(p domain.PullProgress) {
				if p.Total == 0 {
					return
				}
				// Each layer arrives under its own digest with its own total.
				if p.Digest != digest {
					digest = p.Digest
					bar.SetTotal(p.Total)
					bar.Describe(shortDigest(p.Digest))
				}
				bar.Set(p.Completed)
			})
			bar.Finish()
			if err != nil {
				return fmt.Errorf("pull model: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"pulled": true,
					"model":  name,
				})
			}

			ui.Success("Model %s pulled", name)
			return nil
		},
	}
}

// shortDigest trims a layer digest down to a readable progress label.
func shortDigest(digest string) string {
	const prefix = "sha256:"
	if len(digest) >= len(prefix)+12 && digest[:len(prefix)] == prefix {
		return digest[len(prefix) : len(prefix)+12]
	}
	return digest
}
