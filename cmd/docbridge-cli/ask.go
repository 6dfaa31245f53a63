package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/docbridge-ai/docbridge/internal/chat"
	"github.com/docbridge-ai/docbridge/internal/extract"
	"github.com/docbridge-ai/docbridge/internal/pdf"
	"github.com/docbridge-ai/docbridge/internal/prompt"
	"github.com/docbridge-ai/docbridge/internal/storage"
)

// newAskCmd creates the ask subcommand.
func newAskCmd() *cobra.Command {
	var (
		userPrompt string
		manualText string
	)

	cmd := &cobra.Command{
		Use:   "ask [file]",
		Short: "Ask the model about a document or a bare prompt",
		Long: `Ask runs the full document pipeline locally: the file is stored, its
content extracted (PDF text layer, raster fallback, or plain text), merged
with the prompt, and sent to the model service.

Examples:
  docbridge ask report.pdf --prompt "What are the key findings?"
  docbridge ask notes.txt
  docbridge ask --text "pasted content" --prompt "summarize"
  docbridge ask --prompt "What is the capital of France?"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Extraction happens locally; only the generate call needs the
			// service, and the gateway bounds that itself.
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Ollama.GenerateTimeout+time.Minute)
			defer cancel()

			gateway, manager, err := newGateway()
			if err != nil {
				return err
			}
			defer manager.Close()

			// Uploads are throwaway for a one-shot ask.
			dir, err := os.MkdirTemp("", "docbridge-ask-")
			if err != nil {
				return fmt.Errorf("create scratch dir: %w", err)
			}
			defer os.RemoveAll(dir)

			store, err := storage.NewBlobStore(dir, logger)
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}

			extractor := extract.NewExtractor(pdf.NewOpener(), cfg.Extraction.MaxFileBytes, cfg.Extraction.RasterDPI, logger)
			composer := prompt.NewComposer(cfg.Prompt.MaxChars)
			service := chat.NewService(store, extractor, composer, gateway, logger)

			var fileID string
			if len(args) > 0 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open file: %w", err)
				}
				uploaded, err := store.Save(filepath.Base(args[0]), f)
				f.Close()
				if err != nil {
					return fmt.Errorf("store file: %w", err)
				}
				fileID = uploaded.ID
			}

			ui := NewUI(outputJSON, noColor)
			sp := ui.Spinner("Waiting for the model")
			sp.Start()
			response, err := service.Chat(ctx, chat.Input{
				Prompt:     userPrompt,
				FileID:     fileID,
				ManualText: manualText,
			})
			sp.Stop()
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"response": response})
			}

			fmt.Println(response)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userPrompt, "prompt", "p", "", "question or instruction for the model")
	cmd.Flags().StringVarP(&manualText, "text", "t", "", "document text pasted directly (overrides the file)")

	return cmd
}
