package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/bonk/internal/app"
	"github.com/abhisek/bonk/internal/llm"
	"github.com/abhisek/bonk/internal/promptgen"
	"github.com/abhisek/bonk/internal/review"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	opts := []review.Option{}

	// Prompt variants need an LLM provider; the app works without one.
	provider, err := llm.NewProviderFromEnv(ctx, st)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Prompt variants will be unavailable.")
	} else {
		gen := promptgen.New(provider, promptgen.DefaultConfig())
		opts = append(opts, review.WithPromptSource(gen))
	}

	coord := review.New(st, opts...)
	return app.Run(coord, st)
}
