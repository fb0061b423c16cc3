package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/bonk/internal/llm"
	"github.com/abhisek/bonk/internal/promptgen"
	"github.com/abhisek/bonk/internal/skills"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview prompt variants for a skill (no database)",
	Long: `Generate prompt variants for a specific skill and print them.

This is a stateless developer tool — no database and no schedule changes.
Useful for judging variant quality and testing new generator families.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("skill", "", "Skill ID (required)")
	previewCmd.Flags().Int("count", 3, "Number of variants to generate")
	_ = previewCmd.MarkFlagRequired("skill")
}

func runPreview(cmd *cobra.Command, args []string) error {
	skillID, _ := cmd.Flags().GetString("skill")
	count, _ := cmd.Flags().GetInt("count")

	catalog, err := skills.Catalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var skill *skills.Skill
	for i := range catalog {
		if catalog[i].ID == skillID {
			skill = &catalog[i]
			break
		}
	}
	if skill == nil {
		return fmt.Errorf("unknown skill %q (try 'bonk skills')", skillID)
	}

	// No request log — preview is stateless.
	provider, err := llm.NewProviderFromEnv(cmd.Context(), nil)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	gen := promptgen.New(provider, promptgen.DefaultConfig())
	ctx := context.Background()

	fmt.Printf("Skill:    %s\n", skill.Title)
	fmt.Printf("Original: %s\n\n", skill.Description)

	for i := 0; i < count; i++ {
		prompt, err := gen.Prompt(ctx, *skill)
		if err != nil {
			return fmt.Errorf("generate variant: %w", err)
		}
		fmt.Printf("%d. %s\n\n", i+1, prompt)
	}
	return nil
}
