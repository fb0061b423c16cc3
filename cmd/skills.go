package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/bonk/internal/skills"
	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills [pattern]",
	Short: "List the skill catalog, optionally filtered by pattern",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := skills.Catalog()
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		pattern := ""
		if len(args) == 1 {
			pattern = skills.ResolvePattern(args[0])
			if pattern == "" {
				return fmt.Errorf("unknown pattern %q", args[0])
			}
		}

		fmt.Printf("%-34s  %-16s  %s\n", "ID", "Pattern", "Title")
		fmt.Println(strings.Repeat("─", 100))

		shown := 0
		for _, sk := range catalog {
			if pattern != "" && sk.Pattern != pattern {
				continue
			}
			fmt.Printf("%-34s  %-16s  %s\n", sk.ID, sk.Pattern, sk.Title)
			shown++
		}

		if shown == 0 {
			fmt.Printf("No skills with pattern %q.\n", pattern)
		}
		return nil
	},
}
