package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/bonk/internal/review"
	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List skills due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		coord := review.New(st)
		due, err := coord.ListDueSkills(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("list due: %w", err)
		}

		if len(due) == 0 {
			fmt.Println("Nothing due. Nice.")
			return nil
		}

		fmt.Printf("%-34s  %-16s  %-44s  %s\n", "ID", "Pattern", "Title", "Due")
		fmt.Println(strings.Repeat("─", 110))

		now := time.Now().UTC()
		for _, d := range due {
			fmt.Printf("%-34s  %-16s  %-44s  %s\n",
				d.Skill.ID, d.Skill.Pattern, d.Skill.Title, formatOverdue(now, d.DueAt))
		}
		return nil
	},
}

// formatOverdue renders how long a skill has been waiting.
func formatOverdue(now, dueAt time.Time) string {
	overdue := now.Sub(dueAt)
	switch {
	case overdue < time.Hour:
		return "now"
	case overdue < 24*time.Hour:
		return fmt.Sprintf("%dh overdue", int(overdue.Hours()))
	default:
		return fmt.Sprintf("%dd overdue", int(overdue.Hours()/24))
	}
}

func init() {
	dueCmd.Flags().IntP("limit", "n", 20, "Maximum number of skills to list")
}
