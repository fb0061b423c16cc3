package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/bonk/internal/scheduler"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		stats, err := st.Stats(context.Background(), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("compute stats: %w", err)
		}

		fmt.Printf("Skills in catalog:    %d\n", stats.Skills)
		fmt.Printf("Due now:              %d\n", stats.DueNow)
		fmt.Printf("Reviews finished:     %d\n", stats.ReviewsFinished)
		fmt.Printf("Reviews abandoned:    %d\n", stats.ReviewsAbandoned)
		fmt.Printf("Total lapses:         %d\n", stats.TotalLapses)
		fmt.Printf("Missed key concepts:  %d\n", stats.MissedKeyConcept)

		if stats.ReviewsFinished > 0 {
			fmt.Println()
			fmt.Println("Ratings")
			fmt.Println(strings.Repeat("─", 24))
			for r := scheduler.RatingAgain; r <= scheduler.RatingEasy; r++ {
				fmt.Printf("%-8s  %d\n", r.String(), stats.RatingCounts[r])
			}
		}

		if len(stats.Patterns) > 0 {
			fmt.Println()
			fmt.Println("Keyword hits by pattern")
			fmt.Println(strings.Repeat("─", 40))
			for _, p := range stats.Patterns {
				fmt.Printf("%-16s  %3d/%-3d  %3.0f%%\n",
					p.Pattern, p.Hits, p.Answered, p.HitRate()*100)
			}
		}
		return nil
	},
}
