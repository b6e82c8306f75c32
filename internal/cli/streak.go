package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewStreakCmd prints a player's streak, totals and badges.
func NewStreakCmd(configPath *string) *cobra.Command {
	var (
		player string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Show streak statistics and badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()
			rt.quiet()

			storage, err := rt.streakStorage(ctx)
			if err != nil {
				return err
			}
			stats := rt.service(nil, nil, storage).Streak(ctx, player)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			fmt.Fprintf(out, "Current streak: %d\n", stats.CurrentStreak)
			fmt.Fprintf(out, "Longest streak: %d\n", stats.LongestStreak)
			fmt.Fprintf(out, "Quizzes completed: %d\n", stats.TotalCompleted)
			if stats.StreakAtRisk {
				fmt.Fprintln(out, "Play today to keep your streak!")
			}
			fmt.Fprintln(out, "Badges:")
			for _, b := range stats.Badges {
				status := "locked"
				if b.Unlocked {
					status = "unlocked"
				}
				fmt.Fprintf(out, "  %s %-14s %-8s %s\n", b.Emoji, b.Name, status, b.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&player, "player", os.Getenv("QUIZ_PLAYER"), "player id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}
