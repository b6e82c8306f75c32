package cli

import (
	"fmt"
	"os"

	"daily-quiz-service/internal/content"
	pgstore "daily-quiz-service/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewPublishCmd validates a content directory and upserts every quiz into
// Postgres. Nothing is written unless every document is valid.
func NewPublishCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "publish [dir]",
		Short: "Validate quizzes and publish them to Postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(*configPath, os.Stderr)
			if err != nil {
				return err
			}
			defer rt.Close()

			dir := rt.cfg.Content.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			reports, err := content.ValidateDir(dir)
			if err != nil {
				return err
			}
			if failed := printReports(cmd.OutOrStdout(), reports); failed > 0 {
				return fmt.Errorf("refusing to publish: %d of %d documents invalid", failed, len(reports))
			}

			if err := runMigrationsWithConfig(ctx, rt); err != nil {
				return err
			}
			pool, err := rt.postgres(ctx)
			if err != nil {
				return err
			}
			publisher := pgstore.NewQuizPublisher(pool)
			for _, r := range reports {
				if err := publisher.Publish(ctx, r.Quiz); err != nil {
					return fmt.Errorf("publish %s: %w", r.Quiz.Meta.ID, err)
				}
				rt.log.WithField("quiz_id", r.Quiz.Meta.ID).Info("quiz published")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d quizzes\n", len(reports))
			return nil
		},
	}
}
