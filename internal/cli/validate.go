package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"daily-quiz-service/internal/content"
	"daily-quiz-service/internal/validation"
	"github.com/spf13/cobra"
)

// NewValidateCmd checks every quiz document in a content directory.
func NewValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate quiz documents and their filenames",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
				return fmt.Errorf("%d of %d documents invalid", failed, len(reports))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d documents valid\n", len(reports))
			return nil
		},
	}
}

func printReports(out io.Writer, reports []content.FileReport) int {
	failed := 0
	for _, r := range reports {
		if r.Err == nil {
			fmt.Fprintf(out, "ok    %s\n", r.Path)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL  %s\n      %s\n", r.Path, r.Err)
		var verr *validation.ValidationError
		if errors.As(r.Err, &verr) && verr.Field != "" {
			fmt.Fprintf(out, "      field: %s, value: %v\n", verr.Field, verr.Value)
		}
	}
	return failed
}
