package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"syllabuscal/internal/bootstrap"
	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/usecase/syllabus"
)

var deleteClassCmd = &cobra.Command{
	Use:   "delete-class <course>",
	Short: "Delete every event of one course",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *syllabus.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		course := cmd.Flags().Arg(0)
		deleted, err := svc.DeleteClass(ctx, ownerID, course)
		if err != nil {
			return errs.Wrap(err, "delete class")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %d events for %q\n", deleted, course); err != nil {
			return errs.Wrap(err, "write delete-class output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(deleteClassCmd)
}
