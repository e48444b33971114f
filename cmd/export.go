package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"syllabuscal/internal/bootstrap"
	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/domain/calendar"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/usecase/syllabus"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered events as an ICS calendar",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *syllabus.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rawKind, _ := cmd.Flags().GetString("kind")
		out, _ := cmd.Flags().GetString("out")
		kind, err := calendar.ParseKind(rawKind)
		if err != nil {
			return err
		}

		doc, err := svc.Export(ctx, ownerID, kind)
		if err != nil {
			return errs.Wrap(err, "export calendar")
		}

		out = strings.TrimSpace(out)
		if out == "-" {
			if _, err := cmd.OutOrStdout().Write(doc); err != nil {
				return errs.Wrap(err, "write calendar to stdout")
			}
			return nil
		}
		if out == "" {
			out = calendar.ExportFilename
		}
		if err := os.WriteFile(out, doc, 0o644); err != nil {
			return errs.Wrapf(err, "write %q", out)
		}
		logging.Info(ctx, "calendar exported", slog.String("path", out), slog.String("kind", string(kind)))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "calendar written: %s\n", out); err != nil {
			return errs.Wrap(err, "write export output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("kind", "all", "Type filter (all|assignment|exam|project)")
	exportCmd.Flags().String("out", "", "Output path, - for stdout (default syllabus-calendar.ics)")
}
