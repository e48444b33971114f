package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"syllabuscal/internal/bootstrap"
	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/usecase/syllabus"
)

var uploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "List processed syllabus uploads",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *syllabus.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		uploads, err := svc.ListUploads(ctx, ownerID)
		if err != nil {
			return errs.Wrap(err, "list uploads")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CREATED\tCOURSE\tEVENTS\tDOCUMENT\tHASH")
		for _, upload := range uploads {
			hash := upload.ContentHash
			if len(hash) > 12 {
				hash = hash[:12]
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				upload.CreatedAt.Local().Format(time.DateTime), upload.CourseName, upload.EventCount, upload.SourceDocument, hash)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write uploads output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(uploadsCmd)
}
