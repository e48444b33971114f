package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"syllabuscal/internal/bootstrap"
	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/domain/calendar"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/usecase/syllabus"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List saved events grouped by course",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *syllabus.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rawKind, _ := cmd.Flags().GetString("kind")
		kind, err := calendar.ParseKind(rawKind)
		if err != nil {
			return err
		}

		events, err := svc.ListEvents(ctx, ownerID)
		if err != nil {
			return errs.Wrap(err, "list events")
		}

		groups := calendar.GroupByCourse(calendar.Filter(events, kind))
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, group := range groups {
			fmt.Fprintf(w, "%s (%d)\t%s\t\n", group.Course, len(group.Events), group.Color)
			for _, event := range group.Events {
				fmt.Fprintf(w, "  %s\t%s\t%s\n", event.DateKey(), calendar.Classify(event), event.Title)
			}
		}
		if len(groups) == 0 {
			fmt.Fprintln(w, "no events")
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write events output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().String("kind", "all", "Type filter (all|assignment|exam|project)")
}
