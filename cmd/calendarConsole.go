package cmd

import (
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"syllabuscal/internal/bootstrap"
	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/domain/calendar"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/usecase/calendarconsole"
	"syllabuscal/internal/usecase/syllabus"
)

var consoleCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Browse events as a filterable list or month grid",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *syllabus.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rawKind, _ := cmd.Flags().GetString("kind")
		rawMode, _ := cmd.Flags().GetString("view")
		exportPath, _ := cmd.Flags().GetString("export")
		logFile, _ := cmd.Flags().GetString("log-file")
		kind, err := calendar.ParseKind(rawKind)
		if err != nil {
			return err
		}
		mode, err := calendar.ParseMode(rawMode)
		if err != nil {
			return err
		}
		if strings.TrimSpace(exportPath) == "" {
			exportPath = calendar.ExportFilename
		}

		model := calendarconsole.NewCalendarModel(ctx, svc, calendarconsole.Options{
			Owner:      ownerID,
			Kind:       kind,
			Mode:       mode,
			MaxMarks:   app.Config.Calendar.MaxMarks,
			ExportPath: exportPath,
		})

		// Log lines would tear the alternate screen.
		var logOut io.Writer = io.Discard
		if strings.TrimSpace(logFile) != "" {
			file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return errs.Wrapf(err, "open log file %q", logFile)
			}
			defer file.Close()
			logOut = file
		}
		restoreLogs := logging.SetOutput(logOut)
		defer restoreLogs()

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run calendar console")
		}
		return nil
	}),
}

func init() {
	consoleCmd.AddCommand(consoleCalendarCmd)
	consoleCalendarCmd.Flags().String("kind", "all", "Initial type filter (all|assignment|exam|project)")
	consoleCalendarCmd.Flags().String("view", "list", "Initial view (list|month)")
	consoleCalendarCmd.Flags().String("export", "", "ICS export path (default syllabus-calendar.ics)")
	consoleCalendarCmd.Flags().String("log-file", "", "Append logs here while the console runs (default discard)")
}
