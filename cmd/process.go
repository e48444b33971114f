package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"syllabuscal/internal/bootstrap"
	"syllabuscal/internal/bootstrap/logging"
	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/usecase/syllabus"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract events from a syllabus and save them",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *syllabus.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rawURL, _ := cmd.Flags().GetString("url")
		filePath, _ := cmd.Flags().GetString("file")
		sourceName, _ := cmd.Flags().GetString("source-filename")
		course, _ := cmd.Flags().GetString("course")

		location, err := documentLocation(rawURL, filePath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(sourceName) == "" && strings.TrimSpace(filePath) != "" {
			sourceName = filepath.Base(filePath)
		}

		result, err := svc.ProcessSyllabus(ctx, syllabus.ProcessInput{
			FileURL:        location,
			Owner:          ownerID,
			SourceDocument: sourceName,
			CourseName:     course,
		})
		if err != nil {
			var partial *domainsyllabus.PartialPersistError
			if errors.As(err, &partial) {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "saved %d of %d events before the store failed\n", partial.Saved, partial.Total)
			}
			return errs.Wrap(err, "process syllabus")
		}

		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(out, "batch %s: saved %d events (extracted=%d dropped=%d duplicates=%d)\n",
			result.BatchID, result.Saved(), result.Extracted, result.Dropped, result.Duplicates); err != nil {
			return errs.Wrap(err, "write process output")
		}
		for _, event := range result.Events {
			if _, err := fmt.Fprintf(out, "%s  %-12s  %s\n", event.DateKey(), event.CourseName, event.Title); err != nil {
				return errs.Wrap(err, "write process output")
			}
		}
		return nil
	}, bootstrap.LocalDocuments),
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().String("url", "", "Fetchable document URL (http, https or file)")
	processCmd.Flags().String("file", "", "Local document path, used instead of --url")
	processCmd.Flags().String("source-filename", "", "Name recorded as the event source document")
	processCmd.Flags().String("course", "", "Course name applied to every extracted event")
}

// documentLocation turns the --url/--file pair into one fetchable URL.
func documentLocation(rawURL string, filePath string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	filePath = strings.TrimSpace(filePath)

	switch {
	case rawURL != "" && filePath != "":
		return "", errors.New("use either --url or --file, not both")
	case rawURL != "":
		return rawURL, nil
	case filePath != "":
		abs, err := filepath.Abs(filePath)
		if err != nil {
			return "", errs.Wrapf(err, "resolve %q", filePath)
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
	default:
		return "", errors.New("--url or --file is required")
	}
}
