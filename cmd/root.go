/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/errs"
)

var (
	cfgFile string
	ownerID string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "syllabuscal",
	Short:        "Turn syllabus documents into course calendars",
	Long:         "Extracts dated events from syllabus documents, stores them per user and course, and renders list, month and ICS views.",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	ctx = logging.WithAttrs(ctx, slog.String("app", "syllabuscal"))

	rootCmd.SetContext(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default configs/config.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&ownerID, "user", "local", "Owner id every event operation is scoped to")
}
