package cmd

import (
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive terminal views over saved events",
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
