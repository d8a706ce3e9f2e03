package main

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Align narration audio to a book's text and emit a read-along package",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "config/dev.example.yaml", "path to configuration file",
	)
	rootCmd.AddCommand(syncCmd)
}
