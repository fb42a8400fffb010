package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarize lecture videos with Gemini",
	Long: `digest extracts speech audio from lecture videos (or YouTube URLs),
summarizes it with Gemini and optionally transcribes it with Whisper.

Run "digest serve" for the dashboard, or "digest summarize" for a one-off file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, summarizeCmd, modelsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
