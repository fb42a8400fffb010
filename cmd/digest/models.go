package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/lecture-digest/internal/job"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the Gemini models reachable with the configured key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		key, _ := cmd.Flags().GetString("api-key")
		if key == "" {
			opts, err := a.pipeline.Resolve(ctx, job.RunOptions{})
			if err != nil {
				return err
			}
			key = opts.GeminiAPIKey
		}

		models, err := a.summarizer.AvailableModels(ctx, key)
		if err != nil {
			return err
		}
		if len(models) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No models available")
			return nil
		}
		for _, m := range models {
			fmt.Fprintln(cmd.OutOrStdout(), m)
		}
		return nil
	},
}

func init() {
	modelsCmd.Flags().String("api-key", "", "Gemini API key to probe with")
}
