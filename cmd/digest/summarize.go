package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/lecture-digest/internal/export"
	"github.com/nguyentantai21042004/lecture-digest/internal/job"
	"github.com/nguyentantai21042004/lecture-digest/internal/youtube"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <video-file|youtube-url>",
	Short: "Summarize a single lecture video or YouTube URL",
	Example: `  digest summarize lecture01.mp4
  digest summarize https://youtu.be/dQw4w9WgXcQ -o summary.md --docx summary.docx`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringP("output", "o", "", "markdown output path (default: <name>_summary.md)")
	summarizeCmd.Flags().String("docx", "", "also write a Word document to this path")
	summarizeCmd.Flags().String("pdf", "", "also write a PDF to this path")
	summarizeCmd.Flags().String("api-key", "", "Gemini API key (overrides settings and config)")
	summarizeCmd.Flags().String("whisper-key", "", "OpenAI API key for the Whisper transcript")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	in, err := inputFor(args[0])
	if err != nil {
		return err
	}

	geminiKey, _ := cmd.Flags().GetString("api-key")
	whisperKey, _ := cmd.Flags().GetString("whisper-key")
	opts, err := a.pipeline.Resolve(ctx, job.RunOptions{
		GeminiAPIKey:  geminiKey,
		WhisperAPIKey: whisperKey,
	})
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Starting..."),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
	report := func(j job.Job) {
		bar.Describe(j.StatusMessage)
		_ = bar.Set(j.Progress)
	}

	j, err := a.pipeline.Run(ctx, job.FromInput(in), opts, report)
	if j.AudioPath != "" {
		os.Remove(j.AudioPath)
	}
	if err != nil {
		return err
	}
	_ = bar.Finish()

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = export.SummaryFilename(j.Filename)
	}
	content := j.Summary
	if j.Transcript != "" {
		content += "\n\n---\n\n## Transcript\n\n" + j.Transcript
	}
	if err := os.WriteFile(output, []byte(content), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", output)

	if docxPath, _ := cmd.Flags().GetString("docx"); docxPath != "" {
		data, err := export.Docx(j.Filename, j.Summary)
		if err != nil {
			return err
		}
		if err := os.WriteFile(docxPath, data, 0644); err != nil {
			return fmt.Errorf("write docx: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Word document written to %s\n", docxPath)
	}

	if pdfPath, _ := cmd.Flags().GetString("pdf"); pdfPath != "" {
		data, err := export.Pdf(j.Filename, j.Summary)
		if err != nil {
			return err
		}
		if err := os.WriteFile(pdfPath, data, 0644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "PDF written to %s\n", pdfPath)
	}
	return nil
}

// inputFor turns the positional argument into a job input.
func inputFor(arg string) (job.Input, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		if !youtube.ValidateURL(arg) {
			return job.Input{}, fmt.Errorf("not a YouTube URL: %s", arg)
		}
		return job.Input{Source: job.SourceYouTube, YouTubeURL: arg}, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return job.Input{}, err
	}
	if info.IsDir() {
		return job.Input{}, fmt.Errorf("%s is a directory", arg)
	}
	return job.Input{
		Filename: filepath.Base(arg),
		Size:     info.Size(),
		Path:     arg,
	}, nil
}
