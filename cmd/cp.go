package cmd

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/tubelens/tubelens/internal"
)

// cpCmd copies the transcript text to the system clipboard instead of
// printing JSON to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [video URL or ID] [languages]",
	Short: "Copy a video transcript to the clipboard",
	Example: `  # Copy the English transcript
  tubelens cp "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  tubelens cp dQw4w9WgXcQ

  # Prefer Spanish
  tubelens cp dQw4w9WgXcQ es`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		languages := []string{internal.DefaultLanguage}
		if len(args) > 1 {
			languages = internal.SplitLanguages(args[1])
		}

		app := internal.NewApp(config)
		req := internal.TranscriptRequestFromFlags(cmd, config, internal.ExtractVideoID(args[0]), languages)
		transcript, err := app.FetchTranscript(cmd.Context(), req)
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(transcript.FullText); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Fprintln(os.Stderr, "Transcript copied to clipboard")
		}

		return nil
	},
}

func init() {
	internal.AddRetryFlags(cpCmd)
	rootCmd.AddCommand(cpCmd)
}
