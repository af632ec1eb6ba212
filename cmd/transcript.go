package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tubelens/tubelens/internal"
)

// transcriptCmd represents the transcript command
var transcriptCmd = &cobra.Command{
	Use:   "transcript [video URL or ID] [languages]",
	Short: "Fetch a video transcript as JSON",
	Long: `Fetch the transcript for a YouTube video and print it as a single JSON
document. Languages are a comma-separated preference list; for each language
a manually created track is preferred over an auto-generated one.

When YouTube rate-limits the request, the fetch retries with exponential
backoff plus random jitter and, if Tor is enabled, rotates the circuit
between attempts.

This command always exits 0: callers detect failure by the presence of an
"error" key in the document, never by exit status.`,
	Example: `  # Fetch the English transcript
  tubelens transcript dQw4w9WgXcQ

  # Prefer German, fall back to English
  tubelens transcript "https://youtu.be/dQw4w9WgXcQ" de,en

  # Allow more attempts with a longer base delay
  tubelens transcript dQw4w9WgXcQ --max-retries 8 --base-delay 10s

  # Route through a local Tor proxy
  USE_TOR_PROXY=true tubelens transcript dQw4w9WgXcQ`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			_ = internal.WriteJSON(out, internal.ErrorEnvelope{Error: "Video ID required"})
			return nil
		}

		languages := []string{internal.DefaultLanguage}
		if len(args) > 1 {
			languages = internal.SplitLanguages(args[1])
		}

		app := internal.NewApp(config)
		req := internal.TranscriptRequestFromFlags(cmd, config, internal.ExtractVideoID(args[0]), languages)
		transcript, err := app.FetchTranscript(cmd.Context(), req)

		// The exit code is part of the contract: callers branch on the
		// "error" key, never on exit status.
		_ = internal.WriteJSON(out, internal.TranscriptEnvelope(transcript, err))
		return nil
	},
}

func init() {
	internal.AddRetryFlags(transcriptCmd)
	rootCmd.AddCommand(transcriptCmd)
}
