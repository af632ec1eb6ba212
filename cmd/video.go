package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tubelens/tubelens/internal"
)

// videoCmd represents the video command
var videoCmd = &cobra.Command{
	Use:   "video [video URL or ID]",
	Short: "Look up a single video's metadata as JSON",
	Long: `Look up one YouTube video and print its metadata as a single JSON
document: title, channel, publish date, ISO 8601 duration and view count.

Videos shorter than two minutes are rejected so downstream transcript
analysis never runs on shorts. Requires the YOUTUBE_API_KEY environment
variable.`,
	Example: `  # By video ID
  tubelens video dQw4w9WgXcQ

  # By URL
  tubelens video "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			_ = internal.WriteJSON(out, internal.ErrorEnvelope{Error: "Video URL or ID required"})
			return errReported
		}

		app := internal.NewApp(config)
		details, err := app.VideoDetails(cmd.Context(), args[0])

		if writeErr := internal.WriteJSON(out, internal.VideoEnvelope(details, err)); writeErr != nil {
			return writeErr
		}
		if err != nil {
			return errReported
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(videoCmd)
}
