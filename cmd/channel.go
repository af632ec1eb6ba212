package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tubelens/tubelens/internal"
)

// channelCmd represents the channel command
var channelCmd = &cobra.Command{
	Use:   "channel [channel URL, @handle, or ID] [maxResults]",
	Short: "List a channel's uploads as JSON",
	Long: `Look up a YouTube channel and list its most recent uploads as a single
JSON document. Each video carries its duration and view count, filled in by
a second Data API pass.

Requires the YOUTUBE_API_KEY environment variable. Unlike transcript, this
command exits 1 when the document contains an error.`,
	Example: `  # List the 50 most recent uploads
  tubelens channel UC9-y-6csu5WGm29I7JiwpnA

  # Handles and channel URLs work too
  tubelens channel @veritasium 25
  tubelens channel "https://www.youtube.com/@veritasium" 10`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			_ = internal.WriteJSON(out, internal.ErrorEnvelope{Error: "Channel URL or ID required"})
			return errReported
		}

		maxResults := int64(50)
		if len(args) > 1 {
			parsed, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || parsed <= 0 {
				_ = internal.WriteJSON(out, internal.ErrorEnvelope{Error: "maxResults must be a positive integer"})
				return errReported
			}
			maxResults = parsed
		}

		app := internal.NewApp(config)
		listing, err := app.ChannelListing(cmd.Context(), args[0], maxResults)

		if writeErr := internal.WriteJSON(out, internal.ChannelEnvelope(listing, err)); writeErr != nil {
			return writeErr
		}
		if err != nil {
			return errReported
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(channelCmd)
}
