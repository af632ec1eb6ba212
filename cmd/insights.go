package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tubelens/tubelens/internal"
)

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights [title] [transcript]",
	Short: "Extract PM insights from a transcript as JSON",
	Long: `Analyze a video transcript with an LLM and print structured, RICE-scored
product management insights as a single JSON document.

The transcript comes from the second argument, from --file, or from stdin
when the second argument is "-". Transcripts beyond 80000 characters are
truncated before analysis. Requires the OPENAI_API_KEY environment variable
(or an OpenAI-compatible endpoint configured via openai_base_url).`,
	Example: `  # Transcript as an argument
  tubelens insights "How to run discovery" "today we talked about..."

  # Transcript from a file
  tubelens insights "How to run discovery" --file transcript.txt

  # Transcript from stdin
  tubelens transcript dQw4w9WgXcQ | jq -r .fullText | tubelens insights "Some title" -

  # Human-readable rendering instead of JSON
  tubelens insights "Some title" --file transcript.txt --render`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		var title string
		if len(args) > 0 {
			title = args[0]
		}
		transcript, err := readTranscriptInput(cmd, args)
		if err != nil {
			_ = internal.WriteJSON(out, internal.ErrorEnvelope{Error: err.Error()})
			return errReported
		}
		if title == "" || strings.TrimSpace(transcript) == "" {
			_ = internal.WriteJSON(out, internal.ErrorEnvelope{Error: "Video title and transcript required"})
			return errReported
		}

		internal.HandleModelFlag(cmd, config)
		app := internal.NewApp(config)
		if err := internal.HandlePromptFlag(cmd, app); err != nil {
			return err
		}

		report, err := app.AnalyzeInsights(cmd.Context(), title, transcript)

		if render, _ := cmd.Flags().GetBool("render"); render && err == nil {
			rendered, renderErr := internal.RenderMarkdown(report.Markdown())
			if renderErr != nil {
				return renderErr
			}
			fmt.Fprint(out, rendered)
			return nil
		}

		if writeErr := internal.WriteJSON(out, internal.InsightsEnvelope(report, err)); writeErr != nil {
			return writeErr
		}
		if err != nil {
			return errReported
		}
		return nil
	},
}

// readTranscriptInput resolves the transcript from --file, the positional
// argument, or stdin when the argument is "-".
func readTranscriptInput(cmd *cobra.Command, args []string) (string, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading transcript file: %w", err)
		}
		return string(data), nil
	}

	if len(args) < 2 {
		return "", nil
	}
	if args[1] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading transcript from stdin: %w", err)
		}
		return string(data), nil
	}
	return args[1], nil
}

func init() {
	internal.AddOpenAIFlags(insightsCmd)
	insightsCmd.Flags().StringP("file", "f", "", "Read the transcript from a file")
	insightsCmd.Flags().Bool("render", false, "Render insights as formatted text instead of JSON")
	rootCmd.AddCommand(insightsCmd)
}
