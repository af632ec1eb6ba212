package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tubelens/tubelens/internal"
)

var (
	config *internal.Config
)

// errReported signals that a command already wrote its error envelope to
// stdout and only a nonzero exit remains.
var errReported = errors.New("error already reported")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tubelens",
	Short: "YouTube transcripts, metadata, and LLM insights as JSON",
	Long: `Tubelens turns YouTube data into JSON documents for a calling process.

Each subcommand performs one operation - transcript fetch, channel listing,
single-video lookup, or insight extraction - and writes exactly one JSON
document to stdout. Diagnostics only ever go to stderr.

Transcript fetches tolerate rate limiting with exponential backoff and can
rotate the outbound identity through a local Tor proxy between attempts.`,
	Example: `  # Fetch a transcript (always exits 0; check the "error" key)
  tubelens transcript dQw4w9WgXcQ
  tubelens transcript "https://youtu.be/dQw4w9WgXcQ" de,en

  # List a channel's uploads
  tubelens channel @veritasium 25

  # Look up one video
  tubelens video dQw4w9WgXcQ

  # Extract insights from a transcript on stdin
  tubelens transcript dQw4w9WgXcQ | jq -r .fullText | tubelens insights "Some title" -`,
	// Errors are printed in Execute so envelope-reporting commands can
	// suppress the duplicate line.
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return internal.HandleGlobalFlags(cmd, config)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A local .env can supply API keys during development.
	_ = godotenv.Load()

	// Initialize configuration with Viper
	config = internal.InitConfig()

	// Ensure XDG directories exist
	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	// Ensure default config exists in XDG config directory
	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	// Ensure default prompt exists in XDG config directory
	if err := internal.EnsureDefaultPrompt(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompt: %v\n", err)
	}

	// Set context on root command
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output on stderr")
}
