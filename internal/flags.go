package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// AddRetryFlags adds the transcript retry tuning flags
func AddRetryFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-retries", 0, "Max fetch attempts while rate limited (0 uses config)")
	cmd.Flags().Duration("base-delay", 0, "Base backoff delay, doubled per blocked attempt (0 uses config)")
	cmd.Flags().Duration("jitter", 0, "Upper bound for random delay added to each backoff (0 uses config)")
}

// AddOpenAIFlags adds flags related to the completion API
func AddOpenAIFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "Model to use for insight extraction")
	cmd.Flags().StringP("prompt", "p", "", "Custom prompt (string or file path)")
}

// TranscriptRequestFromFlags builds a transcript request from config
// defaults and any per-command flag overrides.
func TranscriptRequestFromFlags(cmd *cobra.Command, config *Config, videoID string, languages []string) TranscriptRequest {
	req := TranscriptRequest{
		VideoID:     videoID,
		Languages:   languages,
		MaxRetries:  config.MaxRetries,
		BaseDelay:   config.BaseDelay,
		JitterBound: config.JitterBound,
	}

	if v, _ := cmd.Flags().GetInt("max-retries"); v > 0 {
		req.MaxRetries = v
	}
	if v, _ := cmd.Flags().GetDuration("base-delay"); v > 0 {
		req.BaseDelay = v
	}
	if v, _ := cmd.Flags().GetDuration("jitter"); v > 0 {
		req.JitterBound = v
	}

	return req
}

// HandlePromptFlag processes the --prompt flag to set custom prompt
func HandlePromptFlag(cmd *cobra.Command, app *App) error {
	// Check if prompt flag was explicitly set
	promptFlag := cmd.Flags().Lookup("prompt")
	if promptFlag == nil || !promptFlag.Changed {
		return nil
	}

	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return fmt.Errorf("failed to get prompt flag: %w", err)
	}

	// If prompt is empty, nothing to do
	if prompt == "" {
		return nil
	}

	// Create a new PromptManager with the specified prompt
	app.SetPromptManager(NewPromptManager(app.config.ConfigDir, prompt))

	if app.config.Verbose {
		if IsLikelyFilePath(prompt) && FileExists(prompt) {
			fmt.Fprintf(os.Stderr, "Using custom prompt file: %s\n", prompt)
		} else {
			fmt.Fprintln(os.Stderr, "Using custom prompt string")
		}
	}

	return nil
}

// HandleModelFlag applies the --model flag to the configuration
func HandleModelFlag(cmd *cobra.Command, config *Config) {
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		config.InsightsModel = model
	}
}

// HandleGlobalFlags applies the persistent --verbose and --quiet flags to
// the loaded configuration. The flags only ever enable; config file values
// are not cleared by their absence.
func HandleGlobalFlags(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if verbose {
		config.Verbose = true
	}

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if quiet {
		config.Quiet = true
	}

	return nil
}
