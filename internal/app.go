package internal

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// App holds the application state and dependencies
type App struct {
	config   *Config
	logger   zerolog.Logger
	ui       UIManager
	captions CaptionSource
	rotator  IdentityRotator
	prompts  *PromptManager
	metadata *MetadataClient
	llm      LLMClient
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	quiet := config.Quiet || !isatty.IsTerminal(os.Stderr.Fd())

	app := &App{
		config:  config,
		logger:  NewLogger(config.Verbose),
		ui:      NewUIManager(quiet),
		prompts: NewPromptManager(config.ConfigDir, config.Prompt),
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	// Collaborators that depend on the logger are built after options so a
	// replaced logger propagates.
	if app.rotator == nil {
		if config.UseTorProxy {
			app.rotator = NewTorRotator(config.TorControlAddr, config.TorControlPassword, app.logger)
		} else {
			app.rotator = NoopRotator()
		}
	}
	if app.captions == nil {
		app.captions = NewCaptionClient(NewProxyHTTPClient(config, app.logger), app.logger)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithCaptionSource sets a custom caption source
func WithCaptionSource(source CaptionSource) AppOption {
	return func(a *App) {
		a.captions = source
	}
}

// WithIdentityRotator sets a custom identity rotator
func WithIdentityRotator(rotator IdentityRotator) AppOption {
	return func(a *App) {
		a.rotator = rotator
	}
}

// WithMetadataClient sets a custom Data API client
func WithMetadataClient(client *MetadataClient) AppOption {
	return func(a *App) {
		a.metadata = client
	}
}

// WithLLM sets a custom completion client
func WithLLM(llm LLMClient) AppOption {
	return func(a *App) {
		a.llm = llm
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// SetPromptManager sets a new prompt manager
func (app *App) SetPromptManager(pm *PromptManager) {
	app.prompts = pm
}

// FetchTranscript runs the retrying transcript fetch for one request.
func (app *App) FetchTranscript(ctx context.Context, req TranscriptRequest) (*Transcript, error) {
	fetcher := NewFetcher(app.captions,
		WithRotator(app.rotator),
		WithFetchLogger(app.logger),
	)
	return fetcher.Fetch(ctx, req)
}

// ChannelListing looks up a channel and lists its recent uploads.
func (app *App) ChannelListing(ctx context.Context, channel string, maxResults int64) (*ChannelListing, error) {
	client, err := app.metadataClient(ctx)
	if err != nil {
		return nil, err
	}

	info, err := client.ChannelInfo(ctx, ExtractChannelID(channel))
	if err != nil {
		return nil, err
	}

	videos, err := client.ChannelVideos(ctx, info.ChannelID, maxResults)
	if err != nil {
		return nil, err
	}

	return &ChannelListing{Channel: info, Videos: videos}, nil
}

// VideoDetails looks up a single video's metadata.
func (app *App) VideoDetails(ctx context.Context, video string) (*VideoDetails, error) {
	client, err := app.metadataClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.VideoDetails(ctx, ExtractVideoID(video))
}

// AnalyzeInsights extracts structured insights from a titled transcript.
func (app *App) AnalyzeInsights(ctx context.Context, title, transcript string) (*InsightReport, error) {
	llm, err := app.ensureLLM()
	if err != nil {
		return nil, err
	}

	analyzer := NewInsightAnalyzer(llm, app.prompts, app.config.InsightsModel, app.config.InsightsTimeout, app.logger)
	return analyzer.Analyze(ctx, title, transcript)
}

// metadataClient lazily creates the Data API client so commands that never
// touch the API work without a key.
func (app *App) metadataClient(ctx context.Context) (*MetadataClient, error) {
	if app.metadata != nil {
		return app.metadata, nil
	}

	client, err := NewMetadataClient(ctx, app.config.YouTubeAPIKey, app.logger, app.ui)
	if err != nil {
		return nil, err
	}
	app.metadata = client
	return client, nil
}

// ensureLLM lazily creates the completion client.
func (app *App) ensureLLM() (LLMClient, error) {
	if app.llm != nil {
		return app.llm, nil
	}

	if app.config.OpenAIAPIKey == "" {
		return nil, ErrMissingOpenAIKey
	}
	app.llm = NewOpenAIClient(app.config.OpenAIAPIKey, app.config.OpenAIBaseURL, app.config.InsightsModel)
	return app.llm, nil
}
