package internal

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies. Tool results
// carry the same JSON documents the CLI commands print, so callers parse one
// shape regardless of transport.
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App) *MCPServer {
	mcpServer := server.NewMCPServer(
		"tubelens-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	// Register tools
	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Fetch the transcript for a YouTube video. Retries with exponential backoff when YouTube rate limits. Returns a JSON document with videoId, language, timed snippets and fullText; failures are reported via an 'error' key inside the document."),
		mcp.WithString("video",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
		mcp.WithString("languages",
			mcp.Description("Comma-separated language codes in preference order (default: en)"),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("get_video",
		mcp.WithDescription("Look up metadata for a single YouTube video: title, channel, publish date, duration and view count. Videos shorter than two minutes are rejected. Requires YOUTUBE_API_KEY."),
		mcp.WithString("video",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
	), s.handleGetVideo)

	s.mcpServer.AddTool(mcp.NewTool("get_channel_videos",
		mcp.WithDescription("List a YouTube channel's recent uploads with durations and view counts. Requires YOUTUBE_API_KEY."),
		mcp.WithString("channel",
			mcp.Description("Channel URL, @handle, or UC channel ID"),
			mcp.Required(),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of videos to return (default: 50)"),
		),
	), s.handleGetChannelVideos)

	s.mcpServer.AddTool(mcp.NewTool("extract_insights",
		mcp.WithDescription("Extract structured, RICE-scored product management insights from a video transcript using an LLM. Requires OPENAI_API_KEY."),
		mcp.WithString("title",
			mcp.Description("Video title"),
			mcp.Required(),
		),
		mcp.WithString("transcript",
			mcp.Description("Full transcript text"),
			mcp.Required(),
		),
	), s.handleExtractInsights)
}

// toolResult renders an output envelope as the tool's text content.
func toolResult(envelope any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, envelope); err != nil {
		return mcp.NewToolResultErrorFromErr("encoding result", err), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// toolError renders an error envelope as the tool's text content with the
// error flag set.
func toolError(envelope any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, envelope); err != nil {
		return mcp.NewToolResultErrorFromErr("encoding result", err), nil
	}
	return mcp.NewToolResultError(buf.String()), nil
}

// handleGetTranscript implements the get_transcript tool. Like the CLI
// command, fetch failures still produce a regular result: the error lives
// inside the document.
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	video, err := request.RequireString("video")
	if err != nil {
		return mcp.NewToolResultError("video parameter is required and must be a string"), nil
	}
	languages := SplitLanguages(request.GetString("languages", DefaultLanguage))

	req := TranscriptRequest{
		VideoID:     ExtractVideoID(video),
		Languages:   languages,
		MaxRetries:  s.app.config.MaxRetries,
		BaseDelay:   s.app.config.BaseDelay,
		JitterBound: s.app.config.JitterBound,
	}

	transcript, err := s.app.FetchTranscript(ctx, req)
	return toolResult(TranscriptEnvelope(transcript, err))
}

// handleGetVideo implements the get_video tool
func (s *MCPServer) handleGetVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	video, err := request.RequireString("video")
	if err != nil {
		return mcp.NewToolResultError("video parameter is required and must be a string"), nil
	}

	details, err := s.app.VideoDetails(ctx, video)
	if err != nil {
		return toolError(VideoEnvelope(nil, err))
	}
	return toolResult(VideoEnvelope(details, nil))
}

// handleGetChannelVideos implements the get_channel_videos tool
func (s *MCPServer) handleGetChannelVideos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channel, err := request.RequireString("channel")
	if err != nil {
		return mcp.NewToolResultError("channel parameter is required and must be a string"), nil
	}
	maxResults := int64(request.GetFloat("maxResults", 50))

	listing, err := s.app.ChannelListing(ctx, channel, maxResults)
	if err != nil {
		return toolError(ChannelEnvelope(nil, err))
	}
	return toolResult(ChannelEnvelope(listing, nil))
}

// handleExtractInsights implements the extract_insights tool
func (s *MCPServer) handleExtractInsights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title parameter is required and must be a string"), nil
	}
	transcript, err := request.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError("transcript parameter is required and must be a string"), nil
	}

	report, err := s.app.AnalyzeInsights(ctx, title, transcript)
	if err != nil {
		return toolError(InsightsEnvelope(nil, err))
	}
	return toolResult(InsightsEnvelope(report, nil))
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
