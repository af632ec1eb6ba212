package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// transcriptCharLimit caps the transcript fed into the prompt so the
	// request stays within model context limits.
	transcriptCharLimit = 80000
	truncationNotice    = "\n\n[Transcript truncated due to length...]"

	// insightsMaxTokens is the completion budget for one analysis.
	insightsMaxTokens = 8192
)

// RiceScore holds the prioritization scores the model assigns to an insight.
// Total is recomputed locally and never trusted from the model.
type RiceScore struct {
	Reach      float64 `json:"reach"`
	Impact     float64 `json:"impact"`
	Confidence float64 `json:"confidence"`
	Effort     float64 `json:"effort"`
	Total      float64 `json:"total"`
}

// Insight is one structured takeaway extracted from a transcript.
type Insight struct {
	Insight          string     `json:"insight"`
	Category         string     `json:"category"`
	TranscriptNugget string     `json:"transcriptNugget"`
	WhyItMatters     string     `json:"whyItMatters"`
	ActionableSteps  []string   `json:"actionableSteps"`
	RiceScore        *RiceScore `json:"riceScore"`
	ToolsNeeded      []string   `json:"toolsNeeded"`
	ExamplePrompt    string     `json:"examplePrompt"`
	WeekTieIn        string     `json:"weekTieIn"`
}

// InsightReport is the document the insights command emits on success.
type InsightReport struct {
	Insights   []Insight `json:"insights"`
	Model      string    `json:"model"`
	TokensUsed int64     `json:"tokensUsed"`
}

// ResponseParseError reports a model response that was not valid JSON. Raw
// carries the offending text so callers can surface it for debugging.
type ResponseParseError struct {
	Detail string
	Raw    string
}

func (e *ResponseParseError) Error() string {
	return "Failed to parse model response as JSON: " + e.Detail
}

// InsightAnalyzer extracts structured insights from transcripts via an LLM.
type InsightAnalyzer struct {
	llm     LLMClient
	prompts *PromptManager
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewInsightAnalyzer creates an analyzer using the given completion client
func NewInsightAnalyzer(llm LLMClient, prompts *PromptManager, model string, timeout time.Duration, logger zerolog.Logger) *InsightAnalyzer {
	return &InsightAnalyzer{
		llm:     llm,
		prompts: prompts,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Analyze runs one insight extraction over the titled transcript.
func (a *InsightAnalyzer) Analyze(ctx context.Context, title, transcript string) (*InsightReport, error) {
	prompt, err := a.prompts.CreatePrompt(title, truncateTranscript(transcript))
	if err != nil {
		return nil, fmt.Errorf("creating prompt: %w", err)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	a.logger.Debug().Str("model", a.model).Int("prompt_chars", len(prompt)).Msg("requesting insight extraction")

	text, tokens, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw := stripFences(text)

	var insights []Insight
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		return nil, &ResponseParseError{Detail: err.Error(), Raw: raw}
	}

	for i := range insights {
		if rice := insights[i].RiceScore; rice != nil {
			rice.Total = rice.Reach * rice.Impact * rice.Confidence / math.Max(rice.Effort, 1)
		}
	}

	a.logger.Debug().Int("insights", len(insights)).Int64("tokens", tokens).Msg("insight extraction complete")

	return &InsightReport{
		Insights:   insights,
		Model:      a.model,
		TokensUsed: tokens,
	}, nil
}

// Markdown renders the report for human-readable terminal output.
func (r *InsightReport) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Insights (%d)\n\n", len(r.Insights))
	for i, insight := range r.Insights {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, insight.Insight)
		if insight.Category != "" {
			fmt.Fprintf(&sb, "**Category:** %s", insight.Category)
			if insight.RiceScore != nil {
				fmt.Fprintf(&sb, " | **RICE:** %.1f", insight.RiceScore.Total)
			}
			sb.WriteString("\n\n")
		}
		if insight.TranscriptNugget != "" {
			fmt.Fprintf(&sb, "> %s\n\n", insight.TranscriptNugget)
		}
		if insight.WhyItMatters != "" {
			fmt.Fprintf(&sb, "%s\n\n", insight.WhyItMatters)
		}
		for _, step := range insight.ActionableSteps {
			fmt.Fprintf(&sb, "- %s\n", step)
		}
		if len(insight.ActionableSteps) > 0 {
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "_Model: %s, tokens used: %d_\n", r.Model, r.TokensUsed)

	return sb.String()
}

// truncateTranscript caps overly long transcripts and marks the cut so the
// model knows the text is incomplete.
func truncateTranscript(transcript string) string {
	if len(transcript) <= transcriptCharLimit {
		return transcript
	}
	return transcript[:transcriptCharLimit] + truncationNotice
}

// stripFences extracts the body of a markdown code fence. Models often wrap
// JSON output in ```json fences despite instructions not to.
func stripFences(s string) string {
	if _, after, found := strings.Cut(s, "```json"); found {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, found := strings.Cut(s, "```"); found {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(s)
}
