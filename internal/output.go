package internal

import (
	"encoding/json"
	"errors"
	"io"
)

// ErrorEnvelope is the failure document every command emits. RawResponse is
// only populated when a model response could not be parsed.
type ErrorEnvelope struct {
	Error       string `json:"error"`
	RawResponse string `json:"rawResponse,omitempty"`
}

// WriteJSON writes v to w as exactly one indented JSON document. HTML
// escaping is off so URLs and transcript text round-trip unchanged.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TranscriptEnvelope maps a fetch outcome onto the output document: the
// transcript on success, otherwise the message for the failure kind.
func TranscriptEnvelope(transcript *Transcript, err error) any {
	if err != nil {
		return ErrorEnvelope{Error: AsFetchError(err).Message()}
	}
	return transcript
}

// ChannelEnvelope maps a channel lookup outcome onto the output document.
func ChannelEnvelope(listing *ChannelListing, err error) any {
	if err != nil {
		return ErrorEnvelope{Error: err.Error()}
	}
	return listing
}

// VideoEnvelope maps a video lookup outcome onto the output document.
func VideoEnvelope(details *VideoDetails, err error) any {
	if err != nil {
		return ErrorEnvelope{Error: err.Error()}
	}
	return details
}

// InsightsEnvelope maps an analysis outcome onto the output document. Parse
// failures carry the raw model response; a missing API key is reported
// verbatim; anything else is prefixed as an analysis error.
func InsightsEnvelope(report *InsightReport, err error) any {
	if err == nil {
		return report
	}

	var parseErr *ResponseParseError
	if errors.As(err, &parseErr) {
		return ErrorEnvelope{Error: parseErr.Error(), RawResponse: parseErr.Raw}
	}
	if errors.Is(err, ErrMissingOpenAIKey) {
		return ErrorEnvelope{Error: err.Error()}
	}
	return ErrorEnvelope{Error: "Error analyzing transcript: " + err.Error()}
}
