package internal

import (
	"errors"
	"strings"
	"time"
)

// ErrorKind classifies transcript fetch failures into a closed set. Every
// failure that reaches the output boundary carries exactly one of these.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindBlocked
	KindTranscriptsDisabled
	KindNoTranscriptFound
	KindVideoUnavailable
	KindRequestFailed
)

// String returns a short identifier for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindBlocked:
		return "blocked"
	case KindTranscriptsDisabled:
		return "transcripts_disabled"
	case KindNoTranscriptFound:
		return "no_transcript_found"
	case KindVideoUnavailable:
		return "video_unavailable"
	case KindRequestFailed:
		return "request_failed"
	default:
		return "unexpected"
	}
}

// FetchError is the failure variant of a transcript fetch outcome. Detail is
// only rendered for kinds that interpolate upstream information; the other
// kinds map to fixed caller-facing messages.
type FetchError struct {
	Kind   ErrorKind
	Detail string
}

func (e *FetchError) Error() string { return e.Message() }

// Message returns the caller-facing message for the JSON error envelope.
func (e *FetchError) Message() string {
	switch e.Kind {
	case KindBlocked:
		return "Request blocked: YouTube is rate limiting this server. Please try again later."
	case KindTranscriptsDisabled:
		return "Transcripts are disabled for this video"
	case KindNoTranscriptFound:
		return "No transcript found for this video"
	case KindVideoUnavailable:
		return "Video is unavailable"
	case KindRequestFailed:
		return "YouTube request failed: " + e.Detail
	case KindUnexpected:
		return "Unexpected error: " + e.Detail
	default:
		return "Unexpected error: " + e.Detail
	}
}

// AsFetchError coerces any error into a *FetchError. Errors produced outside
// the caption client are folded into the unexpected kind so the output
// boundary never sees an unclassified failure.
func AsFetchError(err error) *FetchError {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}
	return &FetchError{Kind: KindUnexpected, Detail: err.Error()}
}

// Snippet is a timestamped fragment of transcription. Start and Duration are
// seconds.
type Snippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is the success variant of a fetch outcome. FullText is the
// snippet texts joined with single spaces in snippet order.
type Transcript struct {
	VideoID      string    `json:"videoId"`
	Language     string    `json:"language"`
	LanguageCode string    `json:"languageCode"`
	IsGenerated  bool      `json:"isGenerated"`
	Snippets     []Snippet `json:"snippets"`
	FullText     string    `json:"fullText"`
}

// CaptionTrack is the raw upstream payload for one resolved caption track,
// before it is normalized into a Transcript.
type CaptionTrack struct {
	Language     string
	LanguageCode string
	IsGenerated  bool
	Snippets     []Snippet
}

// Retry defaults for transcript fetching.
const (
	DefaultMaxRetries  = 5
	DefaultBaseDelay   = 5 * time.Second
	DefaultJitterBound = 3 * time.Second
	DefaultLanguage    = "en"
)

// TranscriptRequest describes one transcript fetch. A request is built per
// invocation, consumed once, and discarded.
type TranscriptRequest struct {
	VideoID     string
	Languages   []string
	MaxRetries  int
	BaseDelay   time.Duration
	JitterBound time.Duration
}

// withDefaults fills unset fields so the retry loop never has to guard them.
func (r TranscriptRequest) withDefaults() TranscriptRequest {
	if len(r.Languages) == 0 {
		r.Languages = []string{DefaultLanguage}
	}
	if r.MaxRetries <= 0 {
		r.MaxRetries = DefaultMaxRetries
	}
	if r.BaseDelay <= 0 {
		r.BaseDelay = DefaultBaseDelay
	}
	if r.JitterBound <= 0 {
		r.JitterBound = DefaultJitterBound
	}
	return r
}

// SplitLanguages parses a comma-separated language preference list.
func SplitLanguages(csv string) []string {
	var languages []string
	for _, code := range strings.Split(csv, ",") {
		code = strings.TrimSpace(code)
		if code != "" {
			languages = append(languages, code)
		}
	}
	if len(languages) == 0 {
		return []string{DefaultLanguage}
	}
	return languages
}
