package internal

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// CaptionSource fetches the caption track for a video in the first available
// of the requested languages. Implementations resolve exact-match versus
// fallback selection internally; the retry loop only forwards the preference
// list.
type CaptionSource interface {
	Fetch(ctx context.Context, videoID string, languages []string) (*CaptionTrack, error)
}

// IdentityRotator requests a fresh outbound network identity between blocked
// attempts. Rotation is best-effort: callers log failures and continue.
type IdentityRotator interface {
	Rotate(ctx context.Context) error
}

type noopRotator struct{}

func (noopRotator) Rotate(context.Context) error { return nil }

// NoopRotator returns a rotator that does nothing, used when proxy mode is
// off so the retry loop never branches on configuration.
func NoopRotator() IdentityRotator { return noopRotator{} }

// Fetcher retries blocked caption fetches with exponential backoff. All other
// failures return immediately.
type Fetcher struct {
	source  CaptionSource
	rotator IdentityRotator
	logger  zerolog.Logger
	sleep   func(time.Duration)
	jitter  func(bound time.Duration) time.Duration
}

// FetcherOption customizes Fetcher creation.
type FetcherOption func(*Fetcher)

// WithRotator sets the identity rotator used between blocked attempts.
func WithRotator(rotator IdentityRotator) FetcherOption {
	return func(f *Fetcher) {
		f.rotator = rotator
	}
}

// WithFetchLogger sets the logger for retry diagnostics.
func WithFetchLogger(logger zerolog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithSleep replaces the blocking wait between attempts.
func WithSleep(sleep func(time.Duration)) FetcherOption {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// WithJitter replaces the random jitter source.
func WithJitter(jitter func(bound time.Duration) time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.jitter = jitter
	}
}

// NewFetcher creates a transcript fetcher over the given caption source.
func NewFetcher(source CaptionSource, options ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:  source,
		rotator: NoopRotator(),
		logger:  zerolog.Nop(),
		sleep:   time.Sleep,
		jitter:  uniformJitter,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// uniformJitter samples uniformly from [0, bound). Jitter only ever extends
// the base delay.
func uniformJitter(bound time.Duration) time.Duration {
	if bound <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(bound)))
}

// Fetch runs the retry loop for one request. Attempts are strictly
// sequential: attempt N+1 never starts before attempt N's delay has elapsed.
// Only blocked (rate-limited) attempts are retried; the delay before attempt
// N+1 is BaseDelay*2^N plus uniform jitter.
func (f *Fetcher) Fetch(ctx context.Context, req TranscriptRequest) (*Transcript, error) {
	req = req.withDefaults()

	for attempt := 0; attempt < req.MaxRetries; attempt++ {
		track, err := f.source.Fetch(ctx, req.VideoID, req.Languages)
		if err == nil {
			return newTranscript(req.VideoID, track), nil
		}

		fetchErr := AsFetchError(err)
		if fetchErr.Kind != KindBlocked {
			f.logger.Debug().
				Str("video", req.VideoID).
				Stringer("kind", fetchErr.Kind).
				Msg("fetch failed")
			return nil, fetchErr
		}

		if attempt == req.MaxRetries-1 {
			f.logger.Warn().
				Str("video", req.VideoID).
				Int("attempts", req.MaxRetries).
				Msg("still blocked, giving up")
			return nil, fetchErr
		}

		if err := f.rotator.Rotate(ctx); err != nil {
			f.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("identity rotation failed")
		}

		delay := req.BaseDelay<<attempt + f.jitter(req.JitterBound)
		f.logger.Info().
			Str("video", req.VideoID).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("blocked, backing off")
		f.sleep(delay)
	}

	return nil, &FetchError{Kind: KindBlocked}
}

// newTranscript normalizes an upstream track into the outcome record. Snippet
// fields are copied verbatim; the full text is the space-join of the texts in
// snippet order, empty when there are no snippets.
func newTranscript(videoID string, track *CaptionTrack) *Transcript {
	snippets := make([]Snippet, len(track.Snippets))
	copy(snippets, track.Snippets)

	texts := make([]string, len(snippets))
	for i, snippet := range snippets {
		texts[i] = snippet.Text
	}

	return &Transcript{
		VideoID:      videoID,
		Language:     track.Language,
		LanguageCode: track.LanguageCode,
		IsGenerated:  track.IsGenerated,
		Snippets:     snippets,
		FullText:     strings.Join(texts, " "),
	}
}
