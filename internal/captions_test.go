package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

const testTimedText = `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0" dur="1.5">hello world</text>
  <text start="1.5" dur="2">it&amp;#39;s &amp;quot;fine&amp;quot;</text>
  <text start="3.5" dur="1"></text>
  <text start="4.5" dur="2"><font color="#CCCCCC">tagged</font> text</text>
</transcript>`

// watchPage wraps a player response JSON blob the way the real page embeds it.
func watchPage(playerJSON string) string {
	return `<html><body><script>var ytInitialPlayerResponse = ` + playerJSON + `;</script></body></html>`
}

func playablePage(tracksJSON string) string {
	return watchPage(fmt.Sprintf(`{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[%s]}}}`, tracksJSON))
}

func newTestCaptionClient(t *testing.T, handler http.Handler) (*CaptionClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewCaptionClient(srv.Client(), zerolog.Nop())
	client.baseURL = srv.URL
	return client, srv
}

// watchServer serves the given page on /watch and the shared timedtext
// document everywhere else.
func watchServer(t *testing.T, page func(srv *httptest.Server) string) (*CaptionClient, *httptest.Server) {
	t.Helper()
	var srv *httptest.Server
	client, srv := newTestCaptionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/watch" {
			fmt.Fprint(w, page(srv))
			return
		}
		fmt.Fprint(w, testTimedText)
	}))
	return client, srv
}

func TestCaptionFetchSuccess(t *testing.T) {
	client, _ := watchServer(t, func(srv *httptest.Server) string {
		return playablePage(fmt.Sprintf(
			`{"baseUrl":"%[1]s/api/timedtext?lang=en&kind=asr","name":{"simpleText":"English (auto-generated)"},"languageCode":"en","kind":"asr"},
			 {"baseUrl":"%[1]s/api/timedtext?lang=en","name":{"simpleText":"English"},"languageCode":"en"}`, srv.URL))
	})

	track, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.IsGenerated {
		t.Error("manual track should win over the generated one")
	}
	if track.Language != "English" {
		t.Errorf("Language = %q, want %q", track.Language, "English")
	}
	if track.LanguageCode != "en" {
		t.Errorf("LanguageCode = %q, want %q", track.LanguageCode, "en")
	}

	wantTexts := []string{"hello world", `it's "fine"`, "tagged text"}
	if len(track.Snippets) != len(wantTexts) {
		t.Fatalf("expected %d snippets, got %d: %v", len(wantTexts), len(track.Snippets), track.Snippets)
	}
	for i, want := range wantTexts {
		if track.Snippets[i].Text != want {
			t.Errorf("snippet[%d].Text = %q, want %q", i, track.Snippets[i].Text, want)
		}
	}
	if track.Snippets[1].Start != 1.5 || track.Snippets[1].Duration != 2 {
		t.Errorf("snippet[1] timing = (%v, %v), want (1.5, 2)", track.Snippets[1].Start, track.Snippets[1].Duration)
	}
}

func TestCaptionFetchNoMatchingLanguage(t *testing.T) {
	client, _ := watchServer(t, func(srv *httptest.Server) string {
		return playablePage(fmt.Sprintf(`{"baseUrl":"%s/api/timedtext","name":{"simpleText":"Français"},"languageCode":"fr"}`, srv.URL))
	})

	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	if got := AsFetchError(err).Kind; got != KindNoTranscriptFound {
		t.Errorf("error kind = %v, want %v", got, KindNoTranscriptFound)
	}
}

func TestCaptionFetchVideoUnavailable(t *testing.T) {
	client, _ := watchServer(t, func(*httptest.Server) string {
		return watchPage(`{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`)
	})

	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", nil)
	if got := AsFetchError(err).Kind; got != KindVideoUnavailable {
		t.Errorf("error kind = %v, want %v", got, KindVideoUnavailable)
	}
}

func TestCaptionFetchNotPlayable(t *testing.T) {
	client, _ := watchServer(t, func(*httptest.Server) string {
		return watchPage(`{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm your age"}}`)
	})

	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", nil)
	fetchErr := AsFetchError(err)
	if fetchErr.Kind != KindUnexpected {
		t.Errorf("error kind = %v, want %v", fetchErr.Kind, KindUnexpected)
	}
	if fetchErr.Detail != "Sign in to confirm your age" {
		t.Errorf("Detail = %q, want the playability reason", fetchErr.Detail)
	}
}

func TestCaptionFetchTranscriptsDisabled(t *testing.T) {
	client, _ := watchServer(t, func(*httptest.Server) string {
		return watchPage(`{"playabilityStatus":{"status":"OK"}}`)
	})

	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", nil)
	if got := AsFetchError(err).Kind; got != KindTranscriptsDisabled {
		t.Errorf("error kind = %v, want %v", got, KindTranscriptsDisabled)
	}
}

func TestCaptionFetchBlockedOn429(t *testing.T) {
	client, _ := newTestCaptionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", nil)
	if got := AsFetchError(err).Kind; got != KindBlocked {
		t.Errorf("error kind = %v, want %v", got, KindBlocked)
	}
}

func TestCaptionFetchBlockedOnRecaptcha(t *testing.T) {
	client, _ := watchServer(t, func(*httptest.Server) string {
		return `<html><body><div class="g-recaptcha"></div></body></html>`
	})

	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", nil)
	if got := AsFetchError(err).Kind; got != KindBlocked {
		t.Errorf("error kind = %v, want %v", got, KindBlocked)
	}
}

func TestCaptionFetchUpstreamFailure(t *testing.T) {
	client, _ := newTestCaptionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", nil)
	fetchErr := AsFetchError(err)
	if fetchErr.Kind != KindRequestFailed {
		t.Errorf("error kind = %v, want %v", fetchErr.Kind, KindRequestFailed)
	}
	if fetchErr.Detail != "unexpected status 500" {
		t.Errorf("Detail = %q, want %q", fetchErr.Detail, "unexpected status 500")
	}
}

func TestCaptionFetchConsentInterstitial(t *testing.T) {
	var srv *httptest.Server
	consentPage := `<html><form action="https://consent.youtube.com/s"><input name="v" value="cb.20240101-01-p0"/></form></html>`

	client, srv := newTestCaptionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/watch" {
			fmt.Fprint(w, testTimedText)
			return
		}
		if cookie, err := r.Cookie("CONSENT"); err == nil && cookie.Value == "YES+cb.20240101-01-p0" {
			fmt.Fprint(w, playablePage(fmt.Sprintf(`{"baseUrl":"%s/api/timedtext","name":{"simpleText":"English"},"languageCode":"en"}`, srv.URL)))
			return
		}
		fmt.Fprint(w, consentPage)
	}))

	track, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(track.Snippets) == 0 {
		t.Error("expected snippets after passing the consent interstitial")
	}
}

func TestSelectTrack(t *testing.T) {
	tracks := []trackInfo{
		{LanguageCode: "de", Kind: "asr", Name: trackName{SimpleText: "Deutsch (auto)"}},
		{LanguageCode: "en", Kind: "asr", Name: trackName{SimpleText: "English (auto)"}},
		{LanguageCode: "en", Name: trackName{SimpleText: "English"}},
		{LanguageCode: "fr", Name: trackName{SimpleText: "Français"}},
	}

	tests := []struct {
		name      string
		languages []string
		want      string // selected track name, "" means nil
	}{
		{"manual beats generated", []string{"en"}, "English"},
		{"generated when only option", []string{"de"}, "Deutsch (auto)"},
		{"first preference wins", []string{"fr", "en"}, "Français"},
		{"fallback to second preference", []string{"es", "fr"}, "Français"},
		{"no match", []string{"ja"}, ""},
		{"empty preferences default to en", nil, "English"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := selectTrack(tracks, tt.languages)
			if tt.want == "" {
				if track != nil {
					t.Errorf("selectTrack() = %q, want nil", track.Name.text())
				}
				return
			}
			if track == nil {
				t.Fatalf("selectTrack() = nil, want %q", tt.want)
			}
			if got := track.Name.text(); got != tt.want {
				t.Errorf("selectTrack() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrackNameShapes(t *testing.T) {
	simple := trackName{SimpleText: "English"}
	if got := simple.text(); got != "English" {
		t.Errorf("simpleText name = %q, want %q", got, "English")
	}

	runs := trackName{Runs: []struct {
		Text string `json:"text"`
	}{{Text: "English"}}}
	if got := runs.text(); got != "English" {
		t.Errorf("runs name = %q, want %q", got, "English")
	}

	if got := (trackName{}).text(); got != "" {
		t.Errorf("empty name = %q, want empty", got)
	}
}

func TestExtractPlayerResponseMissing(t *testing.T) {
	_, err := extractPlayerResponse("<html><body>nothing here</body></html>")
	if got := AsFetchError(err).Kind; got != KindRequestFailed {
		t.Errorf("error kind = %v, want %v", got, KindRequestFailed)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"tags stripped", `<font color="#CCCCCC">sub</font> text`, "sub text"},
		{"double escaped entity", "it&amp;#39;s", "it's"},
		{"xml entity", "a &amp; b", "a & b"},
		{"whitespace trimmed", "  padded \n", "padded"},
		{"empty after strip", "<b></b>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := plainText(tt.body); got != tt.want {
				t.Errorf("plainText(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}
