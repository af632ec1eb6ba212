package internal

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

const (
	watchBaseURL = "https://www.youtube.com"
	// Plain browser agent; the watch page serves a different payload to
	// unknown clients.
	watchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var (
	consentFormMarker = `action="https://consent.youtube.com/s"`
	consentValueRE    = regexp.MustCompile(`name="v" value="(.*?)"`)
	recaptchaMarker   = `class="g-recaptcha"`
	markupTagRE       = regexp.MustCompile(`<[^>]+>`)
)

// CaptionClient retrieves caption tracks by scraping the public watch page
// and downloading the referenced timedtext document. It implements
// CaptionSource; every error it returns is a *FetchError.
type CaptionClient struct {
	http    *http.Client
	baseURL string
	logger  zerolog.Logger
	cookies []*http.Cookie
}

// NewCaptionClient creates a caption client over the given HTTP client.
func NewCaptionClient(httpClient *http.Client, logger zerolog.Logger) *CaptionClient {
	return &CaptionClient{
		http:    httpClient,
		baseURL: watchBaseURL,
		logger:  logger,
	}
}

// NewProxyHTTPClient returns the HTTP client used for caption traffic. When
// proxy mode is enabled, requests are routed through the local SOCKS
// forwarding endpoint.
func NewProxyHTTPClient(config *Config, logger zerolog.Logger) *http.Client {
	client := &http.Client{Timeout: config.RequestTimeout}
	if !config.UseTorProxy {
		return client
	}

	proxyURL, err := url.Parse("socks5://" + config.TorSocksAddr)
	if err != nil {
		logger.Warn().Err(err).Str("addr", config.TorSocksAddr).Msg("invalid SOCKS address, using direct connection")
		return client
	}

	logger.Debug().Str("proxy", proxyURL.String()).Msg("routing caption traffic through proxy")
	client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return client
}

// Fetch resolves and downloads the caption track for a video in the first
// matching preference-list language.
func (c *CaptionClient) Fetch(ctx context.Context, videoID string, languages []string) (*CaptionTrack, error) {
	page, err := c.watchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	player, err := extractPlayerResponse(page)
	if err != nil {
		return nil, err
	}

	tracks, err := availableTracks(player)
	if err != nil {
		return nil, err
	}

	track := selectTrack(tracks, languages)
	if track == nil {
		return nil, &FetchError{Kind: KindNoTranscriptFound}
	}

	snippets, err := c.timedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("video", videoID).
		Str("language", track.LanguageCode).
		Bool("generated", track.generated()).
		Int("snippets", len(snippets)).
		Msg("caption track fetched")

	return &CaptionTrack{
		Language:     track.Name.text(),
		LanguageCode: track.LanguageCode,
		IsGenerated:  track.generated(),
		Snippets:     snippets,
	}, nil
}

// watchPage downloads the watch page HTML, transparently passing the EU
// consent interstitial once by replaying with a consent cookie.
func (c *CaptionClient) watchPage(ctx context.Context, videoID string) (string, error) {
	page, err := c.get(ctx, c.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return "", err
	}

	if strings.Contains(page, consentFormMarker) {
		if err := c.createConsentCookie(page); err != nil {
			return "", err
		}
		page, err = c.get(ctx, c.baseURL+"/watch?v="+url.QueryEscape(videoID))
		if err != nil {
			return "", err
		}
		if strings.Contains(page, consentFormMarker) {
			return "", &FetchError{Kind: KindRequestFailed, Detail: "consent cookie was not accepted"}
		}
	}

	if strings.Contains(page, recaptchaMarker) {
		return "", &FetchError{Kind: KindBlocked}
	}

	return page, nil
}

func (c *CaptionClient) createConsentCookie(page string) error {
	match := consentValueRE.FindStringSubmatch(page)
	if match == nil {
		return &FetchError{Kind: KindRequestFailed, Detail: "failed to create consent cookie"}
	}
	c.cookies = append(c.cookies, &http.Cookie{Name: "CONSENT", Value: "YES+" + match[1]})
	return nil
}

// get performs one upstream request and classifies transport and status
// failures. HTTP 429 is the rate-limit signal and maps to the blocked kind.
func (c *CaptionClient) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{Kind: KindRequestFailed, Detail: err.Error()}
	}
	req.Header.Set("User-Agent", watchUserAgent)
	req.Header.Set("Accept-Language", "en-US")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &FetchError{Kind: KindRequestFailed, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &FetchError{Kind: KindBlocked}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{Kind: KindRequestFailed, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Kind: KindRequestFailed, Detail: err.Error()}
	}
	return string(body), nil
}

// playerResponse is the slice of the embedded player JSON the client needs.
type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []trackInfo `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type trackInfo struct {
	BaseURL      string    `json:"baseUrl"`
	Name         trackName `json:"name"`
	LanguageCode string    `json:"languageCode"`
	Kind         string    `json:"kind"`
}

func (t *trackInfo) generated() bool { return t.Kind == "asr" }

// trackName tolerates both payload shapes YouTube serves for track names.
type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n trackName) text() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}
	if len(n.Runs) > 0 {
		return n.Runs[0].Text
	}
	return ""
}

// extractPlayerResponse pulls the ytInitialPlayerResponse JSON blob out of
// the watch page HTML.
func extractPlayerResponse(page string) (*playerResponse, error) {
	split := strings.Split(page, "ytInitialPlayerResponse = ")
	if len(split) < 2 {
		return nil, &FetchError{Kind: KindRequestFailed, Detail: "player response not found in watch page"}
	}
	split = strings.Split(split[1], ";</script>")

	var player playerResponse
	if err := json.Unmarshal([]byte(split[0]), &player); err != nil {
		return nil, &FetchError{Kind: KindRequestFailed, Detail: "parsing player response: " + err.Error()}
	}
	return &player, nil
}

// availableTracks checks playability and returns the caption track list. A
// playable video with no caption data has transcripts disabled by its owner.
func availableTracks(player *playerResponse) ([]trackInfo, error) {
	switch player.PlayabilityStatus.Status {
	case "", "OK":
	case "ERROR":
		return nil, &FetchError{Kind: KindVideoUnavailable}
	default:
		detail := player.PlayabilityStatus.Reason
		if detail == "" {
			detail = "video is not playable (" + player.PlayabilityStatus.Status + ")"
		}
		return nil, &FetchError{Kind: KindUnexpected, Detail: detail}
	}

	tracks := player.Captions.Renderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, &FetchError{Kind: KindTranscriptsDisabled}
	}
	return tracks, nil
}

// selectTrack picks the first track matching the preference list, favoring
// manually created tracks over generated ones within each language.
func selectTrack(tracks []trackInfo, languages []string) *trackInfo {
	if len(languages) == 0 {
		languages = []string{DefaultLanguage}
	}
	for _, language := range languages {
		for i := range tracks {
			if tracks[i].LanguageCode == language && !tracks[i].generated() {
				return &tracks[i]
			}
		}
		for i := range tracks {
			if tracks[i].LanguageCode == language {
				return &tracks[i]
			}
		}
	}
	return nil
}

// timedTextDoc mirrors the timedtext XML: <transcript><text start dur>.
type timedTextDoc struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",innerxml"`
	} `xml:"text"`
}

// timedText downloads and decodes a caption track document into snippets.
func (c *CaptionClient) timedText(ctx context.Context, trackURL string) ([]Snippet, error) {
	body, err := c.get(ctx, trackURL)
	if err != nil {
		return nil, err
	}

	var doc timedTextDoc
	if err := xml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &FetchError{Kind: KindRequestFailed, Detail: "parsing timedtext: " + err.Error()}
	}

	snippets := make([]Snippet, 0, len(doc.Texts))
	for _, text := range doc.Texts {
		plain := plainText(text.Body)
		if plain == "" {
			continue
		}
		snippets = append(snippets, Snippet{
			Text:     plain,
			Start:    text.Start,
			Duration: text.Dur,
		})
	}
	return snippets, nil
}

// plainText strips markup tags and resolves the double entity escaping the
// timedtext format carries (XML entities wrapping HTML entities).
func plainText(body string) string {
	body = markupTagRE.ReplaceAllString(body, "")
	body = html.UnescapeString(html.UnescapeString(body))
	return strings.TrimSpace(body)
}
