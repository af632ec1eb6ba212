package internal

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ExtractVideoID normalizes the supported video URL shapes down to the bare
// 11-character ID. Anything unrecognized passes through unchanged and is left
// for the upstream API to reject.
func ExtractVideoID(input string) string {
	input = strings.TrimSpace(input)

	if IsValidYouTubeID(input) {
		return input
	}

	if !strings.Contains(input, "youtube.com") && !strings.Contains(input, "youtu.be") {
		return input
	}

	markers := []string{"youtu.be/", "watch?v=", "/embed/", "/v/", "/shorts/", "/live/"}
	for _, marker := range markers {
		if _, rest, found := strings.Cut(input, marker); found {
			rest, _, _ = strings.Cut(rest, "?")
			rest, _, _ = strings.Cut(rest, "&")
			return rest
		}
	}

	return input
}

// ExtractChannelID normalizes channel URLs, @handles, and raw UC channel IDs.
// Identifiers that already look like channel IDs (or plain handles) pass
// through unchanged.
func ExtractChannelID(input string) string {
	input = strings.TrimSpace(input)

	if strings.HasPrefix(input, "UC") && len(input) == 24 {
		return input
	}

	if strings.HasPrefix(input, "@") {
		return input[1:]
	}

	if strings.Contains(input, "youtube.com") || strings.Contains(input, "youtu.be") {
		for _, marker := range []string{"/channel/", "/@", "/c/"} {
			if _, rest, found := strings.Cut(input, marker); found {
				rest, _, _ = strings.Cut(rest, "/")
				rest, _, _ = strings.Cut(rest, "?")
				return rest
			}
		}
	}

	return input
}

var isoDurationRE = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISO8601Duration converts the Data API's PT#H#M#S durations into total
// seconds. Unparseable input counts as zero.
func ParseISO8601Duration(duration string) int {
	if duration == "" {
		return 0
	}

	match := isoDurationRE.FindStringSubmatch(duration)
	if match == nil {
		return 0
	}

	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])

	return hours*3600 + minutes*60 + seconds
}

// IsValidYouTubeID checks if a string looks like a valid YouTube video ID
func IsValidYouTubeID(id string) bool {
	// YouTube video IDs are exactly 11 characters long
	if len(id) != 11 {
		return false
	}

	// YouTube video IDs contain only alphanumeric characters, hyphens, and underscores
	matched, _ := regexp.MatchString(`^[A-Za-z0-9_-]+$`, id)
	return matched
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dir ...string) error {
	for _, dir := range dir {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
