package internal

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url with params", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"live url", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"legacy v url", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"whitespace trimmed", "  dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
		{"unrecognized passthrough", "not-a-video", "not-a-video"},
		{"unrelated url passthrough", "https://example.com/watch?v=x", "https://example.com/watch?v=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVideoID(tt.input); got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractChannelID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"channel id passthrough", "UCBJycsmduvYEL83R_U4JriQ", "UCBJycsmduvYEL83R_U4JriQ"},
		{"handle", "@mkbhd", "mkbhd"},
		{"channel url", "https://www.youtube.com/channel/UCBJycsmduvYEL83R_U4JriQ", "UCBJycsmduvYEL83R_U4JriQ"},
		{"handle url", "https://www.youtube.com/@mkbhd", "mkbhd"},
		{"handle url with tab", "https://www.youtube.com/@mkbhd/videos", "mkbhd"},
		{"custom url", "https://www.youtube.com/c/mkbhd", "mkbhd"},
		{"plain name passthrough", "mkbhd", "mkbhd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractChannelID(tt.input); got != tt.want {
				t.Errorf("ExtractChannelID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseISO8601Duration(t *testing.T) {
	tests := []struct {
		duration string
		want     int
	}{
		{"PT1H2M10S", 3722},
		{"PT2M", 120},
		{"PT45S", 45},
		{"PT1H", 3600},
		{"PT1M59S", 119},
		{"PT0S", 0},
		{"", 0},
		{"P1D", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			if got := ParseISO8601Duration(tt.duration); got != tt.want {
				t.Errorf("ParseISO8601Duration(%q) = %d, want %d", tt.duration, got, tt.want)
			}
		})
	}
}

func TestIsValidYouTubeID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"dQw4w9WgXcQ", true},
		{"a_b-c_d-e_f", true},
		{"short", false},
		{"waytoolongtobevalid", false},
		{"has space 1", false},
		{"dQw4w9WgXc?", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsValidYouTubeID(tt.id); got != tt.want {
				t.Errorf("IsValidYouTubeID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
