package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsLikelyFilePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"unix path", "/etc/prompts/insights.txt", true},
		{"relative path", "prompts/insights.txt", true},
		{"windows path", `C:\prompts\insights.txt`, true},
		{"txt extension", "insights.txt", true},
		{"template extension", "insights.tmpl", true},
		{"short word", "insights", true},
		{"sentence", "Summarize the video for me", false},
		{"multiline prompt", "line one\nline two", false},
		{"long prompt string", strings.Repeat("analyze ", 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLikelyFilePath(tt.in); got != tt.want {
				t.Errorf("IsLikelyFilePath(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCreatePromptFromString(t *testing.T) {
	pm := NewPromptManager("", "Title: {{.Title}}\nBody: {{.Transcript}}")

	prompt, err := pm.CreatePrompt("My Video", "the transcript")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != "Title: My Video\nBody: the transcript" {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestCreatePromptFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.txt")
	if err := os.WriteFile(path, []byte("From file: {{.Title}}"), 0644); err != nil {
		t.Fatalf("writing template: %v", err)
	}

	pm := NewPromptManager("", path)
	prompt, err := pm.CreatePrompt("My Video", "ignored")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != "From file: My Video" {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestCreatePromptMissingFileFallsBackToString(t *testing.T) {
	// A path-looking setting whose file does not exist is treated as a
	// literal prompt string.
	pm := NewPromptManager("", "no/such/template.txt")
	prompt, err := pm.CreatePrompt("t", "tr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != "no/such/template.txt" {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestCreatePromptDefaultTemplate(t *testing.T) {
	// Empty config dir: the embedded default template is used.
	pm := NewPromptManager(t.TempDir(), "")

	prompt, err := pm.CreatePrompt("My Video", "the transcript body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "My Video") {
		t.Error("default prompt missing the title")
	}
	if !strings.Contains(prompt, "the transcript body") {
		t.Error("default prompt missing the transcript")
	}
	if strings.Contains(prompt, "{{.Title}}") || strings.Contains(prompt, "{{.Transcript}}") {
		t.Error("template placeholders were not expanded")
	}
}

func TestCreatePromptConfigDirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "prompt.txt"), []byte("override {{.Title}}"), 0644); err != nil {
		t.Fatalf("writing template: %v", err)
	}

	pm := NewPromptManager(dir, "")
	prompt, err := pm.CreatePrompt("My Video", "tr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != "override My Video" {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestCreatePromptInvalidTemplate(t *testing.T) {
	pm := NewPromptManager("", "broken {{.Title")
	if _, err := pm.CreatePrompt("t", "tr"); err == nil {
		t.Fatal("expected template parse error")
	}
}
