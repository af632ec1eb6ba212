package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// PromptData for template injection
type PromptData struct {
	Title      string
	Transcript string
}

// PromptManager handles loading and processing prompt templates
type PromptManager struct {
	promptFile   string
	promptString string
	configDir    string
}

// NewPromptManager creates a new prompt manager
func NewPromptManager(configDir, promptSetting string) *PromptManager {
	pm := &PromptManager{
		configDir: configDir,
	}

	// Configure prompt based on config setting
	if promptSetting != "" {
		if IsLikelyFilePath(promptSetting) && FileExists(promptSetting) {
			pm.promptFile = promptSetting
		} else {
			pm.promptString = promptSetting
		}
	}

	return pm
}

// CreatePrompt builds the insight extraction prompt for a titled transcript
func (pm *PromptManager) CreatePrompt(title, transcript string) (string, error) {
	var tmplContent string

	if pm.promptString != "" {
		// Use custom prompt string
		tmplContent = pm.promptString
	} else if pm.promptFile != "" {
		content, err := os.ReadFile(pm.promptFile)
		if err != nil {
			return "", fmt.Errorf("reading prompt template: %w", err)
		}
		tmplContent = string(content)
	} else {
		// Use default prompt from config directory; the file is copied
		// there at startup, fall back to the embedded copy if missing.
		content, err := os.ReadFile(filepath.Join(pm.configDir, "prompt.txt"))
		if err != nil {
			content, err = defaultFS.ReadFile("prompt.txt")
			if err != nil {
				return "", fmt.Errorf("reading prompt template: %w", err)
			}
		}
		tmplContent = string(content)
	}

	return pm.buildPromptFromTemplate(tmplContent, title, transcript)
}

// buildPromptFromTemplate builds the model prompt from template content
func (pm *PromptManager) buildPromptFromTemplate(templateContent, title, transcript string) (string, error) {
	// Parse the template
	tmpl, err := template.New("prompt").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	data := PromptData{
		Title:      title,
		Transcript: transcript,
	}

	// Execute the template
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}

	return buf.String(), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	// Check for common file path indicators
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	// Check for common file extensions
	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// If it's longer than 200 characters, it's likely a prompt string
	if len(s) > 200 {
		return false
	}

	// Default to treating as file path if it doesn't contain spaces and newlines
	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
