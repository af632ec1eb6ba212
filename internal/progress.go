package internal

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// UIManager handles terminal status output. Everything goes to stderr:
// stdout is reserved for the JSON document a command emits.
type UIManager interface {
	NewProgressBar(total int, description string) ProgressBar

	// Status messages
	Printf(format string, args ...any)
}

// ProgressBar interface abstracts progress bar operations
type ProgressBar interface {
	Set(current int)
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	quiet bool
}

// NewUIManager creates the UI manager; quiet suppresses all status output,
// which is the default when stderr is not a terminal.
func NewUIManager(quiet bool) UIManager {
	return &StandardUIManager{
		quiet: quiet,
	}
}

// Progress Bar Methods
func (ui *StandardUIManager) NewProgressBar(total int, description string) ProgressBar {
	if ui.quiet {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(int64(total))}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &VisibleProgressBar{bar: bar}
}

// Status Message Methods
func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Set(current int) {
	v.bar.Set(current)
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Finish() {
	v.bar.Finish()
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct {
	bar *progressbar.ProgressBar
}

func (s *SilentProgressBar) Set(current int) {
	s.bar.Set(current)
}

func (s *SilentProgressBar) Describe(description string) {
	// Do nothing for silent mode
}

func (s *SilentProgressBar) Finish() {
	s.bar.Finish()
}
