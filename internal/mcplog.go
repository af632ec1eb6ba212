package internal

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// NewMCPLogger creates the logger for MCP mode. Stdio carries the protocol
// and the host may capture stderr, so log lines go to a file under the cache
// directory instead. Any setup failure disables logging rather than
// interfering with the transport.
func NewMCPLogger(config *Config) zerolog.Logger {
	if !config.MCPLogEnabled {
		return zerolog.Nop()
	}

	if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
		return zerolog.Nop()
	}

	logPath := filepath.Join(config.CacheDir, "mcp.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop()
	}

	return zerolog.New(logFile).With().Timestamp().Logger()
}
