// Package logging builds the application logger
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tabgroups/tabgroups/internal/domain"
)

// Special values for logging.output
const (
	OutputStderr  = "stderr"
	OutputStdout  = "stdout"
	OutputDiscard = "discard"
)

// Levels lists the accepted logging.level values
var Levels = []string{"debug", "info", "warn", "error"}

// Formats lists the accepted logging.format values
var Formats = []string{"text", "json", "logfmt"}

// New builds a logger from cfg. The returned closer releases the log file,
// if one was opened.
func New(cfg domain.LoggingConfig) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	w, closer, err := openOutput(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
		Prefix:          "tabgroups",
	})

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
		if w == os.Stderr {
			logger.SetStyles(terminalStyles())
		}
	}

	return logger, closer, nil
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func openOutput(output string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", OutputStderr:
		return os.Stderr, nopCloser{}, nil
	case OutputStdout:
		return os.Stdout, nopCloser{}, nil
	case OutputDiscard:
		return io.Discard, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func terminalStyles() *log.Styles {
	styles := log.DefaultStyles()
	if os.Getenv("NO_COLOR") != "" {
		return styles
	}
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Foreground(lipgloss.Color("243")).
		Bold(true)
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(lipgloss.Color("62")).
		Bold(true)
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("226")).
		Bold(true)
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Foreground(lipgloss.Color("196")).
		Bold(true)
	return styles
}
