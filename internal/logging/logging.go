// Package logging builds the structured loggers used by the command line.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// DefaultTimeFormat is used when Config.TimeFormat is empty
const DefaultTimeFormat = "15:04:05"

// Config configures a logger
type Config struct {
	// Level is one of debug, info, warn or error
	Level string

	// JSON selects the JSON formatter instead of styled text
	JSON bool

	// Output defaults to os.Stderr
	Output io.Writer

	// TimeFormat defaults to DefaultTimeFormat
	TimeFormat string
}

// New builds a logger from cfg
func New(cfg Config) (*log.Logger, error) {
	level := log.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		parsed, err := log.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           level,
	})
	if cfg.JSON {
		logger.SetFormatter(log.JSONFormatter)
	} else {
		logger.SetFormatter(log.TextFormatter)
		logger.SetStyles(defaultStyles())
	}
	return logger, nil
}

// Discard returns a logger that writes nothing
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func defaultStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().SetString("DEBUG").Bold(true).Foreground(lipgloss.Color("63"))
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Bold(true).Foreground(lipgloss.Color("86"))
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Bold(true).Foreground(lipgloss.Color("192"))
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERROR").Bold(true).Foreground(lipgloss.Color("204"))
	styles.Keys["run"] = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styles.Keys["stage"] = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	return styles
}
