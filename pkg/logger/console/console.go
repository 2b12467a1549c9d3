package console

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// ConsoleLogger is a LoggerInstance backed by charmbracelet/log.
type ConsoleLogger struct {
	logger *log.Logger
}

// ConsoleLoggerParams configures NewConsoleLogger.
type ConsoleLoggerParams struct {
	Debug bool
	// Format is "text" (default), "json" or "logfmt".
	Format string
	// Prefix is printed in front of every line, e.g. the binary name.
	Prefix string
	// Output defaults to stderr. Stdout is reserved for the stdio MCP transport.
	Output io.Writer
}

// NewConsoleLogger creates a console logger.
func NewConsoleLogger(params ConsoleLoggerParams) *ConsoleLogger {
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}

	out := params.Output
	if out == nil {
		out = os.Stderr
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          params.Prefix,
		Formatter:       formatter(params.Format),
	})
	return &ConsoleLogger{logger: logger}
}

func formatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

func (c *ConsoleLogger) Log(message string, keyvals ...any) {
	c.logger.Print(message, keyvals...)
}

func (c *ConsoleLogger) Info(message string, keyvals ...any) {
	c.logger.Info(message, keyvals...)
}

func (c *ConsoleLogger) Warn(message string, keyvals ...any) {
	c.logger.Warn(message, keyvals...)
}

func (c *ConsoleLogger) Error(message string, keyvals ...any) {
	c.logger.Error(message, keyvals...)
}

func (c *ConsoleLogger) Debug(message string, keyvals ...any) {
	c.logger.Debug(message, keyvals...)
}

func (c *ConsoleLogger) Fatal(message string, keyvals ...any) {
	c.logger.Fatal(message, keyvals...)
}
