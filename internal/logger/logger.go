package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	// Safe default until Init runs, so early or test-time logging never
	// hits a nil writer.
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Config holds the configuration for the logger
type Config struct {
	Level  string
	Output string // "stdout", "stderr", or file path
	Pretty bool   // Enable pretty logging for development
}

// Init initializes the global logger
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		level, parseErr := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if parseErr != nil {
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var output io.Writer
		switch cfg.Output {
		case "", "stdout":
			output = os.Stdout
		case "stderr":
			output = os.Stderr
		default:
			dir := filepath.Dir(cfg.Output)
			if dir != "." && dir != string(filepath.Separator) {
				if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
					fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", mkErr)
					output = os.Stdout
					break
				}
			}

			file, openErr := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if openErr != nil {
				fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", openErr)
				output = os.Stdout
				break
			}
			output = file
		}

		if cfg.Pretty {
			logger = zerolog.New(zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: "2006-01-02 15:04:05",
			})
		} else {
			logger = zerolog.New(output)
		}

		logger = logger.With().
			Timestamp().
			Logger()

		zerolog.DefaultContextLogger = &logger
	})
	return err
}

// Get returns the logger instance
func Get() *zerolog.Logger {
	return &logger
}

// Helper functions for different log levels
func Debug() *zerolog.Event {
	return logger.Debug()
}

func Info() *zerolog.Event {
	return logger.Info()
}

func Warn() *zerolog.Event {
	return logger.Warn()
}

func Error() *zerolog.Event {
	return logger.Error()
}

func Fatal() *zerolog.Event {
	return logger.Fatal()
}

// WithError adds an error to the log context
func WithError(err error) *zerolog.Event {
	return logger.Error().Err(err)
}
