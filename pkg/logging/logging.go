package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	// KeyError is the key for an error in a log message.
	KeyError = "err"

	// KeyDal is the key for the data access layer that produced the log.
	KeyDal = "dal"

	// KeyChannelID is the key for a Discord channel ID.
	KeyChannelID = "channel_id"

	// KeyTicketID is the key for an Intercom ticket ID.
	KeyTicketID = "ticket_id"

	// KeyContactID is the key for an Intercom contact ID.
	KeyContactID = "contact_id"

	// KeyTopic is the key for an Intercom webhook topic.
	KeyTopic = "topic"
)

// envLogLevel is the environment variable for the log level.
const envLogLevel = `LOG_LEVEL`

// Name is the name of the application doing the logging.
type Name string

// Config is the configuration for the logger.
type Config struct {
	// appName is the name of the application.
	appName Name

	// level is the minimum level that is logged.
	level slog.Level
}

// NewConfig creates a new logging configuration for the application. The level is read from LOG_LEVEL and
// defaults to info.
func NewConfig(appName Name) *Config {
	return &Config{
		appName: appName,
		level:   parseLevel(os.Getenv(envLogLevel)),
	}
}

// Level returns the minimum level that is logged.
func (c *Config) Level() slog.Level {
	return c.level
}

// CommonLogger returns a JSON logger tagged with the application name and sets it as the default logger.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, fmt.Errorf("logging config is nil")
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: c.level == slog.LevelDebug,
		Level:     c.level,
	})

	l := slog.New(h).With(slog.String("app", string(c.appName)))
	slog.SetDefault(l)
	return l, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
