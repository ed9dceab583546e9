package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Jacobbrewer1/intercord/pkg/dataaccess"
	"github.com/Jacobbrewer1/intercord/pkg/dataaccess/connection"
	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file in the working directory into the environment. Variables that are already
// set are kept. A missing file is not an error.
func LoadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// Parse reads the configuration from the environment. LoadEnvFile must have been called first for .env
// values to be seen.
func Parse(l *slog.Logger) error {
	if envBT := os.Getenv(EnvBotToken); envBT != "" {
		l.Debug("Found bot token in environment", slog.String("key", EnvBotToken))
		BotToken = envBT
	}

	if envIT := os.Getenv(EnvIntercomToken); envIT != "" {
		l.Debug("Found Intercom token in environment", slog.String("key", EnvIntercomToken))
		IntercomToken = envIT
	}

	TicketTypeID = os.Getenv(EnvTicketTypeID)
	IntercomBaseURL = os.Getenv(EnvIntercomBaseURL)
	ChannelAttribute = strings.TrimSpace(os.Getenv(EnvChannelAttribute))

	ReplyMode = strings.ToLower(strings.TrimSpace(os.Getenv(EnvReplyMode)))
	switch ReplyMode {
	case "":
		ReplyMode = defaultReplyMode
	case "ticket", "conversation":
	default:
		return fmt.Errorf("invalid %s %q, must be ticket or conversation", EnvReplyMode, ReplyMode)
	}

	IntercomRateLimit = defaultRateLimit
	if envRL := os.Getenv(EnvIntercomRateLimit); envRL != "" {
		rl, err := strconv.ParseFloat(envRL, 64)
		if err != nil || rl < 0 {
			return fmt.Errorf("invalid %s %q", EnvIntercomRateLimit, envRL)
		}
		IntercomRateLimit = rl
	}

	var err error
	if StripMarkup, err = parseBool(EnvStripMarkup, defaultStripMarkup); err != nil {
		return err
	}
	if DebugUpstreamErrors, err = parseBool(EnvDebugUpstreamErrors, defaultDebugUpstream); err != nil {
		return err
	}

	if envPort := os.Getenv(EnvPort); envPort != "" {
		l.Debug("Found port in environment", slog.String("key", EnvPort))
		Port = envPort
	} else {
		// Default to 3000 if not provided.
		Port = defaultPort
		l.Info("No port provided in environment, defaulting to "+defaultPort, slog.String("key", EnvPort))
	}

	if BotToken == "" {
		return fmt.Errorf("%s is required", EnvBotToken)
	}
	if IntercomToken == "" {
		l.Warn("No Intercom token provided, chat messages will not be relayed", slog.String("key", EnvIntercomToken))
	}

	if envMongoUri := os.Getenv(EnvMongoUri); envMongoUri != "" {
		l.Debug("Found MongoDB URI in environment", slog.String("key", EnvMongoUri))
		MongoUri = envMongoUri
		if err := connectMongo(l); err != nil {
			return err
		}
	} else {
		l.Info("No MongoDB URI provided, channel bindings are kept in memory", slog.String("key", EnvMongoUri))
	}

	return nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func connectMongo(l *slog.Logger) error {
	mongoConn := new(connection.MongoDB)
	mongoConn.ConnectionString = MongoUri

	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout*time.Second)
	defer cancel()

	db, err := mongoConn.Connect(ctx)
	if err != nil {
		return fmt.Errorf("error connecting to mongo: %w", err)
	} else if db == nil {
		return errors.New("mongo client came back nil")
	}

	dataaccess.MongoDB = db

	l.Debug("Connected to MongoDB", slog.String("key", EnvMongoUri))
	return nil
}
