package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/intercord/cmd/bridge/config"
	"github.com/Jacobbrewer1/intercord/cmd/bridge/monitoring"
	"github.com/Jacobbrewer1/intercord/pkg/bridge"
	"github.com/Jacobbrewer1/intercord/pkg/dataaccess"
	"github.com/Jacobbrewer1/intercord/pkg/discord"
	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const (
	// maxBackgroundTasks bounds the webhook relays and registrations running at once.
	maxBackgroundTasks = 32

	shutdownTimeout = 10 * time.Second
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the application logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session
}

// intercomAPI is the Intercom client as used by the handlers.
type intercomAPI interface {
	bridge.Intercom
	Me(ctx context.Context) (*intercom.Admin, error)
	GetTicketType(ctx context.Context, id string) (*intercom.TicketType, error)
}

// intercomFactory creates a client for an access token.
type intercomFactory func(token string) (intercomAPI, error)

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	// store holds the channel bindings.
	store dataaccess.BindingDal

	// api is the Intercom client for the configured token. It is nil when no token is configured.
	api intercomAPI

	// newIntercom creates clients for tokens supplied by callers.
	newIntercom intercomFactory

	chat       bridge.Chat
	tasks      *bridge.Tasks
	opener     *bridge.Opener
	classifier *bridge.Classifier
	relay      *bridge.Relay
	closer     *bridge.Closer
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		Logger: l,
		r:      r,
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	if err := a.setup(); err != nil {
		return fmt.Errorf("error setting up bridge: %w", err)
	}

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
	})

	a.RegisterDiscordHandlers()

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Info("Starting HTTP server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error running http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Info("Received shutdown signal")
		return a.ShutdownHook()
	})
	return g.Wait()
}

func (a *App) ShutdownHook() error {
	// Reset the gauges, they are rebuilt on start.
	monitoring.TotalDiscordGuilds.Set(0)
	monitoring.TrackedChannels.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.svr.Shutdown(ctx); err != nil {
		a.Error("Error shutting down http server", slog.String(logging.KeyError, err.Error()))
	}

	// Let webhook relays and registrations that are already running finish.
	a.tasks.Wait()

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}

	if dataaccess.MongoDB != nil {
		if err := dataaccess.MongoDB.Disconnect(ctx); err != nil {
			return fmt.Errorf("error disconnecting from mongo: %w", err)
		}
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	// Message content is needed to relay what users write.
	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent)

	if a.eventNotifier == nil {
		// Create event notifier. It is buffered to prevent blocking.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

// setup builds the bridge from the parsed configuration.
func (a *App) setup() error {
	if dataaccess.MongoDB != nil {
		a.Info("Using MongoDB for channel bindings")
		a.store = newGaugedStore(a.Logger, dataaccess.NewMongoBindingDal(a.Logger, dataaccess.MongoDB))
	} else {
		a.store = newGaugedStore(a.Logger, dataaccess.NewMemoryBindingDal(a.Logger))
	}

	opts := []intercom.Option{
		intercom.WithRateLimit(config.IntercomRateLimit, config.IntercomRateBurst),
	}
	if config.IntercomBaseURL != "" {
		opts = append(opts, intercom.WithBaseURL(config.IntercomBaseURL))
	}
	a.newIntercom = newClientCache(func(token string) (intercomAPI, error) {
		c, err := intercom.NewClient(token, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}).get

	if config.IntercomToken != "" {
		api, err := a.newIntercom(config.IntercomToken)
		if err != nil {
			return fmt.Errorf("error creating intercom client: %w", err)
		}
		a.api = api
	}

	a.chat = discord.NewChat(a.s)
	a.wire(bridge.ReplyMode(config.ReplyMode), config.ChannelAttribute, config.StripMarkup)
	return nil
}

// wire builds the bridge services over the store, clients and chat already set on the app.
func (a *App) wire(mode bridge.ReplyMode, channelAttribute string, stripMarkup bool) {
	a.tasks = bridge.NewTasks(maxBackgroundTasks, bridge.ReporterFunc(a.reportNoncritical))
	a.opener = bridge.NewOpener(a.Logger, a.store, a.tasks, channelAttribute)

	var tickets bridge.TicketGetter
	if a.api != nil {
		tickets = a.api
		a.closer = bridge.NewCloser(a.Logger, a.api, a.store)
	}
	a.classifier = bridge.NewClassifier(a.Logger, tickets,
		bridge.WithChannelAttribute(channelAttribute),
		bridge.WithStripMarkup(stripMarkup),
	)
	a.relay = bridge.NewRelay(a.Logger, a.store, a.api, a.chat, mode)
}

// reportNoncritical records a failure of background work.
func (a *App) reportNoncritical(_ context.Context, operation string, err error) {
	monitoring.NoncriticalErrors.WithLabelValues(operation).Inc()
	a.Error("Background operation failed",
		slog.String("operation", operation),
		slog.String(logging.KeyError, err.Error()),
	)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:              ":" + config.Port,
		Handler:           a.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *App) RegisterDiscordHandlers() {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Chat to ticket relay.
	a.s.AddHandler(a.messageCreateHandler())
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

// botUser returns the tag of the logged in bot, or empty when not logged in.
func (a *App) botUser() string {
	if a.s == nil || a.s.State == nil || a.s.State.User == nil {
		return ""
	}
	u := a.s.State.User
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}
