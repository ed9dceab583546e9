package config

const (
	// AppName is the name of the application.
	AppName = "intercord"

	// Version is reported on the status endpoint.
	Version = "1.0.0"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvIntercomToken is the environment variable for the Intercom access token used by the relay.
	EnvIntercomToken = `INTERCOM_TOKEN`

	// EnvTicketTypeID is the environment variable for the default Intercom ticket type.
	EnvTicketTypeID = `INTERCOM_TICKET_TYPE_ID`

	// EnvIntercomBaseURL is the environment variable for the Intercom API base URL.
	EnvIntercomBaseURL = `INTERCOM_BASE_URL`

	// EnvReplyMode is the environment variable for where chat messages are posted, ticket or conversation.
	EnvReplyMode = `INTERCOM_REPLY_MODE`

	// EnvChannelAttribute is the environment variable for the ticket attribute holding the channel ID.
	EnvChannelAttribute = `INTERCOM_CHANNEL_ATTRIBUTE`

	// EnvIntercomRateLimit is the environment variable for the Intercom requests per second.
	EnvIntercomRateLimit = `INTERCOM_RATE_LIMIT`

	// EnvStripMarkup is the environment variable for converting Intercom HTML to markdown.
	EnvStripMarkup = `STRIP_MARKUP`

	// EnvDebugUpstreamErrors is the environment variable for returning full upstream error bodies.
	EnvDebugUpstreamErrors = `DEBUG_UPSTREAM_ERRORS`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvPort is the environment variable for the HTTP port.
	EnvPort = `PORT`
)

const (
	defaultPort          = "3000"
	defaultReplyMode     = "ticket"
	defaultRateLimit     = 10
	defaultStripMarkup   = true
	defaultDebugUpstream = false
	intercomRateBurst    = 5
	mongoConnectTimeout  = 10
)

var (
	// BotToken is the token for the bot.
	BotToken string

	// IntercomToken is the Intercom access token for the relay and the registry endpoints.
	IntercomToken string

	// TicketTypeID is the ticket type used when a request does not name one.
	TicketTypeID string

	// IntercomBaseURL is the Intercom API base URL.
	IntercomBaseURL string

	// ReplyMode is ticket or conversation.
	ReplyMode string

	// ChannelAttribute is the ticket attribute the channel ID is written to. Empty disables it.
	ChannelAttribute string

	// IntercomRateLimit is the Intercom requests per second. Zero disables pacing.
	IntercomRateLimit float64

	// IntercomRateBurst is the burst allowed above the rate limit.
	IntercomRateBurst = intercomRateBurst

	// StripMarkup is whether Intercom HTML is converted to markdown.
	StripMarkup = defaultStripMarkup

	// DebugUpstreamErrors is whether full upstream error bodies are returned to callers.
	DebugUpstreamErrors = defaultDebugUpstream

	// MongoUri is the URI for the MongoDB database. Bindings are kept in memory when empty.
	MongoUri string

	// Port is the port for the HTTP server.
	Port string
)
