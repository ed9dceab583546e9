package monitoring

import (
	"fmt"

	"github.com/Jacobbrewer1/intercord/cmd/bridge/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalDiscordEvents is the total number of events.
	TotalDiscordEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_total_discord_events", config.AppName),
			Help: "Total number of events",
		},
		[]string{"event"},
	)

	// HttpTotalRequests is the total number of http requests.
	HttpTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_http_total_requests", config.AppName),
			Help: "Total number of http requests",
		},
		[]string{"path", "method", "status_code"},
	)

	// HttpRequestDuration is the duration of the http request.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: fmt.Sprintf("%s_http_request_duration", config.AppName),
			Help: "Duration of the http request",
		},
		[]string{"path", "method", "status_code"},
	)

	TotalDiscordGuilds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_total_discord_guilds", config.AppName),
			Help: "Total number of discord guilds",
		},
	)

	// TrackedChannels is the number of channels bound to a ticket.
	TrackedChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_tracked_channels", config.AppName),
			Help: "Number of channels bound to an Intercom ticket",
		},
	)

	// ChatRelayTotal counts chat messages by what happened to them.
	ChatRelayTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_chat_relay_total", config.AppName),
			Help: "Total number of chat messages by relay outcome",
		},
		[]string{"outcome"},
	)

	// WebhookTotal counts Intercom notifications by topic and classification.
	WebhookTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_webhook_total", config.AppName),
			Help: "Total number of Intercom notifications by topic and classification",
		},
		[]string{"topic", "event"},
	)

	// TicketsCreated counts ticket creations by result.
	TicketsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_tickets_created_total", config.AppName),
			Help: "Total number of Intercom ticket creations by result",
		},
		[]string{"result"},
	)

	// NoncriticalErrors counts failures of work done after the caller was answered.
	NoncriticalErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_noncritical_errors_total", config.AppName),
			Help: "Total number of background failures that did not affect a response",
		},
		[]string{"operation"},
	)
)
