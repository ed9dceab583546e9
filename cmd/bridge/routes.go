package main

import (
	"net/http"

	"github.com/Jacobbrewer1/intercord/pkg/request"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	PathStatus            = "/"
	PathHealth            = "/health"
	PathMetrics           = "/metrics"
	PathTicketsToIntercom = "/tickets-to-intercom"
	PathValidateSecrets   = "/validate-secrets"
	PathSendToDiscord     = "/send-to-discord"
	PathRegisterTicket    = "/register-ticket"
	PathUnregisterTicket  = "/unregister-ticket"
	PathFetchAndRegister  = "/fetch-and-register-ticket"
	PathCloseTicket       = "/close-ticket"
	PathTrackedChannels   = "/tracked-channels"
	PathIntercomWebhook   = "/intercom-webhook"
)

// availableEndpoints is listed in 404 responses.
var availableEndpoints = []string{
	"GET / - Status",
	"GET /health - Health check",
	"GET /metrics - Prometheus metrics",
	"POST /tickets-to-intercom - Create ticket",
	"POST /validate-secrets - Validate credentials",
	"POST /send-to-discord - Send a message to a channel",
	"POST /register-ticket - Track a channel",
	"POST /unregister-ticket - Stop tracking a channel",
	"POST /fetch-and-register-ticket - Track a channel for an existing ticket",
	"POST /close-ticket - Resolve a ticket and stop tracking its channel",
	"GET /tracked-channels - List tracked channels",
	"POST /intercom-webhook - Intercom notifications",
}

func (a *App) setupRoutes() {
	// PathMetrics is the path for metrics.
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// PathHealth is the path for health check.
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	a.setupBridgeRoutes()
}

// setupBridgeRoutes registers the bridge endpoints. They need nothing beyond the wired bridge services.
func (a *App) setupBridgeRoutes() {
	a.r.HandleFunc(PathStatus, middlewareHttp(a.statusHandler, a)).Methods(http.MethodGet)
	a.r.HandleFunc(PathTicketsToIntercom, middlewareHttp(a.ticketsToIntercomHandler, a)).Methods(http.MethodPost)
	a.r.HandleFunc(PathValidateSecrets, middlewareHttp(a.validateSecretsHandler, a)).Methods(http.MethodPost)
	a.r.HandleFunc(PathSendToDiscord, middlewareHttp(a.sendToDiscordHandler, a)).Methods(http.MethodPost)
	a.r.HandleFunc(PathRegisterTicket, middlewareHttp(a.registerTicketHandler, a)).Methods(http.MethodPost)
	a.r.HandleFunc(PathUnregisterTicket, middlewareHttp(a.unregisterTicketHandler, a)).Methods(http.MethodPost)
	a.r.HandleFunc(PathFetchAndRegister, middlewareHttp(a.fetchAndRegisterHandler, a)).Methods(http.MethodPost)
	a.r.HandleFunc(PathCloseTicket, middlewareHttp(a.closeTicketHandler, a)).Methods(http.MethodPost)
	a.r.HandleFunc(PathTrackedChannels, middlewareHttp(a.trackedChannelsHandler, a)).Methods(http.MethodGet)
	a.r.HandleFunc(PathIntercomWebhook, middlewareHttp(a.intercomWebhookHandler, a)).Methods(http.MethodPost)

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger, availableEndpoints...)

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}
