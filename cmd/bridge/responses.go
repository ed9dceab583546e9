package main

import (
	"errors"
	"net/http"

	"github.com/Jacobbrewer1/intercord/cmd/bridge/config"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/Jacobbrewer1/intercord/pkg/request"
)

type statusResponse struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	Version         string `json:"version"`
	BotReady        bool   `json:"bot_ready"`
	TrackedChannels int64  `json:"tracked_channels"`
	BotUser         string `json:"bot_user"`
}

type ticketSummary struct {
	ID        string `json:"id,omitempty"`
	DiscordID string `json:"discord_id,omitempty"`
	Status    string `json:"status"`
	Panel     string `json:"panel,omitempty"`
}

type userSummary struct {
	Username          string `json:"username,omitempty"`
	DiscordID         string `json:"discord_id"`
	IntercomContactID string `json:"intercom_contact_id,omitempty"`
}

type ticketCreatedResponse struct {
	request.Result
	IntercomTicketID string         `json:"intercom_ticket_id"`
	IntercomStatus   string         `json:"intercom_status"`
	Ticket           *ticketSummary `json:"ticket"`
	User             *userSummary   `json:"user"`
}

type ticketFailedResponse struct {
	request.Result
	Ticket *ticketSummary `json:"ticket"`
}

type validateSecretsRequest struct {
	IntercomToken string `json:"intercom_token"`
	TicketTypeID  string `json:"ticket_type_id"`
}

type validateSecretsResponse struct {
	Valid      bool   `json:"valid"`
	Workspace  string `json:"workspace,omitempty"`
	TicketType string `json:"ticket_type,omitempty"`
	Error      string `json:"error,omitempty"`
}

type sendToDiscordRequest struct {
	ChannelID  string `json:"channel_id"`
	Message    string `json:"message"`
	AuthorName string `json:"author_name"`
}

type channelRequest struct {
	ChannelID string `json:"discord_channel_id"`
}

type unregisterResponse struct {
	request.Result
	WasTracked bool `json:"was_tracked"`
}

type fetchAndRegisterRequest struct {
	TicketID  string `json:"ticket_id"`
	ChannelID string `json:"discord_channel_id"`
}

type fetchAndRegisterResponse struct {
	request.Result
	TicketID  string `json:"ticket_id"`
	ContactID string `json:"contact_id"`
	UserID    string `json:"user_id,omitempty"`
	Title     string `json:"title,omitempty"`
}

type closeTicketRequest struct {
	ChannelID string `json:"discord_channel_id"`
	TicketID  string `json:"ticket_id"`
	UserID    string `json:"user_id"`
	ContactID string `json:"intercom_contact_id"`
}

type closeTicketResponse struct {
	request.Result
	IntercomTicketID string `json:"intercom_ticket_id,omitempty"`
	Unregistered     bool   `json:"unregistered"`
}

type trackedChannelsResponse struct {
	Total    int                 `json:"total"`
	Channels []*entities.Binding `json:"channels"`
}

type webhookResponse struct {
	Received bool `json:"received"`
}

// upstreamFailure builds the failure for an Intercom error. The status and first error message are always
// returned; the raw body only when upstream debugging is enabled.
func upstreamFailure(message string, err error) (int, *request.Result) {
	res := request.NewFailure(message, err)

	apiErr := new(intercom.APIError)
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError, res
	}

	status := apiErr.StatusCode
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}

	if config.DebugUpstreamErrors {
		res.Details = apiErr.Body
	} else if msg := apiErr.Message(); msg != "" {
		res.Details = msg
	}
	return status, res
}
