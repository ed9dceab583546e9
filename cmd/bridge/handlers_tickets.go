package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Jacobbrewer1/intercord/cmd/bridge/config"
	"github.com/Jacobbrewer1/intercord/cmd/bridge/monitoring"
	"github.com/Jacobbrewer1/intercord/pkg/bridge"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
	"github.com/Jacobbrewer1/intercord/pkg/request"
)

const (
	headerTicketTypeID   = "X-Ticket-Type-Id"
	headerIdempotencyKey = "Idempotency-Key"

	ticketStatusCreated = "created_in_intercom"
	ticketStatusFailed  = "failed"
)

func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	tracked, err := a.store.CountBindings(r.Context())
	if err != nil {
		a.Error("Error counting bindings", slog.String(logging.KeyError, err.Error()))
	}

	botUser := a.botUser()
	if botUser == "" {
		botUser = "Not logged in"
	}

	request.RespondJSON(a.Logger, w, http.StatusOK, &statusResponse{
		Status:          "healthy",
		Service:         config.AppName,
		Version:         config.Version,
		BotReady:        a.botUser() != "",
		TrackedChannels: tracked,
		BotUser:         botUser,
	})
}

// bearerToken returns the token of a Bearer authorization header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

func (a *App) ticketsToIntercomHandler(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	ticketTypeID := r.Header.Get(headerTicketTypeID)
	if ticketTypeID == "" {
		ticketTypeID = config.TicketTypeID
	}
	if token == "" || ticketTypeID == "" {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, &ticketFailedResponse{
			Result: *request.NewFailure("Missing required headers: Authorization and X-Ticket-Type-Id", nil),
			Ticket: &ticketSummary{Status: ticketStatusFailed},
		})
		return
	}

	in := new(entities.Intake)
	if err := request.DecodeJSON(r, in); err != nil {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, &ticketFailedResponse{
			Result: *request.NewFailure("Invalid ticket data", err),
			Ticket: &ticketSummary{Status: ticketStatusFailed},
		})
		return
	}

	api, err := a.newIntercom(token)
	if err != nil {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, &ticketFailedResponse{
			Result: *request.NewFailure("Invalid Intercom credentials", err),
			Ticket: &ticketSummary{Status: ticketStatusFailed},
		})
		return
	}

	opened, err := a.opener.Open(r.Context(), api, &bridge.OpenRequest{
		TicketTypeID:   ticketTypeID,
		Intake:         in,
		IdempotencyKey: r.Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		monitoring.TicketsCreated.WithLabelValues("failed").Inc()

		status, res := http.StatusBadRequest, request.NewFailure("❌ Failed to create ticket in Intercom", err)
		if !bridge.IsValidation(err) {
			status, res = upstreamFailure("❌ Failed to create ticket in Intercom", err)
			a.Error("Error creating ticket",
				slog.String(logging.KeyError, err.Error()),
				slog.String("source_ticket_id", in.TicketID),
			)
		}
		request.RespondJSON(a.Logger, w, status, &ticketFailedResponse{
			Result: *res,
			Ticket: &ticketSummary{Status: ticketStatusFailed},
		})
		return
	}

	monitoring.TicketsCreated.WithLabelValues("created").Inc()
	request.RespondJSON(a.Logger, w, http.StatusOK, &ticketCreatedResponse{
		Result:           *request.NewSuccess("✅ Ticket created successfully in Intercom!"),
		IntercomTicketID: opened.TicketID,
		IntercomStatus:   opened.Status,
		Ticket: &ticketSummary{
			ID:        in.TicketID,
			DiscordID: in.TicketID,
			Status:    ticketStatusCreated,
			Panel:     in.PanelName,
		},
		User: &userSummary{
			Username:          in.Username,
			DiscordID:         in.UserID,
			IntercomContactID: opened.ContactID,
		},
	})
}

func (a *App) validateSecretsHandler(w http.ResponseWriter, r *http.Request) {
	req := new(validateSecretsRequest)
	if err := request.DecodeJSON(r, req); err != nil {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, &validateSecretsResponse{Error: err.Error()})
		return
	}
	if req.IntercomToken == "" || req.TicketTypeID == "" {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, &validateSecretsResponse{
			Error: "Missing required secrets: intercom_token and ticket_type_id",
		})
		return
	}

	api, err := a.newIntercom(req.IntercomToken)
	if err != nil {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, &validateSecretsResponse{Error: err.Error()})
		return
	}

	admin, err := api.Me(r.Context())
	if err != nil {
		a.Warn("Intercom token validation failed", slog.String(logging.KeyError, err.Error()))
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, &validateSecretsResponse{Error: validationMessage(err)})
		return
	}

	ticketType, err := api.GetTicketType(r.Context(), req.TicketTypeID)
	if err != nil {
		a.Warn("Intercom ticket type validation failed", slog.String(logging.KeyError, err.Error()))
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, &validateSecretsResponse{Error: validationMessage(err)})
		return
	}

	request.RespondJSON(a.Logger, w, http.StatusOK, &validateSecretsResponse{
		Valid:      true,
		Workspace:  admin.Workspace(),
		TicketType: ticketType.Name,
	})
}

// validationMessage is the upstream message for a failed credential check.
func validationMessage(err error) string {
	apiErr := new(intercom.APIError)
	if errors.As(err, &apiErr) && apiErr.Message() != "" {
		return apiErr.Message()
	}
	return "Invalid credentials"
}
