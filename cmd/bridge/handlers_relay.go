package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/intercord/cmd/bridge/monitoring"
	"github.com/Jacobbrewer1/intercord/pkg/bridge"
	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
	"github.com/Jacobbrewer1/intercord/pkg/request"
)

// OperationWebhookRelay names the background relay of a webhook notification.
const OperationWebhookRelay = "webhook_relay"

func (a *App) sendToDiscordHandler(w http.ResponseWriter, r *http.Request) {
	req := new(sendToDiscordRequest)
	if err := request.DecodeJSON(r, req); err != nil {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, request.NewFailure("Invalid request", err))
		return
	}

	if err := a.relay.ToChat(r.Context(), req.ChannelID, req.AuthorName, req.Message); err != nil {
		if errors.Is(err, bridge.ErrNotFound) {
			request.RespondJSON(a.Logger, w, http.StatusNotFound, request.NewFailure("Channel not found", err))
			return
		}
		a.respondBridgeError(w, "Error sending to Discord", err)
		return
	}

	request.RespondJSON(a.Logger, w, http.StatusOK, request.NewSuccess("Message sent to Discord"))
}

// intercomWebhookHandler acknowledges the notification and relays it in the background. The response never
// depends on the relay, so Intercom does not redeliver on relay failures.
func (a *App) intercomWebhookHandler(w http.ResponseWriter, r *http.Request) {
	n := new(intercom.Notification)
	if err := request.DecodeJSON(r, n); err != nil {
		a.Warn("Invalid Intercom notification", slog.String(logging.KeyError, err.Error()))
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, request.NewFailure("Invalid notification", err))
		return
	}

	request.RespondJSON(a.Logger, w, http.StatusOK, &webhookResponse{Received: true})

	a.tasks.Go(r.Context(), OperationWebhookRelay, func(ctx context.Context) error {
		return a.handleNotification(ctx, n)
	})
}

func (a *App) handleNotification(ctx context.Context, n *intercom.Notification) error {
	ev := a.classifier.Classify(ctx, n)
	monitoring.WebhookTotal.WithLabelValues(n.Topic, eventName(ev)).Inc()

	if ignored, ok := ev.(bridge.Ignored); ok {
		a.Debug("Intercom notification ignored",
			slog.String(logging.KeyTopic, n.Topic),
			slog.String("reason", ignored.Reason),
		)
		return nil
	}

	if err := a.relay.Deliver(ctx, ev); err != nil {
		return fmt.Errorf("error relaying %s notification: %w", n.Topic, err)
	}
	return nil
}

func eventName(ev bridge.Event) string {
	switch ev.(type) {
	case bridge.TicketReply:
		return "ticket_reply"
	case bridge.ConversationReply:
		return "conversation_reply"
	default:
		return "ignored"
	}
}
