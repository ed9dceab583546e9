package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/intercord/pkg/bridge"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
	"github.com/Jacobbrewer1/intercord/pkg/request"
)

const msgNoIntercomToken = "No Intercom token configured"

func (a *App) registerTicketHandler(w http.ResponseWriter, r *http.Request) {
	b := new(entities.Binding)
	if err := request.DecodeJSON(r, b); err != nil {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, request.NewFailure("Invalid request", err))
		return
	}

	if err := bridge.Register(r.Context(), a.store, b); err != nil {
		a.respondBridgeError(w, "Error registering ticket", err)
		return
	}

	a.Info("Ticket channel registered",
		slog.String(logging.KeyChannelID, b.ChannelID),
		slog.String(logging.KeyTicketID, b.TicketID),
	)
	request.RespondJSON(a.Logger, w, http.StatusOK, request.NewSuccess("Ticket channel registered"))
}

func (a *App) unregisterTicketHandler(w http.ResponseWriter, r *http.Request) {
	req := new(channelRequest)
	if err := request.DecodeJSON(r, req); err != nil {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, request.NewFailure("Invalid request", err))
		return
	}

	removed, err := bridge.Unregister(r.Context(), a.store, req.ChannelID)
	if err != nil {
		a.respondBridgeError(w, "Error unregistering ticket", err)
		return
	}

	if removed {
		a.Info("Ticket channel unregistered", slog.String(logging.KeyChannelID, req.ChannelID))
	}
	request.RespondJSON(a.Logger, w, http.StatusOK, &unregisterResponse{
		Result:     *request.NewSuccess("Ticket channel unregistered"),
		WasTracked: removed,
	})
}

func (a *App) fetchAndRegisterHandler(w http.ResponseWriter, r *http.Request) {
	if a.api == nil {
		request.RespondJSON(a.Logger, w, http.StatusInternalServerError, request.NewFailure(msgNoIntercomToken, nil))
		return
	}

	req := new(fetchAndRegisterRequest)
	if err := request.DecodeJSON(r, req); err != nil {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, request.NewFailure("Invalid request", err))
		return
	}

	adopted, err := bridge.Adopt(r.Context(), a.api, a.store, req.TicketID, req.ChannelID)
	if errors.Is(err, bridge.ErrNoContact) {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, request.NewFailure("No contact found in ticket", err))
		return
	} else if err != nil {
		a.respondBridgeError(w, "Error fetching ticket", err)
		return
	}

	a.Info("Existing ticket registered",
		slog.String(logging.KeyChannelID, adopted.Binding.ChannelID),
		slog.String(logging.KeyTicketID, adopted.Binding.TicketID),
	)
	request.RespondJSON(a.Logger, w, http.StatusOK, &fetchAndRegisterResponse{
		Result:    *request.NewSuccess("Existing ticket registered for two-way sync"),
		TicketID:  adopted.Binding.TicketID,
		ContactID: adopted.Binding.ContactID,
		UserID:    adopted.Binding.UserID,
		Title:     adopted.Title,
	})
}

func (a *App) closeTicketHandler(w http.ResponseWriter, r *http.Request) {
	if a.closer == nil {
		request.RespondJSON(a.Logger, w, http.StatusInternalServerError, request.NewFailure(msgNoIntercomToken, nil))
		return
	}

	req := new(closeTicketRequest)
	if err := request.DecodeJSON(r, req); err != nil {
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, request.NewFailure("Invalid request", err))
		return
	}

	closed, err := a.closer.Close(r.Context(), &bridge.CloseRequest{
		ChannelID:      req.ChannelID,
		SourceTicketID: req.TicketID,
		UserID:         req.UserID,
		ContactID:      req.ContactID,
	})
	if errors.Is(err, bridge.ErrNotFound) && closed != nil {
		// Nothing to close is not a failure of the request.
		request.RespondJSON(a.Logger, w, http.StatusOK, &closeTicketResponse{
			Result:           *request.NewFailure("No matching ticket found", nil),
			IntercomTicketID: closed.TicketID,
			Unregistered:     closed.Unregistered,
		})
		return
	} else if err != nil {
		a.respondBridgeError(w, "Error closing ticket", err)
		return
	}

	request.RespondJSON(a.Logger, w, http.StatusOK, &closeTicketResponse{
		Result:           *request.NewSuccess("Ticket resolved"),
		IntercomTicketID: closed.TicketID,
		Unregistered:     closed.Unregistered,
	})
}

func (a *App) trackedChannelsHandler(w http.ResponseWriter, r *http.Request) {
	bindings, err := a.store.ListBindings(r.Context())
	if err != nil {
		a.Error("Error listing bindings", slog.String(logging.KeyError, err.Error()))
		request.RespondJSON(a.Logger, w, http.StatusInternalServerError, request.NewMessage("%s", request.ErrInternalServer.Error()))
		return
	}

	if bindings == nil {
		bindings = make([]*entities.Binding, 0)
	}
	request.RespondJSON(a.Logger, w, http.StatusOK, &trackedChannelsResponse{
		Total:    len(bindings),
		Channels: bindings,
	})
}

// respondBridgeError maps a bridge error to a response: validation errors are 400, missing things 404 and
// Intercom errors carry the upstream status.
func (a *App) respondBridgeError(w http.ResponseWriter, message string, err error) {
	switch {
	case bridge.IsValidation(err):
		request.RespondJSON(a.Logger, w, http.StatusBadRequest, request.NewFailure(message, err))
	case errors.Is(err, bridge.ErrNotFound):
		request.RespondJSON(a.Logger, w, http.StatusNotFound, request.NewFailure(message, err))
	default:
		a.Error(message, slog.String(logging.KeyError, err.Error()))
		status, res := upstreamFailure(message, err)
		request.RespondJSON(a.Logger, w, status, res)
	}
}
