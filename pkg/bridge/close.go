package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/intercord/pkg/dataaccess"
	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
)

// StateResolved is the ticket state a closed ticket is moved to.
const StateResolved = "resolved"

// CloseRequest asks for the ticket behind a chat ticket to be resolved.
type CloseRequest struct {
	ChannelID string

	// SourceTicketID is the chat side ticket ID, matched against the Ticket ID marker.
	SourceTicketID string

	// UserID and ContactID identify the contact when the channel is not tracked.
	UserID    string
	ContactID string
}

// Closed is the result of closing a ticket.
type Closed struct {
	TicketID     string
	Unregistered bool
}

// Closer resolves tickets.
type Closer struct {
	l     *slog.Logger
	api   Intercom
	store dataaccess.BindingDal
}

// NewCloser creates a new Closer.
func NewCloser(l *slog.Logger, api Intercom, store dataaccess.BindingDal) *Closer {
	return &Closer{
		l:     l,
		api:   api,
		store: store,
	}
}

// Close finds the ticket for the request, resolves it and unregisters the channel. Finding the ticket is best
// effort: a tracked channel gives the ticket directly, otherwise the contact's tickets are searched for the
// Ticket ID marker. ErrNotFound is returned when no ticket matched; the channel is unregistered regardless.
func (c *Closer) Close(ctx context.Context, req *CloseRequest) (*Closed, error) {
	if req == nil {
		return nil, NewValidationError("discord_channel_id", "ticket_id")
	}
	if req.ChannelID == "" && req.SourceTicketID == "" {
		return nil, NewValidationError("discord_channel_id", "ticket_id")
	}

	res := new(Closed)
	contactID := req.ContactID

	if req.ChannelID != "" {
		b, err := Lookup(ctx, c.store, req.ChannelID)
		switch {
		case err == nil:
			res.TicketID = b.TicketID
			if contactID == "" {
				contactID = b.ContactID
			}
		case errors.Is(err, ErrNotFound):
		default:
			return nil, err
		}
	}

	if res.TicketID == "" && req.SourceTicketID != "" {
		id, err := c.search(ctx, contactID, req.UserID, req.SourceTicketID)
		if err != nil {
			return nil, err
		}
		res.TicketID = id
	}

	if req.ChannelID != "" {
		removed, err := Unregister(ctx, c.store, req.ChannelID)
		if err != nil {
			return nil, err
		}
		res.Unregistered = removed
	}

	if res.TicketID == "" {
		return res, fmt.Errorf("no ticket to close: %w", ErrNotFound)
	}

	if _, err := c.api.UpdateTicket(ctx, res.TicketID, &intercom.TicketUpdate{State: StateResolved}); err != nil {
		if intercom.IsNotFound(err) {
			return res, fmt.Errorf("ticket %s: %w", res.TicketID, ErrNotFound)
		}
		return res, fmt.Errorf("error resolving ticket: %w", err)
	}

	c.l.Info("Ticket resolved",
		slog.String(logging.KeyTicketID, res.TicketID),
		slog.String(logging.KeyChannelID, req.ChannelID),
	)
	return res, nil
}

// search returns the ID of the contact's ticket whose description ends with the Ticket ID marker.
func (c *Closer) search(ctx context.Context, contactID, userID, sourceTicketID string) (string, error) {
	if contactID == "" && userID != "" {
		found, err := c.api.SearchContacts(ctx, fieldExternalID, userID)
		if err != nil {
			return "", fmt.Errorf("error searching contacts: %w", err)
		}
		if len(found) > 0 {
			contactID = found[0].ID
		}
	}

	marker := TicketIDMarker(sourceTicketID)
	query := intercom.Contains(intercom.AttributeDescription, marker)
	if contactID != "" {
		query = intercom.And(intercom.Equals("contact_ids", contactID), query)
	}

	tickets, err := c.api.SearchTickets(ctx, query)
	if err != nil {
		return "", fmt.Errorf("error searching tickets: %w", err)
	}

	// The search matches substrings, so "Ticket ID: 1" also matches "Ticket ID: 12".
	for i := range tickets {
		if strings.HasSuffix(strings.TrimSpace(tickets[i].Description()), marker) {
			return tickets[i].ID, nil
		}
	}
	return "", nil
}
