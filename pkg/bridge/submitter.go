package bridge

import (
	"context"
	"fmt"

	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/google/uuid"
)

// Submission is a composed ticket ready to be created.
type Submission struct {
	TicketTypeID string

	// ContactID is the resolved contact. When empty the user is referenced by external ID.
	ContactID string
	UserID    string

	Title       string
	Description string

	// ChannelID is written to ChannelAttribute when both are set.
	ChannelID        string
	ChannelAttribute string

	// IdempotencyKey is generated when empty.
	IdempotencyKey string
}

// Submitted is the result of creating a ticket.
type Submitted struct {
	TicketID string
	Status   string
	Ticket   *intercom.Ticket
}

// Submit creates the ticket.
func Submit(ctx context.Context, tickets TicketCreator, s *Submission) (*Submitted, error) {
	ref := intercom.ContactRef{ExternalID: s.UserID}
	if s.ContactID != "" {
		ref = intercom.ContactRef{ID: s.ContactID}
	}

	attrs := map[string]any{
		intercom.AttributeTitle:       s.Title,
		intercom.AttributeDescription: s.Description,
	}
	if s.ChannelAttribute != "" && s.ChannelID != "" {
		attrs[s.ChannelAttribute] = s.ChannelID
	}

	key := s.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	t, err := tickets.CreateTicket(ctx, &intercom.TicketCreate{
		TicketTypeID:     s.TicketTypeID,
		Contacts:         []intercom.ContactRef{ref},
		TicketAttributes: attrs,
	}, key)
	if err != nil {
		return nil, fmt.Errorf("error creating ticket: %w", err)
	}

	return &Submitted{
		TicketID: t.ID,
		Status:   t.TicketState.String(),
		Ticket:   t,
	}, nil
}
