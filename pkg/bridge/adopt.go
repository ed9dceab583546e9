package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/intercord/pkg/custom"
	"github.com/Jacobbrewer1/intercord/pkg/dataaccess"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
	"github.com/Jacobbrewer1/intercord/pkg/intercom"
)

// ErrNoContact is returned when adopting a ticket that has no contact.
var ErrNoContact = errors.New("no contact found in ticket")

// Adopted is the result of adopting an existing ticket.
type Adopted struct {
	Binding *entities.Binding
	Title   string
}

// Adopt binds the channel to an existing ticket. The contact comes from the ticket and the user ID from its
// description, which may not carry one.
func Adopt(ctx context.Context, tickets TicketGetter, store dataaccess.BindingDal, ticketID, channelID string) (*Adopted, error) {
	if err := requireFields(
		[2]string{"ticket_id", ticketID},
		[2]string{"discord_channel_id", channelID},
	); err != nil {
		return nil, err
	}

	t, err := tickets.GetTicket(ctx, ticketID)
	if intercom.IsNotFound(err) {
		return nil, fmt.Errorf("ticket %s: %w", ticketID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error fetching ticket: %w", err)
	}

	contactID := t.PrimaryContactID()
	if contactID == "" {
		return nil, ErrNoContact
	}

	userID, _ := UserIDFromDescription(t.Description())

	b := &entities.Binding{
		ChannelID:    channelID,
		TicketID:     ticketID,
		ContactID:    contactID,
		UserID:       userID,
		RegisteredAt: custom.Now(),
	}
	if err := store.SaveBinding(ctx, b); err != nil {
		return nil, fmt.Errorf("error saving binding: %w", err)
	}

	return &Adopted{
		Binding: b,
		Title:   t.Title(),
	}, nil
}
