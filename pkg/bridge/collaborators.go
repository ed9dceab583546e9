package bridge

import (
	"context"

	"github.com/Jacobbrewer1/intercord/pkg/intercom"
)

// Contacts looks up and creates contacts.
type Contacts interface {
	SearchContacts(ctx context.Context, field, value string) ([]intercom.Contact, error)
	CreateContact(ctx context.Context, create *intercom.ContactCreate) (*intercom.Contact, error)
}

// TicketCreator creates tickets.
type TicketCreator interface {
	CreateTicket(ctx context.Context, create *intercom.TicketCreate, idempotencyKey string) (*intercom.Ticket, error)
}

// TicketGetter fetches tickets.
type TicketGetter interface {
	GetTicket(ctx context.Context, id string) (*intercom.Ticket, error)
}

// Tickets is everything the bridge does with tickets.
type Tickets interface {
	TicketCreator
	TicketGetter
	SearchTickets(ctx context.Context, query *intercom.SearchQuery) ([]intercom.Ticket, error)
	UpdateTicket(ctx context.Context, id string, update *intercom.TicketUpdate) (*intercom.Ticket, error)
	ReplyToTicket(ctx context.Context, id string, reply *intercom.Reply) error
}

// Conversations replies to the conversation beneath a ticket.
type Conversations interface {
	ReplyToConversation(ctx context.Context, id string, reply *intercom.Reply) error
}

// Intercom is the full set of Intercom operations used by the bridge. *intercom.Client satisfies it.
type Intercom interface {
	Contacts
	Tickets
	Conversations
}

// Channel is a chat channel as seen by the relay.
type Channel struct {
	ID   string
	Name string

	// TextCapable is whether messages can be sent to the channel.
	TextCapable bool
}

// Chat is the chat platform. FetchChannel returns ErrNotFound for unknown channels.
type Chat interface {
	FetchChannel(ctx context.Context, channelID string) (*Channel, error)
	SendMessage(ctx context.Context, channelID, content string) error
}

var _ Intercom = (*intercom.Client)(nil)
