package entities

import "github.com/Jacobbrewer1/intercord/pkg/custom"

// Binding associates a Discord channel with the Intercom ticket it is bridged to.
type Binding struct {
	// ChannelID is the ID of the Discord channel.
	ChannelID string `json:"discord_channel_id" bson:"channel_id"`

	// TicketID is the ID of the Intercom ticket.
	TicketID string `json:"intercom_ticket_id" bson:"ticket_id"`

	// ContactID is the ID of the Intercom contact that opened the ticket. This can be empty when the
	// contact could not be resolved.
	ContactID string `json:"intercom_contact_id" bson:"contact_id"`

	// UserID is the ID of the Discord user that opened the ticket.
	UserID string `json:"user_id" bson:"user_id"`

	// RegisteredAt is when the binding was registered.
	RegisteredAt custom.Datetime `json:"registered_at" bson:"registered_at"`
}
