package intercom

import (
	"encoding/json"
	"fmt"
)

// Webhook topics.
const (
	TopicTicketAdminReplied          = "ticket.admin.replied"
	TopicConversationAdminReplied    = "conversation.admin.replied"
	TopicConversationOperatorReplied = "conversation.operator.replied"
	TopicPing                        = "ping"
)

// Part author types.
const (
	AuthorAdmin = "admin"
	AuthorBot   = "bot"
	AuthorUser  = "user"
	AuthorLead  = "lead"
)

// Notification is a webhook delivery from Intercom.
type Notification struct {
	Type      string           `json:"type"`
	ID        string           `json:"id"`
	Topic     string           `json:"topic"`
	AppID     string           `json:"app_id"`
	Data      NotificationData `json:"data"`
	CreatedAt int64            `json:"created_at"`
}

// NotificationData wraps the item the notification is about.
type NotificationData struct {
	Type string           `json:"type"`
	Item NotificationItem `json:"item"`
}

// NotificationItem is the subject of a notification. Deliveries either nest the object and the part
// ({"ticket": {...}, "ticket_part": {...}}) or send the object itself with its parts attached. Both shapes
// are normalised here so that Ticket/TicketPart or Conversation/ConversationPart are set.
type NotificationItem struct {
	Type             string        `json:"type"`
	Ticket           *Ticket       `json:"ticket,omitempty"`
	TicketPart       *Part         `json:"ticket_part,omitempty"`
	Conversation     *Conversation `json:"conversation,omitempty"`
	ConversationPart *Part         `json:"conversation_part,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *NotificationItem) UnmarshalJSON(data []byte) error {
	type plain NotificationItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid notification item: %w", err)
	}

	switch {
	case p.Ticket == nil && p.Conversation == nil && p.Type == "ticket":
		t := new(Ticket)
		if err := json.Unmarshal(data, t); err != nil {
			return fmt.Errorf("invalid ticket item: %w", err)
		}
		p.Ticket = t
	case p.Ticket == nil && p.Conversation == nil && p.Type == "conversation":
		c := new(Conversation)
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("invalid conversation item: %w", err)
		}
		p.Conversation = c
	}

	// The newest part is the one the notification is about.
	if p.TicketPart == nil && p.Ticket != nil && p.Ticket.TicketParts != nil {
		if n := len(p.Ticket.TicketParts.TicketParts); n > 0 {
			p.TicketPart = &p.Ticket.TicketParts.TicketParts[n-1]
		}
	}
	if p.ConversationPart == nil && p.Conversation != nil && p.Conversation.ConversationParts != nil {
		if n := len(p.Conversation.ConversationParts.ConversationParts); n > 0 {
			p.ConversationPart = &p.Conversation.ConversationParts.ConversationParts[n-1]
		}
	}

	*i = NotificationItem(p)
	return nil
}
