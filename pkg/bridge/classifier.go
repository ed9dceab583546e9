package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// defaultAuthorName is shown when a reply has no author name.
const defaultAuthorName = "Support"

// Event is a classified webhook notification. It is one of TicketReply, ConversationReply or Ignored.
type Event interface {
	event()
}

// Reply is an agent reply to relay to a channel.
type Reply struct {
	ChannelID  string
	TicketID   string
	AuthorName string
	Body       string
}

// TicketReply is an agent reply posted on a ticket.
type TicketReply struct {
	Reply
}

// ConversationReply is an agent reply posted on the conversation beneath a ticket.
type ConversationReply struct {
	Reply
	ConversationID string
}

// Ignored is a notification that is not relayed.
type Ignored struct {
	Reason string
}

func (TicketReply) event()       {}
func (ConversationReply) event() {}
func (Ignored) event()           {}

// ClassifierOption configures a Classifier.
type ClassifierOption func(c *Classifier)

// WithChannelAttribute reads the channel ID from the ticket attribute before falling back to the description
// marker.
func WithChannelAttribute(name string) ClassifierOption {
	return func(c *Classifier) {
		c.channelAttribute = name
	}
}

// WithStripMarkup sets whether reply bodies are converted from HTML to markdown.
func WithStripMarkup(strip bool) ClassifierOption {
	return func(c *Classifier) {
		c.stripMarkup = strip
	}
}

// Classifier decides which webhook notifications are relayed and to which channel.
type Classifier struct {
	l       *slog.Logger
	tickets TicketGetter

	channelAttribute string
	stripMarkup      bool
}

// NewClassifier creates a new Classifier. tickets is used when a notification does not embed the ticket
// description.
func NewClassifier(l *slog.Logger, tickets TicketGetter, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		l:           l,
		tickets:     tickets,
		stripMarkup: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify classifies the notification. Only admin or bot replies on a ticket, or on the conversation beneath
// one, whose ticket names a channel are relayed.
func (c *Classifier) Classify(ctx context.Context, n *intercom.Notification) Event {
	if n == nil {
		return Ignored{Reason: "empty notification"}
	}

	item := n.Data.Item
	var (
		part           *intercom.Part
		ticket         *intercom.Ticket
		fetchID        string
		conversation   bool
		conversationID string
	)

	switch n.Topic {
	case intercom.TopicTicketAdminReplied:
		part = item.TicketPart
		ticket = item.Ticket
		if ticket != nil {
			fetchID = ticket.ID
		}
	case intercom.TopicConversationAdminReplied, intercom.TopicConversationOperatorReplied:
		conversation = true
		part = item.ConversationPart
		if item.Conversation != nil {
			conversationID = item.Conversation.ID
			ticket = item.Conversation.Ticket
			fetchID = item.Conversation.ID
			if ticket != nil && ticket.ID != "" {
				fetchID = ticket.ID
			}
		}
	default:
		return Ignored{Reason: fmt.Sprintf("topic %q is not relayed", n.Topic)}
	}

	if part == nil {
		return Ignored{Reason: "notification has no reply part"}
	}
	if part.Author == nil || (part.Author.Type != intercom.AuthorAdmin && part.Author.Type != intercom.AuthorBot) {
		authorType := ""
		if part.Author != nil {
			authorType = part.Author.Type
		}
		return Ignored{Reason: fmt.Sprintf("reply author %q is not an agent", authorType)}
	}

	if ticket == nil || ticket.TicketAttributes == nil {
		if fetchID == "" || c.tickets == nil {
			return Ignored{Reason: "notification has no ticket"}
		}
		fetched, err := c.tickets.GetTicket(ctx, fetchID)
		if err != nil {
			c.l.Warn("Error fetching ticket for notification",
				slog.String(logging.KeyError, err.Error()),
				slog.String(logging.KeyTicketID, fetchID),
				slog.String(logging.KeyTopic, n.Topic),
			)
			return Ignored{Reason: fmt.Sprintf("ticket %s could not be fetched", fetchID)}
		}
		ticket = fetched
	}

	channelID, ok := c.channelID(ticket)
	if !ok {
		c.l.Warn("Ticket has no channel marker, dropping notification",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyTopic, n.Topic),
		)
		return Ignored{Reason: "ticket has no channel id"}
	}

	body := c.body(part.Body)
	if body == "" {
		return Ignored{Reason: "reply body is empty"}
	}

	author := strings.TrimSpace(part.Author.Name)
	if author == "" {
		author = defaultAuthorName
	}

	r := Reply{
		ChannelID:  channelID,
		TicketID:   ticket.ID,
		AuthorName: author,
		Body:       body,
	}
	if conversation {
		if conversationID == "" {
			conversationID = ticket.ID
		}
		return ConversationReply{Reply: r, ConversationID: conversationID}
	}
	return TicketReply{Reply: r}
}

func (c *Classifier) channelID(t *intercom.Ticket) (string, bool) {
	if c.channelAttribute != "" {
		if id := strings.TrimSpace(t.Attribute(c.channelAttribute)); id != "" {
			return id, true
		}
	}
	return ChannelIDFromDescription(t.Description())
}

func (c *Classifier) body(raw string) string {
	if !c.stripMarkup {
		return strings.TrimSpace(raw)
	}

	md, err := htmltomarkdown.ConvertString(raw)
	if err != nil {
		c.l.Debug("Error converting reply body to markdown, sending as is",
			slog.String(logging.KeyError, err.Error()))
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(md)
}
