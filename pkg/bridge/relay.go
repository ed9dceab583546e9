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

// ReplyMode is where chat messages are posted on the Intercom side.
type ReplyMode string

const (
	// ReplyModeTicket replies on the ticket.
	ReplyModeTicket ReplyMode = "ticket"

	// ReplyModeConversation replies on the conversation beneath the ticket.
	ReplyModeConversation ReplyMode = "conversation"
)

// Valid reports whether the mode is known.
func (m ReplyMode) Valid() bool {
	return m == ReplyModeTicket || m == ReplyModeConversation
}

// maxMessageLength is the longest message the chat accepts.
const maxMessageLength = 2000

// Outcome is what happened to a chat message.
type Outcome int

const (
	// OutcomeSkipped means the message was not considered, for example because a bot wrote it.
	OutcomeSkipped Outcome = iota

	// OutcomeNotTracked means the channel is not bound to a ticket.
	OutcomeNotTracked

	// OutcomeRelayed means the message was posted to Intercom.
	OutcomeRelayed

	// OutcomeFailed means the channel is tracked but the message could not be posted.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNotTracked:
		return "not_tracked"
	case OutcomeRelayed:
		return "relayed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ChatMessage is a message written in a chat channel.
type ChatMessage struct {
	ChannelID string
	MessageID string
	AuthorID  string
	Content   string

	// FromBot is set for messages written by any bot account, including this one.
	FromBot bool
}

// Relay forwards messages between chat channels and Intercom.
type Relay struct {
	l             *slog.Logger
	store         dataaccess.BindingDal
	tickets       Tickets
	conversations Conversations
	chat          Chat
	mode          ReplyMode
}

// NewRelay creates a new Relay.
func NewRelay(l *slog.Logger, store dataaccess.BindingDal, api Intercom, chat Chat, mode ReplyMode) *Relay {
	if !mode.Valid() {
		mode = ReplyModeTicket
	}
	return &Relay{
		l:             l,
		store:         store,
		tickets:       api,
		conversations: api,
		chat:          chat,
		mode:          mode,
	}
}

// ToTicket posts a chat message as a user reply on the bound ticket. Bot messages are dropped before the
// binding is looked up, so the relay never echoes what it posted itself. Messages in untracked channels are
// not an error.
func (r *Relay) ToTicket(ctx context.Context, m *ChatMessage) (Outcome, error) {
	if m == nil || m.FromBot || strings.TrimSpace(m.Content) == "" {
		return OutcomeSkipped, nil
	}

	b, err := Lookup(ctx, r.store, m.ChannelID)
	if errors.Is(err, ErrNotFound) {
		return OutcomeNotTracked, nil
	} else if err != nil {
		return OutcomeFailed, err
	}

	reply := intercom.UserComment(m.Content, b.ContactID, b.UserID)

	switch r.mode {
	case ReplyModeConversation:
		// A ticket shares its ID with the conversation underneath it.
		if err := r.conversations.ReplyToConversation(ctx, b.TicketID, reply); err != nil {
			return OutcomeFailed, fmt.Errorf("error replying to conversation %s: %w", b.TicketID, err)
		}
	default:
		if err := r.tickets.ReplyToTicket(ctx, b.TicketID, reply); err != nil {
			return OutcomeFailed, fmt.Errorf("error replying to ticket %s: %w", b.TicketID, err)
		}
	}

	r.l.Debug("Message relayed to Intercom",
		slog.String(logging.KeyChannelID, m.ChannelID),
		slog.String(logging.KeyTicketID, b.TicketID),
	)
	return OutcomeRelayed, nil
}

// ToChat posts an agent reply in the channel. ErrNotFound is returned when the channel does not exist or
// cannot hold messages.
func (r *Relay) ToChat(ctx context.Context, channelID, author, body string) error {
	if err := requireFields(
		[2]string{"channel_id", channelID},
		[2]string{"message", body},
	); err != nil {
		return err
	}

	ch, err := r.chat.FetchChannel(ctx, channelID)
	if err != nil {
		return fmt.Errorf("error fetching channel %s: %w", channelID, err)
	}
	if !ch.TextCapable {
		return fmt.Errorf("channel %s is not text based: %w", channelID, ErrNotFound)
	}

	for _, chunk := range splitMessage(FormatForChat(author, body), maxMessageLength) {
		if err := r.chat.SendMessage(ctx, channelID, chunk); err != nil {
			return fmt.Errorf("error sending message to channel %s: %w", channelID, err)
		}
	}
	return nil
}

// Deliver relays a classified event. Ignored events are a no-op.
func (r *Relay) Deliver(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case TicketReply:
		return r.ToChat(ctx, e.ChannelID, e.AuthorName, e.Body)
	case ConversationReply:
		return r.ToChat(ctx, e.ChannelID, e.AuthorName, e.Body)
	case Ignored:
		return nil
	default:
		return fmt.Errorf("unknown event %T", ev)
	}
}

// FormatForChat formats an agent reply for the chat.
func FormatForChat(author, body string) string {
	if author == "" {
		author = defaultAuthorName
	}
	return "**" + author + " (Intercom):**\n" + body
}

// splitMessage splits s into chunks of at most limit runes, preferring to break at newlines.
func splitMessage(s string, limit int) []string {
	runes := []rune(s)
	if len(runes) <= limit {
		return []string{s}
	}

	chunks := make([]string, 0, len(runes)/limit+1)
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
