package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")
	return l
}

type replyCall struct {
	id    string
	reply *intercom.Reply
}

// fakeIntercom is an in memory Intercom workspace.
type fakeIntercom struct {
	mtx sync.Mutex

	contacts []intercom.Contact
	tickets  map[string]*intercom.Ticket

	// searchResults is returned by SearchTickets.
	searchResults []intercom.Ticket

	searchContactsErr error
	createContactErr  error
	createTicketErr   error
	replyErr          error

	calls         []string
	created       []*intercom.TicketCreate
	keys          []string
	ticketQueries []*intercom.SearchQuery
	ticketReplies []replyCall
	convReplies   []replyCall
	updates       map[string]*intercom.TicketUpdate
}

func newFakeIntercom() *fakeIntercom {
	return &fakeIntercom{
		tickets: make(map[string]*intercom.Ticket),
		updates: make(map[string]*intercom.TicketUpdate),
	}
}

func (f *fakeIntercom) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeIntercom) SearchContacts(_ context.Context, field, value string) ([]intercom.Contact, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.record("search_contacts:" + field)

	if f.searchContactsErr != nil {
		return nil, f.searchContactsErr
	}

	found := make([]intercom.Contact, 0)
	for _, c := range f.contacts {
		switch field {
		case fieldEmail:
			if c.Email == value {
				found = append(found, c)
			}
		case fieldExternalID:
			if c.ExternalID == value {
				found = append(found, c)
			}
		}
	}
	return found, nil
}

func (f *fakeIntercom) CreateContact(_ context.Context, create *intercom.ContactCreate) (*intercom.Contact, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.record("create_contact")

	if f.createContactErr != nil {
		return nil, f.createContactErr
	}

	c := intercom.Contact{
		ID:         fmt.Sprintf("contact-%d", len(f.contacts)+1),
		ExternalID: create.ExternalID,
		Email:      create.Email,
		Name:       create.Name,
		Role:       create.Role,
	}
	f.contacts = append(f.contacts, c)
	return &c, nil
}

func (f *fakeIntercom) CreateTicket(_ context.Context, create *intercom.TicketCreate, key string) (*intercom.Ticket, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.record("create_ticket")

	if f.createTicketErr != nil {
		return nil, f.createTicketErr
	}

	f.created = append(f.created, create)
	f.keys = append(f.keys, key)

	t := &intercom.Ticket{
		Type:             "ticket",
		ID:               fmt.Sprintf("ticket-%d", len(f.created)),
		TicketState:      intercom.TicketState{Category: "submitted"},
		TicketAttributes: create.TicketAttributes,
	}
	f.tickets[t.ID] = t
	return t, nil
}

func (f *fakeIntercom) GetTicket(_ context.Context, id string) (*intercom.Ticket, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.record("get_ticket")

	t, ok := f.tickets[id]
	if !ok {
		return nil, &intercom.APIError{StatusCode: 404, Errors: []intercom.ErrorDetail{{Code: "not_found", Message: "Ticket Not Found"}}}
	}
	return t, nil
}

func (f *fakeIntercom) SearchTickets(_ context.Context, query *intercom.SearchQuery) ([]intercom.Ticket, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.record("search_tickets")

	f.ticketQueries = append(f.ticketQueries, query)
	return f.searchResults, nil
}

func (f *fakeIntercom) UpdateTicket(_ context.Context, id string, update *intercom.TicketUpdate) (*intercom.Ticket, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.record("update_ticket")

	f.updates[id] = update
	return &intercom.Ticket{ID: id, TicketState: intercom.TicketState{Category: update.State}}, nil
}

func (f *fakeIntercom) ReplyToTicket(_ context.Context, id string, reply *intercom.Reply) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.record("reply_to_ticket")

	if f.replyErr != nil {
		return f.replyErr
	}
	f.ticketReplies = append(f.ticketReplies, replyCall{id: id, reply: reply})
	return nil
}

func (f *fakeIntercom) ReplyToConversation(_ context.Context, id string, reply *intercom.Reply) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.record("reply_to_conversation")

	if f.replyErr != nil {
		return f.replyErr
	}
	f.convReplies = append(f.convReplies, replyCall{id: id, reply: reply})
	return nil
}

func (f *fakeIntercom) Calls() []string {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return append([]string(nil), f.calls...)
}

type sentMessage struct {
	channelID string
	content   string
}

// fakeChat is an in memory chat platform.
type fakeChat struct {
	mtx      sync.Mutex
	channels map[string]*Channel
	sent     []sentMessage
	sendErr  error
}

func newFakeChat(channels ...*Channel) *fakeChat {
	c := &fakeChat{channels: make(map[string]*Channel)}
	for _, ch := range channels {
		c.channels[ch.ID] = ch
	}
	return c
}

func (c *fakeChat) FetchChannel(_ context.Context, channelID string) (*Channel, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	ch, ok := c.channels[channelID]
	if !ok {
		return nil, ErrNotFound
	}
	return ch, nil
}

func (c *fakeChat) SendMessage(_ context.Context, channelID, content string) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, sentMessage{channelID: channelID, content: content})
	return nil
}

// reportRecorder collects reported background errors.
type reportRecorder struct {
	mtx    sync.Mutex
	errors map[string][]error
}

func newReportRecorder() *reportRecorder {
	return &reportRecorder{errors: make(map[string][]error)}
}

func (r *reportRecorder) Report(_ context.Context, operation string, err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.errors[operation] = append(r.errors[operation], err)
}

func (r *reportRecorder) Count(operation string) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.errors[operation])
}
