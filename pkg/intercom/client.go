package intercom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Intercom API for US hosted workspaces.
	DefaultBaseURL = "https://api.intercom.io"

	// APIVersion is the Intercom API version the client speaks.
	APIVersion = "2.11"

	// headerIdempotencyKey carries the token that lets a retried create be recognised.
	headerIdempotencyKey = "Idempotency-Key"
)

// Client is a client for the Intercom REST API. It does not retry and sets no timeout of its own; callers
// bound calls through the context.
type Client struct {
	// http is the underlying REST client.
	http *resty.Client

	// limiter paces outgoing requests when set.
	limiter *rate.Limiter

	baseURL string
}

// Option configures a Client.
type Option func(c *Client)

// WithBaseURL sets the API base URL, for example the EU or AU regional hosts.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit paces requests to perSecond with the given burst. A non positive rate disables pacing.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

// NewClient creates a new Intercom client for the access token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("intercom access token is empty")
	}

	c := &Client{
		http:    resty.New(),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	if _, err := url.ParseRequestURI(c.baseURL); err != nil {
		return nil, fmt.Errorf("invalid intercom base url %q: %w", c.baseURL, err)
	}

	c.http.
		SetBaseURL(c.baseURL).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetHeader("Intercom-Version", APIVersion).
		SetError(&APIError{})

	if c.limiter != nil {
		limiter := c.limiter
		c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})
	}

	return c, nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// check turns a failed response into an *APIError.
func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("error calling intercom %s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = new(APIError)
	}
	apiErr.StatusCode = resp.StatusCode()
	apiErr.Body = resp.String()
	return apiErr
}

// Me returns the admin the access token belongs to. It is the cheapest way to validate a token.
func (c *Client) Me(ctx context.Context) (*Admin, error) {
	admin := new(Admin)
	resp, err := c.request(ctx).SetResult(admin).Get("/me")
	if err := check(resp, err, "me"); err != nil {
		return nil, err
	}
	return admin, nil
}

// GetTicketType gets a ticket type by ID.
func (c *Client) GetTicketType(ctx context.Context, id string) (*TicketType, error) {
	tt := new(TicketType)
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetResult(tt).
		Get("/ticket_types/{id}")
	if err := check(resp, err, "get ticket type"); err != nil {
		return nil, err
	}
	return tt, nil
}

// SearchContacts searches contacts where field equals value. An empty result is not an error.
func (c *Client) SearchContacts(ctx context.Context, field, value string) ([]Contact, error) {
	list := new(contactList)
	resp, err := c.request(ctx).
		SetBody(&searchRequest{Query: Equals(field, value)}).
		SetResult(list).
		Post("/contacts/search")
	if err := check(resp, err, "search contacts"); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// CreateContact creates a contact.
func (c *Client) CreateContact(ctx context.Context, create *ContactCreate) (*Contact, error) {
	contact := new(Contact)
	resp, err := c.request(ctx).
		SetBody(create).
		SetResult(contact).
		Post("/contacts")
	if err := check(resp, err, "create contact"); err != nil {
		return nil, err
	}
	return contact, nil
}

// CreateTicket creates a ticket. The idempotency key is sent when not empty.
func (c *Client) CreateTicket(ctx context.Context, create *TicketCreate, idempotencyKey string) (*Ticket, error) {
	ticket := new(Ticket)
	req := c.request(ctx).
		SetBody(create).
		SetResult(ticket)
	if idempotencyKey != "" {
		req.SetHeader(headerIdempotencyKey, idempotencyKey)
	}

	resp, err := req.Post("/tickets")
	if err := check(resp, err, "create ticket"); err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetTicket gets a ticket by ID.
func (c *Client) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	ticket := new(Ticket)
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetResult(ticket).
		Get("/tickets/{id}")
	if err := check(resp, err, "get ticket"); err != nil {
		return nil, err
	}
	return ticket, nil
}

// SearchTickets searches tickets. An empty result is not an error.
func (c *Client) SearchTickets(ctx context.Context, query *SearchQuery) ([]Ticket, error) {
	list := new(ticketList)
	resp, err := c.request(ctx).
		SetBody(&searchRequest{Query: query}).
		SetResult(list).
		Post("/tickets/search")
	if err := check(resp, err, "search tickets"); err != nil {
		return nil, err
	}
	return list.Tickets, nil
}

// UpdateTicket updates a ticket.
func (c *Client) UpdateTicket(ctx context.Context, id string, update *TicketUpdate) (*Ticket, error) {
	ticket := new(Ticket)
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetBody(update).
		SetResult(ticket).
		Put("/tickets/{id}")
	if err := check(resp, err, "update ticket"); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ReplyToTicket adds a reply to a ticket.
func (c *Client) ReplyToTicket(ctx context.Context, id string, reply *Reply) error {
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetBody(reply).
		Post("/tickets/{id}/reply")
	return check(resp, err, "reply to ticket")
}

// ReplyToConversation adds a reply to a conversation.
func (c *Client) ReplyToConversation(ctx context.Context, id string, reply *Reply) error {
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetBody(reply).
		Post("/conversations/{id}/reply")
	return check(resp, err, "reply to conversation")
}
