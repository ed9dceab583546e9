package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/intercord/pkg/custom"
	"github.com/Jacobbrewer1/intercord/pkg/dataaccess"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
	"github.com/Jacobbrewer1/intercord/pkg/intercom"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
)

// OperationRegisterBinding names the background registration that follows ticket creation.
const OperationRegisterBinding = "register_binding"

// OpenAPI is what opening a ticket needs from Intercom.
type OpenAPI interface {
	Contacts
	TicketCreator
}

// OpenRequest asks for a ticket to be opened for an intake.
type OpenRequest struct {
	TicketTypeID string
	Intake       *entities.Intake

	// IdempotencyKey is passed through to the ticket create. One is generated when empty.
	IdempotencyKey string
}

// Opened is the result of opening a ticket.
type Opened struct {
	TicketID  string
	Status    string
	ContactID string
	Ticket    *intercom.Ticket
}

// Opener opens tickets and registers the channel binding for them.
type Opener struct {
	l                *slog.Logger
	store            dataaccess.BindingDal
	tasks            *Tasks
	channelAttribute string
}

// NewOpener creates a new Opener. channelAttribute is the ticket attribute the channel ID is written to, or
// empty to rely on the description marker alone.
func NewOpener(l *slog.Logger, store dataaccess.BindingDal, tasks *Tasks, channelAttribute string) *Opener {
	return &Opener{
		l:                l,
		store:            store,
		tasks:            tasks,
		channelAttribute: channelAttribute,
	}
}

// Open resolves the contact, creates the ticket and starts the binding registration in the background. A
// failure to resolve the contact does not stop the ticket from being created; the user is then referenced by
// external ID. The registration outcome is sent to the task reporter and never affects the result.
func (o *Opener) Open(ctx context.Context, api OpenAPI, req *OpenRequest) (*Opened, error) {
	if req == nil || req.Intake == nil {
		return nil, NewValidationError("intake")
	}
	in := req.Intake
	if err := requireFields(
		[2]string{"ticket_type_id", req.TicketTypeID},
		[2]string{"user_id", in.UserID},
		[2]string{"ticket_id", in.TicketID},
	); err != nil {
		return nil, err
	}

	contactID, err := ResolveContact(ctx, api, in.UserID, IntakeEmail(in), in.Username)
	if err != nil {
		o.l.Warn("Error resolving contact, continuing with external id",
			slog.String(logging.KeyError, err.Error()),
			slog.String("user_id", in.UserID),
		)
		contactID = ""
	}

	composed := Compose(in)
	submitted, err := Submit(ctx, api, &Submission{
		TicketTypeID:     req.TicketTypeID,
		ContactID:        contactID,
		UserID:           in.UserID,
		Title:            composed.Title,
		Description:      composed.Description,
		ChannelID:        in.ChannelID,
		ChannelAttribute: o.channelAttribute,
		IdempotencyKey:   req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	o.l.Info("Ticket created",
		slog.String(logging.KeyTicketID, submitted.TicketID),
		slog.String(logging.KeyChannelID, in.ChannelID),
		slog.String(logging.KeyContactID, contactID),
	)

	if in.ChannelID != "" && submitted.TicketID != "" {
		b := &entities.Binding{
			ChannelID:    in.ChannelID,
			TicketID:     submitted.TicketID,
			ContactID:    contactID,
			UserID:       in.UserID,
			RegisteredAt: custom.Now(),
		}
		o.tasks.Go(ctx, OperationRegisterBinding, func(ctx context.Context) error {
			if err := o.store.SaveBinding(ctx, b); err != nil {
				return fmt.Errorf("error registering channel %s for ticket %s: %w", b.ChannelID, b.TicketID, err)
			}
			return nil
		})
	}

	return &Opened{
		TicketID:  submitted.TicketID,
		Status:    submitted.Status,
		ContactID: contactID,
		Ticket:    submitted.Ticket,
	}, nil
}
