package intercom

import (
	"encoding/json"
	"fmt"
)

const (
	// AttributeTitle is the ticket attribute holding the title.
	AttributeTitle = "_default_title_"

	// AttributeDescription is the ticket attribute holding the description.
	AttributeDescription = "_default_description_"
)

// Admin is the workspace admin the access token belongs to.
type Admin struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	App   *App   `json:"app,omitempty"`
}

// App is the Intercom workspace.
type App struct {
	Name   string `json:"name"`
	IDCode string `json:"id_code"`
}

// Workspace returns the workspace name, falling back to the admin name.
func (a *Admin) Workspace() string {
	if a.App != nil && a.App.Name != "" {
		return a.App.Name
	}
	return a.Name
}

// TicketType is a ticket type configured in the workspace.
type TicketType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Contact is an Intercom contact (user or lead).
type Contact struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

// ContactCreate is the body for creating a contact.
type ContactCreate struct {
	Role       string `json:"role,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ContactRef references a contact on a ticket either by Intercom ID or by external ID.
type ContactRef struct {
	Type       string `json:"type,omitempty"`
	ID         string `json:"id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	Email      string `json:"email,omitempty"`
}

// SearchQuery is a search filter. A compound query uses AND/OR as the operator and a []SearchQuery value.
type SearchQuery struct {
	Field    string `json:"field,omitempty"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Equals is a single field equality filter.
func Equals(field, value string) *SearchQuery {
	return &SearchQuery{Field: field, Operator: "=", Value: value}
}

// Contains is a single field substring filter.
func Contains(field, value string) *SearchQuery {
	return &SearchQuery{Field: field, Operator: "~", Value: value}
}

// And combines queries that must all match.
func And(queries ...*SearchQuery) *SearchQuery {
	return &SearchQuery{Operator: "AND", Value: queries}
}

type searchRequest struct {
	Query *SearchQuery `json:"query"`
}

type contactList struct {
	Type       string    `json:"type"`
	Data       []Contact `json:"data"`
	TotalCount int       `json:"total_count"`
}

type ticketList struct {
	Type       string   `json:"type"`
	Tickets    []Ticket `json:"tickets"`
	TotalCount int      `json:"total_count"`
}

// TicketCreate is the body for creating a ticket.
type TicketCreate struct {
	TicketTypeID     string         `json:"ticket_type_id"`
	Contacts         []ContactRef   `json:"contacts"`
	TicketAttributes map[string]any `json:"ticket_attributes"`
}

// TicketUpdate is the body for updating a ticket.
type TicketUpdate struct {
	State string `json:"state,omitempty"`
	Open  *bool  `json:"open,omitempty"`
}

// TicketState is the state of a ticket. Older API versions send a bare string, newer ones an object.
type TicketState struct {
	Category string `json:"category"`
	Label    string `json:"internal_label,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *TicketState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Category = str
		return nil
	}

	type plain TicketState
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid ticket state: %w", err)
	}
	*s = TicketState(p)
	return nil
}

// String returns the state category.
func (s TicketState) String() string {
	return s.Category
}

// Ticket is an Intercom ticket. ID is the internal identifier shared with the underlying conversation,
// TicketID is the number shown to teammates.
type Ticket struct {
	Type             string          `json:"type"`
	ID               string          `json:"id"`
	TicketID         string          `json:"ticket_id"`
	TicketState      TicketState     `json:"ticket_state"`
	Open             bool            `json:"open"`
	TicketAttributes map[string]any  `json:"ticket_attributes"`
	Contacts         *TicketContacts `json:"contacts,omitempty"`
	TicketParts      *TicketParts    `json:"ticket_parts,omitempty"`
}

// TicketContacts is the list of contacts on a ticket.
type TicketContacts struct {
	Type     string       `json:"type"`
	Contacts []ContactRef `json:"contacts"`
}

// TicketParts is the list of parts on a ticket.
type TicketParts struct {
	Type        string `json:"type"`
	TicketParts []Part `json:"ticket_parts"`
	TotalCount  int    `json:"total_count"`
}

// Attribute returns a ticket attribute as a string. Missing and non-string attributes return "".
func (t *Ticket) Attribute(name string) string {
	if t == nil || t.TicketAttributes == nil {
		return ""
	}
	s, _ := t.TicketAttributes[name].(string)
	return s
}

// Title returns the ticket title.
func (t *Ticket) Title() string {
	return t.Attribute(AttributeTitle)
}

// Description returns the ticket description.
func (t *Ticket) Description() string {
	return t.Attribute(AttributeDescription)
}

// PrimaryContactID returns the ID of the first contact on the ticket.
func (t *Ticket) PrimaryContactID() string {
	if t == nil || t.Contacts == nil || len(t.Contacts.Contacts) == 0 {
		return ""
	}
	return t.Contacts.Contacts[0].ID
}

// Part is a single part of a ticket or conversation, such as a reply or a note.
type Part struct {
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	PartType  string  `json:"part_type"`
	Body      string  `json:"body"`
	Author    *Author `json:"author,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// Author is who wrote a part.
type Author struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Conversation is an Intercom conversation. Conversations that back a ticket carry it in Ticket.
type Conversation struct {
	Type              string             `json:"type"`
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Source            *Source            `json:"source,omitempty"`
	Ticket            *Ticket            `json:"ticket,omitempty"`
	ConversationParts *ConversationParts `json:"conversation_parts,omitempty"`
}

// Source is the message that started a conversation.
type Source struct {
	Type   string  `json:"type"`
	ID     string  `json:"id"`
	Body   string  `json:"body"`
	Author *Author `json:"author,omitempty"`
}

// ConversationParts is the list of parts on a conversation.
type ConversationParts struct {
	Type              string `json:"type"`
	ConversationParts []Part `json:"conversation_parts"`
	TotalCount        int    `json:"total_count"`
}

// Reply is the body for replying to a ticket or conversation.
type Reply struct {
	MessageType    string `json:"message_type"`
	Type           string `json:"type"`
	Body           string `json:"body"`
	IntercomUserID string `json:"intercom_user_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

// UserComment builds a reply authored by the contact. When the contact ID is unknown the external user ID is
// used instead.
func UserComment(body, contactID, externalUserID string) *Reply {
	r := &Reply{
		MessageType: "comment",
		Type:        "user",
		Body:        body,
	}
	if contactID != "" {
		r.IntercomUserID = contactID
	} else {
		r.UserID = externalUserID
	}
	return r
}
