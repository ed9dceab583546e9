package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Intake is the data sent by Tickets v2 when a new support request is opened.
type Intake struct {
	// GuildID is the ID of the guild the ticket was opened in.
	GuildID string `json:"guild_id"`

	// UserID is the ID of the Discord user that opened the ticket.
	UserID string `json:"user_id"`

	// TicketID is the Tickets v2 ID of the ticket.
	TicketID string `json:"ticket_id"`

	// ChannelID is the ID of the channel created for the ticket.
	ChannelID string `json:"ticket_channel_id"`

	// IsNewTicket is whether the ticket has just been opened.
	IsNewTicket bool `json:"is_new_ticket"`

	// FormData holds the answers to the panel form, in the order they were asked.
	FormData FormData `json:"form_data"`

	Username  string `json:"username,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Content   string `json:"content,omitempty"`
	PanelName string `json:"panel_name,omitempty"`
	OpenedAt  string `json:"opened_at,omitempty"`
	Email     string `json:"user_email,omitempty"`
}

// FormField is a single question and answer from the intake form.
type FormField struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FormData is an ordered set of form answers. It is decoded from a JSON object and keeps the order the
// keys appeared in, which is the order the form was filled in.
type FormData []FormField

// Get returns the answer for the exact question and whether it was present.
func (f FormData) Get(question string) (string, bool) {
	for _, field := range f {
		if field.Question == question {
			return field.Answer, true
		}
	}
	return "", false
}

// UnmarshalJSON implements the json.Unmarshaler interface. Non-string answers are kept as their JSON text.
func (f *FormData) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*f = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("error reading form data: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("form data must be a JSON object")
	}

	fields := make(FormData, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("error reading form data key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected form data key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("error reading form data value for %q: %w", key, err)
		}

		fields = append(fields, FormField{
			Question: key,
			Answer:   answerString(raw),
		})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("error reading form data: %w", err)
	}

	*f = fields
	return nil
}

// MarshalJSON implements the json.Marshaler interface, writing the fields back as an object in order.
func (f FormData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		q, err := json.Marshal(field.Question)
		if err != nil {
			return nil, err
		}
		a, err := json.Marshal(field.Answer)
		if err != nil {
			return nil, err
		}
		buf.Write(q)
		buf.WriteByte(':')
		buf.Write(a)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func answerString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}
