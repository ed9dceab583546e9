package bridge

import (
	"strings"

	"github.com/Jacobbrewer1/intercord/pkg/entities"
)

const (
	// defaultContent is the description base when the intake has no content.
	defaultContent = "Ticket opened from Discord"

	formResponsesHeader = "**Form Responses:**"
)

// emailKeys are the form questions that may hold the user's email, highest priority first.
var emailKeys = []string{
	"email",
	"Email",
	"EMAIL",
	"Email Address",
	"Email address",
	"email address",
	"EMAIL ADDRESS",
	"email_address",
	"emailAddress",
	"E-mail",
	"e-mail",
	"E-Mail",
	"E-mail Address",
	"contact_email",
	"Contact Email",
	"Your Email",
	"Your email",
	"user_email",
}

// Composed is a ticket title and description built from an intake.
type Composed struct {
	Title       string
	Description string
}

// Compose builds the ticket title and description for an intake. The description always ends with the
// marker trailer.
func Compose(in *entities.Intake) Composed {
	title := strings.TrimSpace(in.Subject)
	if title == "" {
		title = "Discord Ticket #" + in.TicketID
	}

	sb := new(strings.Builder)
	if in.Content != "" {
		sb.WriteString(in.Content)
	} else {
		sb.WriteString(defaultContent)
	}

	if len(in.FormData) > 0 {
		sb.WriteString("\n\n" + formResponsesHeader + "\n")
		for _, f := range in.FormData {
			sb.WriteString("• " + f.Question + ": " + f.Answer + "\n")
		}
	}

	channelID := in.ChannelID
	if channelID == "" {
		channelID = unknownChannel
	}

	sb.WriteString("\n\n---\n")
	sb.WriteString(Provenance + "\n")
	sb.WriteString(MarkerGuildID + in.GuildID + "\n")
	sb.WriteString(MarkerChannelID + channelID + "\n")
	sb.WriteString(MarkerUserID + in.UserID + "\n")
	sb.WriteString(TicketIDMarker(in.TicketID))

	return Composed{
		Title:       title,
		Description: sb.String(),
	}
}

// MineEmail returns the first non-empty answer to a recognised email question. Keys are checked in priority
// order, not form order.
func MineEmail(fd entities.FormData) string {
	for _, key := range emailKeys {
		if v, ok := fd.Get(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// IntakeEmail returns the explicit email of the intake, falling back to one found in the form.
func IntakeEmail(in *entities.Intake) string {
	if e := strings.TrimSpace(in.Email); e != "" {
		return e
	}
	return MineEmail(in.FormData)
}
