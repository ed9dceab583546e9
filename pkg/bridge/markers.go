package bridge

import (
	"regexp"
)

// The markers are written into the ticket description when a ticket is created. Webhooks are mapped back to
// a channel by matching them, so their text must not change.
const (
	// Provenance is the first line of the description trailer.
	Provenance = "*Created via Discord Tickets v2*"

	MarkerGuildID   = "Guild ID: "
	MarkerChannelID = "Channel ID: "
	MarkerUserID    = "Discord User ID: "
	MarkerTicketID  = "Ticket ID: "

	// unknownChannel is written when the intake has no channel.
	unknownChannel = "Unknown"
)

var (
	channelIDPattern = regexp.MustCompile(regexp.QuoteMeta(MarkerChannelID) + `(\d+)`)
	userIDPattern    = regexp.MustCompile(regexp.QuoteMeta(MarkerUserID) + `(\d+)`)
)

// ChannelIDFromDescription returns the channel ID recorded in a ticket description.
func ChannelIDFromDescription(description string) (string, bool) {
	return firstGroup(channelIDPattern, description)
}

// UserIDFromDescription returns the Discord user ID recorded in a ticket description.
func UserIDFromDescription(description string) (string, bool) {
	return firstGroup(userIDPattern, description)
}

// TicketIDMarker returns the marker line for a source ticket ID, as searched for when closing.
func TicketIDMarker(ticketID string) string {
	return MarkerTicketID + ticketID
}

func firstGroup(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
