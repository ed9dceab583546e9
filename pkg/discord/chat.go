package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/intercord/pkg/bridge"
)

// Chat sends messages to Discord channels. Calls are not bound by the context; the session applies its own
// HTTP client settings.
type Chat struct {
	s *discordgo.Session
}

// NewChat creates a new Chat over the session.
func NewChat(s *discordgo.Session) *Chat {
	return &Chat{s: s}
}

var _ bridge.Chat = (*Chat)(nil)

// FetchChannel gets the channel. Unknown channels return bridge.ErrNotFound.
func (c *Chat) FetchChannel(_ context.Context, channelID string) (*bridge.Channel, error) {
	ch, err := c.s.Channel(channelID)
	if err != nil {
		if IsUnknownChannel(err) {
			return nil, fmt.Errorf("channel %s: %w", channelID, bridge.ErrNotFound)
		}
		return nil, fmt.Errorf("error getting channel: %w", err)
	}

	return &bridge.Channel{
		ID:          ch.ID,
		Name:        ch.Name,
		TextCapable: IsTextChannel(ch.Type),
	}, nil
}

// SendMessage sends a plain message to the channel.
func (c *Chat) SendMessage(_ context.Context, channelID, content string) error {
	if _, err := c.s.ChannelMessageSend(channelID, content); err != nil {
		if IsUnknownChannel(err) {
			return fmt.Errorf("channel %s: %w", channelID, bridge.ErrNotFound)
		}
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

// IsUnknownChannel reports whether err is Discord saying the channel does not exist.
func IsUnknownChannel(err error) bool {
	er := new(discordgo.RESTError)
	if !errors.As(err, &er) {
		return false
	}
	if er.Message != nil && er.Message.Code == discordgo.ErrCodeUnknownChannel {
		return true
	}
	// A general error is returned with a plain 404.
	return er.Response != nil && er.Response.StatusCode == http.StatusNotFound
}

// IsTextChannel reports whether messages can be sent to channels of the type.
func IsTextChannel(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeDM,
		discordgo.ChannelTypeGroupDM,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeGuildVoice,
		discordgo.ChannelTypeGuildStageVoice:
		return true
	default:
		return false
	}
}
