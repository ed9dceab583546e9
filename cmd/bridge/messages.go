package main

import (
	"context"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/intercord/cmd/bridge/monitoring"
	"github.com/Jacobbrewer1/intercord/pkg/bridge"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
)

const (
	reactionRelayed = "✅"
	reactionFailed  = "❌"
)

// messageCreateHandler relays messages written in tracked channels to Intercom and reacts with the outcome.
func (a *App) messageCreateHandler() func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}

		self := s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID
		msg := &bridge.ChatMessage{
			ChannelID: m.ChannelID,
			MessageID: m.ID,
			AuthorID:  m.Author.ID,
			Content:   m.Content,
			FromBot:   m.Author.Bot || self,
		}

		var reaction string
		switch a.relayChatMessage(context.Background(), msg) {
		case bridge.OutcomeRelayed:
			reaction = reactionRelayed
		case bridge.OutcomeFailed:
			reaction = reactionFailed
		default:
			return
		}

		if err := s.MessageReactionAdd(m.ChannelID, m.ID, reaction); err != nil {
			a.Warn("Error reacting to message",
				slog.String(logging.KeyError, err.Error()),
				slog.String(logging.KeyChannelID, m.ChannelID),
			)
		}
	}
}

// relayChatMessage sends the message to the bound ticket. Failures are logged and not retried.
func (a *App) relayChatMessage(ctx context.Context, msg *bridge.ChatMessage) bridge.Outcome {
	if a.api == nil {
		// Without a token there is no client to reply with.
		monitoring.ChatRelayTotal.WithLabelValues(bridge.OutcomeSkipped.String()).Inc()
		return bridge.OutcomeSkipped
	}

	outcome, err := a.relay.ToTicket(ctx, msg)
	monitoring.ChatRelayTotal.WithLabelValues(outcome.String()).Inc()
	if err != nil {
		a.Error("Error relaying message to Intercom",
			slog.String(logging.KeyError, err.Error()),
			slog.String(logging.KeyChannelID, msg.ChannelID),
		)
	}
	return outcome
}
