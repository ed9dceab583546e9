package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/intercord/pkg/custom"
	"github.com/Jacobbrewer1/intercord/pkg/dataaccess"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
)

// Register stores the binding, replacing any binding for the channel.
func Register(ctx context.Context, store dataaccess.BindingDal, b *entities.Binding) error {
	if b == nil {
		return NewValidationError("discord_channel_id", "intercom_ticket_id")
	}
	if err := requireFields(
		[2]string{"discord_channel_id", b.ChannelID},
		[2]string{"intercom_ticket_id", b.TicketID},
	); err != nil {
		return err
	}

	if b.RegisteredAt.Time().IsZero() {
		b.RegisteredAt = custom.Now()
	}

	if err := store.SaveBinding(ctx, b); err != nil {
		return fmt.Errorf("error saving binding: %w", err)
	}
	return nil
}

// Unregister removes the binding for the channel. It reports whether the channel was tracked; removing an
// untracked channel is not an error.
func Unregister(ctx context.Context, store dataaccess.BindingDal, channelID string) (bool, error) {
	if err := requireFields([2]string{"discord_channel_id", channelID}); err != nil {
		return false, err
	}

	removed, err := store.DeleteBinding(ctx, channelID)
	if err != nil {
		return false, fmt.Errorf("error deleting binding: %w", err)
	}
	return removed, nil
}

// Lookup returns the binding for the channel, or ErrNotFound.
func Lookup(ctx context.Context, store dataaccess.BindingDal, channelID string) (*entities.Binding, error) {
	b, err := store.GetBinding(ctx, channelID)
	if errors.Is(err, dataaccess.ErrBindingNotFound) {
		return nil, fmt.Errorf("channel %s is not tracked: %w", channelID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting binding: %w", err)
	}
	return b, nil
}
