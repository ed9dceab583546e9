package dataaccess

import (
	"context"

	"github.com/Jacobbrewer1/intercord/pkg/entities"
)

// BindingDal is the registry of Discord channels that are bridged to Intercom tickets. Each call is atomic on
// its own; a sequence of calls is not.
type BindingDal interface {
	// SaveBinding saves the binding for its channel, replacing any binding already there.
	SaveBinding(ctx context.Context, binding *entities.Binding) error

	// GetBinding gets the binding for a channel. ErrBindingNotFound is returned when there is none.
	GetBinding(ctx context.Context, channelID string) (*entities.Binding, error)

	// DeleteBinding removes the binding for a channel. Removing a channel that is not bound is not an error.
	// The returned bool reports whether a binding was removed.
	DeleteBinding(ctx context.Context, channelID string) (bool, error)

	// ListBindings lists every binding.
	ListBindings(ctx context.Context) ([]*entities.Binding, error)

	// CountBindings counts the bindings.
	CountBindings(ctx context.Context) (int64, error)
}
